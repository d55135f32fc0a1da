package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

// serveCommand creates the serve command, a small preview server for the
// generated artifacts.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		out  string
		addr string
		name string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory with a live preview page",
		Long: `Serve starts a local HTTP server over the output directory. The index
page loads the generated stylesheet and shows every icon class, so the
packed sheet can be checked in a browser.`,
		Example: `  spritepack serve
  spritepack serve --out ./public --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if _, err := os.Stat(filepath.Join(out, name+".css")); err != nil {
				return fmt.Errorf("no %s.css in %s, run `spritepack build` first", name, out)
			}

			r := chi.NewRouter()
			r.Use(middleware.Recoverer)
			r.Get("/", previewHandler(out, name))
			r.Handle("/*", http.FileServer(http.Dir(out)))

			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			printSuccess("Preview server running")
			printLink("Address", "http://localhost"+addr)
			printKeyValue("Serving", out)
			logger.Info("serving preview", "addr", addr, "dir", out)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", defaultOutDir, "output directory to serve")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&name, "name", "sprite", "filename stem of the artifacts")

	return cmd
}

// previewHandler renders an index page that exercises every icon class in
// the generated stylesheet.
func previewHandler(dir, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classes, err := iconClasses(filepath.Join(dir, name+".css"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		var b strings.Builder
		b.WriteString("<!doctype html>\n<html>\n<head>\n")
		b.WriteString("<meta charset=\"utf-8\">\n<title>spritepack preview</title>\n")
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"/%s.css\">\n", name)
		b.WriteString("<style>body{font-family:sans-serif;margin:2rem}figure{display:inline-block;margin:1rem;text-align:center}figcaption{font-size:.75rem;color:#666;margin-top:.5rem}</style>\n")
		b.WriteString("</head>\n<body>\n<h1>Sprite preview</h1>\n")

		b.WriteString("<h2>Standard</h2>\n")
		for _, class := range classes {
			fmt.Fprintf(&b, "<figure><div class=\"sprite %s\"></div><figcaption>%s</figcaption></figure>\n", class, class)
		}

		b.WriteString("<h2>Retina</h2>\n")
		for _, class := range classes {
			fmt.Fprintf(&b, "<figure><div class=\"sprite retina %s\"></div><figcaption>%s</figcaption></figure>\n", class, class)
		}

		b.WriteString("</body>\n</html>\n")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(b.String()))
	}
}

// iconClasses extracts the icon class names from a generated stylesheet.
// Only single-class selectors beyond the base .sprite and .retina rules are
// returned, sorted for a stable page.
func iconClasses(cssPath string) ([]string, error) {
	data, err := os.ReadFile(cssPath)
	if err != nil {
		return nil, err
	}

	var classes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ".") || !strings.HasSuffix(line, "{") {
			continue
		}
		class := strings.TrimSpace(strings.TrimSuffix(line[1:], "{"))
		if class == "sprite" || class == "retina" || class == "" {
			continue
		}
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes, nil
}
