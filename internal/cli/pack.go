package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spritepack/spritepack/pkg/pipeline"
	"github.com/spritepack/spritepack/pkg/sprite"
)

// packCommand creates the pack command, which computes a layout without
// rendering any artifacts. Useful for inspecting placement decisions or
// feeding the layout to other tools.
func (c *CLI) packCommand() *cobra.Command {
	var (
		opts      pipeline.Options
		output    string
		noCache   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Compute a sheet layout and print it as JSON",
		Example: `  spritepack pack --src ./icons
  spritepack pack --src ./icons --output layout.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if opts.Src == "" {
				opts.Src = defaultSrcDir
			}
			opts.Logger = logger

			runner, err := c.newRunner(ctx, noCache, redisAddr)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(logger)
			sources, err := sprite.LoadDir(opts.Src)
			if err != nil {
				return err
			}

			layout, hit, err := runner.PackWithCacheInfo(ctx, sprite.Items(sources), pipeline.SourcesHash(sources), opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Packed %d icons into %dx%d", len(sources), layout.Width, layout.Height))

			data, err := json.MarshalIndent(layout, "", "  ")
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, data, 0644); err != nil {
					return err
				}
				printSuccess("Layout written")
				printFile(output)
			} else {
				fmt.Println(string(data))
			}

			printStats(len(sources), layout.Width, layout.Height, 0, hit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Src, "src", "s", "", "directory containing the source images (default ./images)")
	cmd.Flags().StringVarP(&output, "output", "O", "", "write the layout JSON to a file instead of stdout")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "cap on packing retries before giving up")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute the layout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the build cache")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "use a Redis cache backend at host:port instead of the file cache")

	return cmd
}
