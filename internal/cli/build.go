package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spritepack/spritepack/pkg/pipeline"
)

// Default source and output directories for the build command.
const (
	defaultSrcDir = "./images"
	defaultOutDir = "./dist"
)

// buildCommand creates the build command, the full pipeline entry point.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		opts        pipeline.Options
		configPath  string
		noCache     bool
		redisAddr   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Pack icons into a sprite sheet and write the artifacts",
		Long: `Build packs every image in the source directory into a single tight
sprite sheet, writes the sheet PNG, a retina variant, and the CSS that
addresses each icon by class name.

Options can also be set in a spritepack.toml file in the working
directory; command-line flags take precedence.`,
		Example: `  spritepack build
  spritepack build --src ./icons --out ./public --prefix ui
  spritepack build --crush --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.apply(&opts)

			if interactive && opts.Src == "" {
				src, err := pickSourceDir(".")
				if err != nil {
					return err
				}
				if src == "" {
					printInfo("No directory selected")
					return nil
				}
				opts.Src = src
			}
			if opts.Src == "" {
				opts.Src = defaultSrcDir
			}
			if opts.Out == "" {
				opts.Out = defaultOutDir
			}
			opts.Logger = logger

			runner, err := c.newRunner(ctx, noCache, redisAddr)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(logger)
			spin := newSpinnerWithContext(ctx, "Packing icons...")
			spin.Start()

			result, err := runner.Execute(ctx, opts)
			spin.Stop()
			if err != nil {
				return err
			}

			if err := pipeline.WriteArtifacts(opts.Out, opts, result.Artifacts); err != nil {
				return fmt.Errorf("write artifacts: %w", err)
			}
			prog.done(fmt.Sprintf("Built sprite sheet from %d icons", result.Stats.ItemCount))

			printSuccess("Sprite sheet written to %s", opts.Out)
			printStats(result.Stats.ItemCount, result.Stats.SheetWidth, result.Stats.SheetHeight,
				result.Stats.Occupancy, result.CacheInfo.RenderHit)

			_ = opts.ValidateAndSetDefaults()
			printFile(filepath.Join(opts.Out, opts.SheetName()))
			if opts.HasRetina() {
				printFile(filepath.Join(opts.Out, opts.RetinaName()))
			}
			printFile(filepath.Join(opts.Out, opts.StylesheetName()))

			printNewline()
			printNextStep("Preview in a browser", fmt.Sprintf("spritepack serve --out %s", opts.Out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Src, "src", "s", "", "directory containing the source images (default ./images)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output directory for the artifacts (default ./dist)")
	cmd.Flags().StringVar(&opts.BaseName, "name", "", "filename stem for the artifacts (default sprite)")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "CSS class prefix for icon rules (default icon)")
	cmd.Flags().IntVar(&opts.RetinaScale, "retina", 0, "retina upscale factor, 1 disables the retina sheet (default 2)")
	cmd.Flags().BoolVar(&opts.Crush, "crush", false, "re-compress PNGs with pngquant/oxipng/optipng when installed")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "cap on packing retries before giving up")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute every stage")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a spritepack.toml config file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the build cache")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "use a Redis cache backend at host:port instead of the file cache")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick the source directory interactively")

	return cmd
}
