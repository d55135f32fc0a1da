package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/spritepack/spritepack/pkg/pipeline"
)

// configFileName is the project config file looked up in the working
// directory when --config is not given.
const configFileName = "spritepack.toml"

// config is the on-disk project configuration. Every field maps to a build
// flag; flags given on the command line win over the file.
type config struct {
	Src         string `toml:"src"`
	Out         string `toml:"out"`
	Name        string `toml:"name"`
	Prefix      string `toml:"prefix"`
	RetinaScale int    `toml:"retina_scale"`
	Crush       bool   `toml:"crush"`
	MaxAttempts int    `toml:"max_attempts"`
}

// loadConfig reads a config file. When path is empty the default file is
// tried and a missing file is not an error.
func loadConfig(path string) (*config, error) {
	explicit := path != ""
	if path == "" {
		path = configFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies config values into options, leaving already-set options
// alone so command-line flags take precedence.
func (cfg *config) apply(opts *pipeline.Options) {
	if opts.Src == "" {
		opts.Src = cfg.Src
	}
	if opts.Out == "" {
		opts.Out = cfg.Out
	}
	if opts.BaseName == "" {
		opts.BaseName = cfg.Name
	}
	if opts.Prefix == "" {
		opts.Prefix = cfg.Prefix
	}
	if opts.RetinaScale == 0 {
		opts.RetinaScale = cfg.RetinaScale
	}
	if !opts.Crush {
		opts.Crush = cfg.Crush
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = cfg.MaxAttempts
	}
}
