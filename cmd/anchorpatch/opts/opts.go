package opts

import (
	"context"
	"io"
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/config"
	"github.com/walteh/anchorpatch/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Console    *log.Logger
	Out        io.Writer
}

// PassOpts are the flags shared by commands that perform a patch pass
type PassOpts struct {
	Mapping string   // overrides mapping.path
	Root    string   // overrides root
	Only    []string // doublestar globs on document ids
}

// LoadConfig loads the config file and applies command line overrides
func (o *RootOpts) LoadConfig(ctx context.Context, pass PassOpts) (*config.Config, error) {
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	if pass.Mapping != "" {
		abs, err := filepath.Abs(pass.Mapping)
		if err != nil {
			return nil, errors.Errorf("resolving mapping path: %w", err)
		}
		cfg.Mapping.Path = abs
	}
	if pass.Root != "" {
		abs, err := filepath.Abs(pass.Root)
		if err != nil {
			return nil, errors.Errorf("resolving root: %w", err)
		}
		cfg.Root = abs
	}

	return cfg, nil
}
