package cli

import (
	"github.com/aretw0/radiolab/internal/config"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
	Addr       string
}

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	Options
	Task        string
	NoDecompose bool
	StopOnError bool
	DryRun      bool
	Graph       bool
	JSON        bool
	Models      []string
}

// loadConfig reads the config file and applies the flags on top.
func loadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	return cfg, nil
}
