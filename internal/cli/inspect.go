package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/radiolab/internal/presentation/report"
	"github.com/aretw0/radiolab/internal/presentation/tui"
	"github.com/aretw0/radiolab/pkg/decompose"
	"github.com/aretw0/radiolab/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ToolsOptions selects where the catalog comes from.
type ToolsOptions struct {
	Options
	Remote bool
	JSON   bool
}

// Tools prints the catalog. With Remote it asks the tool server at the
// configured address, starting one if needed; otherwise it lists the built-in
// registry.
func Tools(ctx context.Context, opts ToolsOptions, out io.Writer) error {
	cfg, err := loadConfig(opts.Options)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	var c domain.Catalog
	if opts.Remote {
		sup, closeLock, err := newSupervisor(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeLock()
		defer sup.Close()
		if err := sup.Ensure(ctx); err != nil {
			return err
		}
		if c, err = sup.Client().ListTools(ctx); err != nil {
			return err
		}
	} else {
		reg, err := newRegistry(cfg)
		if err != nil {
			return err
		}
		c = domain.Catalog{ServerID: "local", Tools: reg.List()}
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	return render(out, report.Catalog(c))
}

// Decompose prints the decomposition of task as YAML followed by the
// guidance block sent to planners.
func Decompose(task string, out io.Writer) error {
	d := decompose.New().Decompose(task)
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode decomposition: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "---\n%s\n", decompose.FormatForPrompt(d))
	return err
}

func render(out io.Writer, markdown string) error {
	rendered, err := tui.NewRenderer(out)(markdown)
	if err != nil {
		rendered = markdown
	}
	_, err = io.WriteString(out, rendered)
	return err
}
