package checkcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/intake/cmd/intake/configpath"
	"github.com/papercomputeco/intake/pkg/config"
	"github.com/papercomputeco/intake/pkg/intake"
	"github.com/papercomputeco/intake/pkg/store"
)

const checkLongDesc string = `Check that a session can start.

Loads the config, the API key file and every system prompt template and
reports what was found. The completion service is not called.

Examples:
  intake check
  intake check --config ./intake.toml --prompts ./prompts`

const checkShortDesc string = "Check config, credentials and prompt templates"

// ErrCheckFailed is returned when any check does not pass.
var ErrCheckFailed = errors.New("check failed")

type checkCommander struct {
	configPath string
	promptsDir string
	keyFile    string
}

func NewCheckCmd() *cobra.Command {
	cmder := &checkCommander{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file (default: $INTAKE_CONFIG or ./intake.toml)")
	cmd.Flags().StringVar(&cmder.promptsDir, "prompts", "", "Directory holding the system prompt templates")
	cmd.Flags().StringVar(&cmder.keyFile, "key-file", "", "File holding the completion service API key")

	return cmd
}

func (c *checkCommander) run(_ context.Context, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	problems := 0

	cfg, path, err := configpath.LoadConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if path == "" {
		path = "(defaults)"
	}
	if c.promptsDir != "" {
		cfg.PromptsDir = c.promptsDir
	}
	if c.keyFile != "" {
		cfg.KeyFile = c.keyFile
	}

	report(out, "config", path, nil)
	if err := cfg.Validate(); err != nil {
		report(out, "settings", "", err)
		problems++
	} else {
		report(out, "settings", fmt.Sprintf("model %s, temperature %g, max tokens %d", cfg.Model, cfg.Temperature, cfg.MaxTokens), nil)
	}

	if _, err := config.ReadAPIKey(cfg.KeyFile); err != nil {
		report(out, "api key", cfg.KeyFile, err)
		problems++
	} else {
		report(out, "api key", cfg.KeyFile, nil)
	}

	for _, name := range intake.PromptFiles() {
		p := filepath.Join(cfg.PromptsDir, name)
		content, err := store.Load(p)
		if err == nil && content == "" {
			err = errors.New("template is empty")
		}
		if err != nil {
			problems++
		}
		report(out, "prompt", p, err)
	}

	if problems > 0 {
		return fmt.Errorf("%w: %d problem(s)", ErrCheckFailed, problems)
	}
	fmt.Fprintln(out, "ready")
	return nil
}

func report(out io.Writer, what, detail string, err error) {
	if err != nil {
		fmt.Fprintf(out, "  FAIL %-8s %s: %v\n", what, detail, err)
		return
	}
	fmt.Fprintf(out, "  ok   %-8s %s\n", what, detail)
}
