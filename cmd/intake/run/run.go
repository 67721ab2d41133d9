package runcmder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/intake/cmd/intake/configpath"
	"github.com/papercomputeco/intake/pkg/completion"
	"github.com/papercomputeco/intake/pkg/config"
	"github.com/papercomputeco/intake/pkg/display"
	"github.com/papercomputeco/intake/pkg/intake"
	"github.com/papercomputeco/intake/pkg/llm"
	"github.com/papercomputeco/intake/pkg/logger"
	"github.com/papercomputeco/intake/pkg/spinner"
	"github.com/papercomputeco/intake/pkg/store"
)

const runLongDesc string = `Run a patient intake session.

The session collects age, weight and height, continues with free-text
demographics (type FINISHED or SUBMIT to move on) and symptom intake
(type DONE to finish). It then generates intake notes, a hypothesis
report, a clinical evaluation and referrals, printing each and writing
it to a timestamped file under the logs directory.

Examples:
  intake run
  intake run --config ./intake.toml --render
  intake run --model gpt-4o --temperature 0.2 --prompts ./prompts`

const runShortDesc string = "Run a patient intake session"

type runCommander struct {
	configPath  string
	promptsDir  string
	logsDir     string
	debugDir    string
	keyFile     string
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	maxRetries  int
	noSpinner   bool
	render      bool
	debug       bool
}

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: runShortDesc,
		Long:  runLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&cmder.configPath, "config", "c", "", "Path to config file (default: $INTAKE_CONFIG or ./intake.toml)")
	flags.StringVar(&cmder.promptsDir, "prompts", defaults.PromptsDir, "Directory holding the system prompt templates")
	flags.StringVar(&cmder.logsDir, "logs", defaults.LogsDir, "Directory for generated documents")
	flags.StringVar(&cmder.debugDir, "debug-logs", defaults.DebugLogsDir, "Directory for the per-run debug log")
	flags.StringVar(&cmder.keyFile, "key-file", defaults.KeyFile, "File holding the completion service API key")
	flags.StringVar(&cmder.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.StringVar(&cmder.model, "model", defaults.Model, "Model name")
	flags.Float32Var(&cmder.temperature, "temperature", defaults.Temperature, "Sampling temperature (0-2)")
	flags.IntVar(&cmder.maxTokens, "max-tokens", defaults.MaxTokens, "Maximum tokens per reply")
	flags.IntVar(&cmder.maxRetries, "max-retries", defaults.MaxRetries, "Retries for transient service failures")
	flags.BoolVar(&cmder.noSpinner, "no-spinner", false, "Disable the progress spinner")
	flags.BoolVar(&cmder.render, "render", false, "Render generated documents as markdown")
	flags.BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *runCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	apiKey, err := config.ReadAPIKey(cfg.KeyFile)
	if err != nil {
		return err
	}

	prompts, err := intake.LoadPrompts(cfg.PromptsDir)
	if err != nil {
		return err
	}

	st := store.New(cfg.LogsDir, cfg.DebugLogsDir)
	debugLog, err := logger.NewFileLogger(st.DebugLogPath())
	if err != nil {
		return err
	}
	defer debugLog.Close()

	out := cmd.OutOrStdout()
	tty := isTerminal(out)

	var indicator spinner.Indicator = spinner.Nop{}
	if tty && !c.noSpinner {
		indicator = spinner.New(out)
	}

	runID := uuid.NewString()
	client := completion.New(completion.Config{
		APIKey:     apiKey,
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.Backoff.Duration,
	},
		completion.WithLogger(log),
		completion.WithDebugLogger(debugLog.Logger),
		completion.WithIndicator(indicator),
		completion.WithRunID(runID),
	)

	printer, err := display.New(out, display.Options{
		Width:    cfg.Width,
		Color:    tty,
		Markdown: cfg.Render,
	})
	if err != nil {
		return err
	}

	log.Info("intake run starting",
		zap.String("run_id", runID),
		zap.String("model", cfg.Model),
		zap.String("prompts", cfg.PromptsDir),
		zap.String("logs", cfg.LogsDir),
		zap.String("debug_log", st.DebugLogPath()),
	)

	runner := intake.New(client, prompts, llm.Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, st, printer, cmd.InOrStdin(), log)

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printer.Summary(result.TotalTokens, result.Paths())
	log.Info("intake run complete",
		zap.String("run_id", runID),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Int("artifacts", len(result.Artifacts)),
	)
	return nil
}

// loadConfig reads the config file and applies any flags set on the command
// line over it.
func (c *runCommander) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, _, err := configpath.LoadConfig(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("prompts") {
		cfg.PromptsDir = c.promptsDir
	}
	if flags.Changed("logs") {
		cfg.LogsDir = c.logsDir
	}
	if flags.Changed("debug-logs") {
		cfg.DebugLogsDir = c.debugDir
	}
	if flags.Changed("key-file") {
		cfg.KeyFile = c.keyFile
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = c.baseURL
	}
	if flags.Changed("model") {
		cfg.Model = c.model
	}
	if flags.Changed("temperature") {
		cfg.Temperature = c.temperature
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = c.maxTokens
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = c.maxRetries
	}
	if flags.Changed("render") {
		cfg.Render = c.render
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
