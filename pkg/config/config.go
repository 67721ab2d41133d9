// Package config loads and validates the intake configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the intake run configuration. Zero-valued fields in the file keep
// their defaults.
type Config struct {
	// KeyFile is the plaintext file holding the completion service API key.
	KeyFile string `toml:"key_file" validate:"required"`

	// BaseURL overrides the completion service endpoint.
	BaseURL string `toml:"base_url" validate:"omitempty,url"`

	// PromptsDir holds the system_0X_*.md prompt templates.
	PromptsDir string `toml:"prompts_dir" validate:"required"`

	// LogsDir receives the timestamp-named artifact files.
	LogsDir string `toml:"logs_dir" validate:"required"`

	// DebugLogsDir receives the per-run debug log.
	DebugLogsDir string `toml:"debug_logs_dir" validate:"required"`

	Model       string  `toml:"model" validate:"required"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `toml:"max_tokens" validate:"gt=0"`

	// MaxRetries is the retry budget for transient completion failures.
	MaxRetries int      `toml:"max_retries" validate:"gte=0,lte=20"`
	Backoff    Duration `toml:"retry_backoff"`

	// Width is the terminal wrap width for generated text.
	Width int `toml:"width" validate:"gte=20"`

	// Render displays stage artifacts as rendered markdown.
	Render bool `toml:"render"`
}

// Duration is a time.Duration read from a toml string such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		KeyFile:      "key_openai.txt",
		PromptsDir:   ".",
		LogsDir:      "logs",
		DebugLogsDir: "debugging_logs",
		Model:        "gpt-4-0613",
		Temperature:  0,
		MaxTokens:    2000,
		MaxRetries:   7,
		Backoff:      Duration{time.Second},
		Width:        120,
	}
}

// Load reads the toml file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s does not exist", path)
		}
		return Config{}, fmt.Errorf("could not parse config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ReadAPIKey reads the credential file and trims surrounding whitespace.
func ReadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read API key file: %w", err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key file %s is empty", path)
	}
	return key, nil
}
