package retry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-loadable form of the strategy's construction options.
// Unset fields keep their defaults. A policy file looks like:
//
//	model:
//	  max_attempts: 6
//	  initial_delay: 4s
//	  max_delay: 4m
//	tool:
//	  max_attempts: 2
//	  initial_delay: 1s
//	  max_delay: 30s
//	  disabled_tools: [send_email]
//	  overrides:
//	    search:
//	      max_attempts: 5
//	      initial_delay: 2s
//
// Listing both enabled_tools and disabled_tools is a configuration error
// reported by NewFromConfig, the same as with construction options.
type Config struct {
	Model ModelConfig `yaml:"model"`
	Tool  ToolConfig  `yaml:"tool"`
}

// ModelConfig holds the model retry settings of a policy file.
// MaxAttempts is a pointer so an explicit zero (disable) is distinguishable
// from an absent field (keep the default of 6).
type ModelConfig struct {
	MaxAttempts  *int     `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
}

// ToolConfig holds the tool retry settings of a policy file.
type ToolConfig struct {
	MaxAttempts   *int                      `yaml:"max_attempts"`
	InitialDelay  Duration                  `yaml:"initial_delay"`
	MaxDelay      Duration                  `yaml:"max_delay"`
	EnabledTools  []string                  `yaml:"enabled_tools"`
	DisabledTools []string                  `yaml:"disabled_tools"`
	Overrides     map[string]OverrideConfig `yaml:"overrides"`
}

// OverrideConfig is the per-tool override fragment of a policy file.
type OverrideConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
}

// Duration is a time.Duration that unmarshals from Go duration strings
// ("4s", "1m30s") or bare numbers interpreted as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler. Numeric scalars decode into a
// string without error in yaml.v3, so the branch is on the node tag rather
// than a decode failure.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!str" {
		var text string
		if err := value.Decode(&text); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", text, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration at line %d: expected duration string or seconds", value.Line)
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// ParseConfig parses a YAML policy document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse retry config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads and parses a YAML policy file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read retry config: %w", err)
	}
	return ParseConfig(data)
}

// Options converts the config into construction options for New.
func (c *Config) Options() []Option {
	var opts []Option

	if c.Model.MaxAttempts != nil {
		opts = append(opts, WithModelMaxAttempts(*c.Model.MaxAttempts))
	}
	if c.Model.InitialDelay != 0 {
		opts = append(opts, WithModelInitialDelay(time.Duration(c.Model.InitialDelay)))
	}
	if c.Model.MaxDelay != 0 {
		opts = append(opts, WithModelMaxDelay(time.Duration(c.Model.MaxDelay)))
	}

	if c.Tool.MaxAttempts != nil {
		opts = append(opts, WithToolMaxAttempts(*c.Tool.MaxAttempts))
	}
	if c.Tool.InitialDelay != 0 {
		opts = append(opts, WithToolInitialDelay(time.Duration(c.Tool.InitialDelay)))
	}
	if c.Tool.MaxDelay != 0 {
		opts = append(opts, WithToolMaxDelay(time.Duration(c.Tool.MaxDelay)))
	}
	if len(c.Tool.EnabledTools) > 0 {
		opts = append(opts, WithEnabledTools(c.Tool.EnabledTools...))
	}
	if len(c.Tool.DisabledTools) > 0 {
		opts = append(opts, WithDisabledTools(c.Tool.DisabledTools...))
	}
	for name, o := range c.Tool.Overrides {
		opts = append(opts, WithToolOverride(name, ToolOverride{
			MaxAttempts:  o.MaxAttempts,
			InitialDelay: time.Duration(o.InitialDelay),
			MaxDelay:     time.Duration(o.MaxDelay),
		}))
	}
	return opts
}

// NewFromConfig builds a Strategy from a parsed policy file. Extra options
// are applied after the config's, so code can override file settings (and
// install a should-retry predicate, which has no file form).
func NewFromConfig(cfg *Config, extra ...Option) (*Strategy, error) {
	return New(append(cfg.Options(), extra...)...)
}
