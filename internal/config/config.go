// Package config defines the benchmark configuration and its loader.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Kind names a benchmarked operation.
type Kind string

const (
	KindRerank Kind = "rerank"
	KindScore  Kind = "score"
)

// Config holds one fully-resolved benchmark invocation. Defaults are applied
// by the Loader; consumers never probe for unset fields.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	Model string `mapstructure:"model"`
	Query string `mapstructure:"query"`
	Docs  int    `mapstructure:"docs"`
	TopN  int    `mapstructure:"top_n"`

	Concurrency    []int    `mapstructure:"concurrency"`
	CallsPerWorker int      `mapstructure:"calls_per_worker"`
	Warmup         int      `mapstructure:"warmup"`
	Rate           int      `mapstructure:"rate"`
	Kinds          []string `mapstructure:"kinds"`

	JSONOutput bool     `mapstructure:"json_output"`
	Thresholds []string `mapstructure:"thresholds"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.BaseURL) == "" {
		issues = append(issues, "base_url is required")
	} else if u, err := url.Parse(c.BaseURL); err != nil {
		issues = append(issues, fmt.Sprintf("base_url is not a valid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("base_url scheme %q is not supported (use http or https)", u.Scheme))
	}

	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Docs < 1 {
		issues = append(issues, "docs must be >= 1")
	}
	if c.TopN < 1 {
		issues = append(issues, "top-n must be >= 1")
	}
	if c.TopN > c.Docs {
		issues = append(issues, "top-n must be <= docs")
	}
	if len(c.Concurrency) == 0 {
		issues = append(issues, "at least one concurrency level is required")
	}
	for i, conc := range c.Concurrency {
		if conc < 1 {
			issues = append(issues, fmt.Sprintf("concurrency[%d] must be >= 1", i))
		}
	}
	if c.CallsPerWorker < 1 {
		issues = append(issues, "calls-per-worker must be >= 1")
	}
	if c.Warmup < 0 {
		issues = append(issues, "warmup must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}

	if len(c.Kinds) == 0 {
		issues = append(issues, "at least one operation kind is required")
	}
	for _, kind := range c.Kinds {
		switch Kind(kind) {
		case KindRerank, KindScore:
		default:
			issues = append(issues, fmt.Sprintf("operation kind %q is not supported (use rerank or score)", kind))
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
