package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the configuration can support the given command
// mode. Modes: "scrape", "investigate", "validate", "newcomer",
// "attribute", "export". All failures are collected into one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	needsLLM := false
	switch mode {
	case "scrape", "investigate", "validate", "newcomer", "attribute":
		needsLLM = true
	case "export":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needsLLM && c.LLM.Key == "" {
		problems = append(problems, "llm.key is required (set PLS_LLM_KEY or ANTHROPIC_API_KEY)")
	}

	if c.Batch.Concurrency < 0 || c.Batch.Concurrency > 10 {
		problems = append(problems, "batch.concurrency must be between 0 and 10")
	}
	if c.Scrape.MinStores < 1 {
		problems = append(problems, "scrape.min_stores must be >= 1")
	}
	if c.Scrape.MaxPages < 1 || c.Scrape.MaxBrowserPages < 1 {
		problems = append(problems, "scrape page limits must be >= 1")
	}
	if c.Scrape.TimeoutSecs < 1 {
		problems = append(problems, "scrape.timeout_secs must be >= 1")
	}

	if len(problems) > 0 {
		return eris.New(fmt.Sprintf("config: invalid for mode %s: %s", mode, strings.Join(problems, "; ")))
	}
	return nil
}
