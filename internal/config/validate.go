package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration errors that would break an operation
// later, joined so a bad file surfaces every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}

	for tag, template := range c.Convert.Commands {
		if !strings.Contains(template, "{target}") {
			errs = append(errs, fmt.Errorf("convert.commands.%s: template missing {target} placeholder", tag))
		}
	}

	for _, rule := range c.Derive.Rules {
		if rule.Name == "" {
			errs = append(errs, errors.New("derive.rules: rule without a name"))
			continue
		}
		if len(rule.Extensions) == 0 {
			errs = append(errs, fmt.Errorf("derive.rules.%s: no extensions", rule.Name))
		}
		if len(rule.Targets) == 0 {
			errs = append(errs, fmt.Errorf("derive.rules.%s: no targets", rule.Name))
		}
		for _, target := range rule.Targets {
			if target.Tag == "" || target.Ext == "" {
				errs = append(errs, fmt.Errorf("derive.rules.%s: target needs both tag and ext", rule.Name))
			}
		}
	}

	return errors.Join(errs...)
}
