package config

import "strings"

func (c *Config) normalize() error {
	c.Archive.Name = strings.TrimSpace(c.Archive.Name)
	c.Archive.URL = strings.TrimSpace(c.Archive.URL)
	c.Archive.License = strings.TrimSpace(c.Archive.License)
	c.Archive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Archive.BaseURL), "/")

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Convert.TimeoutSeconds <= 0 {
		c.Convert.TimeoutSeconds = 30
	}
	if c.Convert.VideoTimeoutSeconds <= 0 {
		c.Convert.VideoTimeoutSeconds = 3600
	}
	for tag, template := range c.Convert.Commands {
		trimmed := strings.TrimSpace(template)
		if trimmed == "" {
			delete(c.Convert.Commands, tag)
			continue
		}
		c.Convert.Commands[tag] = trimmed
	}

	for i := range c.Derive.Rules {
		rule := &c.Derive.Rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		for j, ext := range rule.Extensions {
			rule.Extensions[j] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		}
		for j := range rule.Targets {
			rule.Targets[j].Tag = strings.TrimSpace(rule.Targets[j].Tag)
			rule.Targets[j].Ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(rule.Targets[j].Ext), "."))
		}
	}
	return nil
}
