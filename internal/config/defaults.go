package config

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Archive: Archive{
			License: "https://creativecommons.org/licenses/by-nc-sa/4.0/",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Convert: Convert{
			TimeoutSeconds:      30,
			VideoTimeoutSeconds: 3600,
		},
	}
}
