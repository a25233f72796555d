package config

import "os"

// parseEnv overlays the settings that are usually injected as secrets.
// Unset variables leave the current values untouched.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("SECRET_KEY"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("S3_ROOT_PASSWORD"); ok && v != "" {
		config.S3RootPassword = v
	}
}
