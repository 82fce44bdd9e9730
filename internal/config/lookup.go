package config

import (
	"os"
	"strconv"
)

// LookupEnvOrString returns the variable if it is set, even to an empty value
func (c *Config) LookupEnvOrString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

// LookupEnvOrInt64 returns the parsed variable, or defaultVal when unset or not an integer
func (c *Config) LookupEnvOrInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			return x
		}
	}

	return defaultVal
}
