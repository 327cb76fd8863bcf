package env

import "os"

const prefix = "VITALSTACK_"

// Get returns the value of the given environment variable or a fallback.
// A VITALSTACK_-prefixed variant wins over the bare key.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
