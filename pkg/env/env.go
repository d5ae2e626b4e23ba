package env

import "os"

// All process configuration lives under one namespace; see pkg/config for
// the full set.
const prefix = "SHOPKART_"

// Get reads a namespaced environment variable, falling back when it is
// unset or blank. Intended for the few values needed before config loads.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	return fallback
}
