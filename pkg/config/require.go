package config

import "log"

// MustNonEmpty stops the process when a required variable is unset.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustSecret additionally enforces a minimum length for signing keys.
func MustSecret(value []byte, envName string, minLen int) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
	if len(value) < minLen {
		log.Fatalf("env %s must be at least %d bytes", envName, minLen)
	}
}
