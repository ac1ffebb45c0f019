package cqlish

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// getIntEnv returns the positive integer stored in key. Unset, malformed or
// non-positive values fall back to defaultValue.
func getIntEnv(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"value": raw,
		}).Warn("ignoring invalid environment value")
		return defaultValue
	}

	return n
}

// getBoolEnv is true when key is present, whatever its value.
func getBoolEnv(key string, defaultValue bool) bool {
	if _, ok := os.LookupEnv(key); ok {
		return true
	}
	return defaultValue
}

func getStringEnv(key string, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}
