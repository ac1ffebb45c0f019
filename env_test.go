package cqlish

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const testEnvKey = "CQLISH_TEST_ENV"

func TestGetIntEnv(t *testing.T) {
	testCases := []struct {
		name     string
		value    *string
		expected int
	}{
		{"unset", nil, 7},
		{"valid", strPtr("42"), 42},
		{"padded", strPtr(" 3 "), 3},
		{"malformed", strPtr("lots"), 7},
		{"zero", strPtr("0"), 7},
		{"negative", strPtr("-2"), 7},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.value)
			require.Equal(t, tt.expected, getIntEnv(testEnvKey, 7))
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	require := require.New(t)

	withEnv(t, nil)
	require.False(getBoolEnv(testEnvKey, false))

	withEnv(t, strPtr(""))
	require.True(getBoolEnv(testEnvKey, false))
}

func TestGetStringEnv(t *testing.T) {
	require := require.New(t)

	withEnv(t, nil)
	require.Equal("def", getStringEnv(testEnvKey, "def"))

	withEnv(t, strPtr("  "))
	require.Equal("def", getStringEnv(testEnvKey, "def"))

	withEnv(t, strPtr("/data"))
	require.Equal("/data", getStringEnv(testEnvKey, "def"))
}

func withEnv(t *testing.T, value *string) {
	t.Helper()

	if value == nil {
		require.NoError(t, os.Unsetenv(testEnvKey))
		return
	}

	require.NoError(t, os.Setenv(testEnvKey, *value))
	t.Cleanup(func() { os.Unsetenv(testEnvKey) })
}

func strPtr(s string) *string { return &s }
