//go:build integration

package integration

import (
	"os"
	"testing"
)

// getDeepSeekKey returns the API key for integration tests.
func getDeepSeekKey(t *testing.T) string {
	t.Helper()
	return os.Getenv("DEEPSEEK_API_KEY")
}

// skipIfNoDeepSeekKey skips the test when no API key is configured.
func skipIfNoDeepSeekKey(t *testing.T) {
	t.Helper()
	if os.Getenv("DEEPSEEK_API_KEY") == "" {
		t.Skip("DEEPSEEK_API_KEY not set, skipping integration test")
	}
}
