package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugforge/deepseek/core"
)

func TestResolveAPIKeyFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPSEEK_API_KEY", "sk-from-env")

	key, err := resolveAPIKey()
	if err != nil {
		t.Fatalf("resolveAPIKey() error = %v", err)
	}
	if key != "sk-from-env" {
		t.Errorf("key = %q, want sk-from-env", key)
	}
}

func TestResolveAPIKeyFromConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPSEEK_API_KEY", "")

	dir := t.TempDir()
	content := "[user]\napi_key = \"sk-from-toml\"\n"
	if err := os.WriteFile(filepath.Join(dir, "user.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	configDir = dir
	t.Cleanup(func() { configDir = "" })

	key, err := resolveAPIKey()
	if err != nil {
		t.Fatalf("resolveAPIKey() error = %v", err)
	}
	if key != "sk-from-toml" {
		t.Errorf("key = %q, want sk-from-toml", key)
	}
}

func TestResolveAPIKeyMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPSEEK_API_KEY", "")

	configDir = t.TempDir()
	t.Cleanup(func() { configDir = "" })

	if _, err := resolveAPIKey(); err == nil {
		t.Error("resolveAPIKey() error = nil, want error")
	}
}

func TestHandleChatErrorExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"network", core.ErrNetwork, ExitNetwork},
		{"validation", core.ErrModelRequired, ExitValidation},
		{"provider", core.ErrServer, ExitProvider},
		{
			"provider error network",
			&core.ProviderError{Provider: "deepseek", Message: "down", Err: core.ErrNetwork},
			ExitNetwork,
		},
		{
			"provider error server",
			&core.ProviderError{Provider: "deepseek", Status: 500, Message: "oops", Err: core.ErrServer},
			ExitProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handleChatError(tt.err)
			var ec *exitError
			if !errors.As(err, &ec) {
				t.Fatalf("handleChatError() = %T, want *exitError", err)
			}
			if ec.ExitCode() != tt.code {
				t.Errorf("ExitCode() = %d, want %d", ec.ExitCode(), tt.code)
			}
		})
	}
}

func TestConfigDirFlagOverride(t *testing.T) {
	configDir = "/tmp/custom-config"
	t.Cleanup(func() { configDir = "" })

	if got := ConfigDir(); got != "/tmp/custom-config" {
		t.Errorf("ConfigDir() = %q, want /tmp/custom-config", got)
	}
}
