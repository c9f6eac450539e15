package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.AI.Enabled() {
		t.Error("AI should be disabled without an API key")
	}
	if got := cfg.AI.Limits(); got.MaxNotes != 5 || got.MaxLore != 5 || got.MaxChars != 2000 {
		t.Errorf("default limits = %+v", got)
	}
}

func TestAIConfig_KeyRequiresModel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.AI.APIKey = "key"
	cfg.AI.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("API key without model should fail validation")
	}
	cfg.AI.Model = "gemini-2.5-flash"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("configured AI should pass: %v", err)
	}
}

func TestStorageConfig_Required(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty data dir should fail validation")
	}
}

func TestStorageConfig_AvatarDir(t *testing.T) {
	c := StorageConfig{DataDir: "data"}
	if got := c.AvatarDir(); got != filepath.Join("data", "avatars") {
		t.Errorf("AvatarDir = %q", got)
	}
}
