package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "ashval")
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("name: ${SAMPLE_NAME}\nport: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "ashval" || s.Port != 9000 || !s.valid {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	_ = os.WriteFile(path, []byte("port: 0\n"), 0o644)

	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	s := sample{Port: 8080}
	if err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Port != 8080 || !s.valid {
		t.Errorf("defaults not kept: %+v", s)
	}
}
