package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.BackendLabel != "claude" {
		t.Errorf("BackendLabel = %q, want claude", s.BackendLabel)
	}
	if !s.MouseEnabled {
		t.Error("MouseEnabled should default true")
	}
	if s.MeterUpdateMS != 50 {
		t.Errorf("MeterUpdateMS = %d, want 50", s.MeterUpdateMS)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if s.BackendLabel != DefaultSettings().BackendLabel {
		t.Errorf("BackendLabel = %q, want default", s.BackendLabel)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VOICETERM_DIR", dir)
	if err := WriteMarker(dir); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	ResetResolveCache()
	t.Cleanup(ResetResolveCache)

	want := DefaultSettings()
	want.BackendLabel = "codex"
	want.ThemeIndex = 2
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BackendLabel != "codex" {
		t.Errorf("BackendLabel = %q, want codex", got.BackendLabel)
	}
	if got.ThemeIndex != 2 {
		t.Errorf("ThemeIndex = %d, want 2", got.ThemeIndex)
	}
}

func TestIsVoiceTermDirFalseForPlainDir(t *testing.T) {
	if IsVoiceTermDir(t.TempDir()) {
		t.Error("plain temp dir should not look like a voiceterm dir")
	}
}

func TestResolveDirHonorsEnvVar(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMarker(dir); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	t.Setenv("VOICETERM_DIR", dir)
	ResetResolveCache()
	t.Cleanup(ResetResolveCache)

	resolved, err := ResolveDir()
	if err != nil {
		t.Fatalf("ResolveDir: %v", err)
	}
	if resolved != dir {
		t.Errorf("ResolveDir() = %q, want %q", resolved, dir)
	}
}

func TestResolveDirRejectsNonVoiceTermEnvDir(t *testing.T) {
	t.Setenv("VOICETERM_DIR", t.TempDir())
	ResetResolveCache()
	t.Cleanup(ResetResolveCache)

	if _, err := ResolveDir(); err == nil {
		t.Error("expected error for env dir missing marker file")
	}
}
