// Package config resolves the VoiceTerm home directory and loads the
// user-editable settings that back the Settings overlay.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/voiceterm/voiceterm/internal/version"
)

const markerFile = ".voiceterm-dir.txt"

// Settings holds the subset of state the Settings overlay exposes.
// Actionable rows are editable via the overlay; read-only rows (BuildVersion)
// must not re-render on Enter.
type Settings struct {
	BackendLabel          string `yaml:"backend_label"`
	MouseEnabled          bool   `yaml:"mouse_enabled"`
	ThemeIndex            int    `yaml:"theme_index"`
	MeterUpdateMS         int    `yaml:"meter_update_ms"`
	PromptContextFallback bool   `yaml:"prompt_context_fallback"`

	// BuildVersion is read-only; sourced from internal/version, never yaml.
	BuildVersion string `yaml:"-"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		BackendLabel:          "claude",
		MouseEnabled:          true,
		ThemeIndex:            0,
		MeterUpdateMS:         50,
		PromptContextFallback: false,
		BuildVersion:          version.Version,
	}
}

// IsVoiceTermDir checks if dir contains a valid marker file.
func IsVoiceTermDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, markerFile))
	return err == nil && !info.IsDir()
}

// WriteMarker writes the marker file with the current version.
func WriteMarker(dir string) error {
	return os.WriteFile(filepath.Join(dir, markerFile), []byte("v"+version.Version+"\n"), 0o644)
}

// looksLikeVoiceTermDir returns true if dir exists and contains expected
// subdirectories even without a marker file. Used for one-time migration.
func looksLikeVoiceTermDir(dir string) bool {
	for _, sub := range []string{"sessions", "sockets"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			return false
		}
	}
	return true
}

var (
	resolvedDir string
	resolvedErr error
	resolveOnce sync.Once
)

// ResolveDir finds the VoiceTerm home directory.
// Order: VOICETERM_DIR env var -> walk up CWD -> ~/.voiceterm/ fallback.
// Result is cached for the process lifetime.
func ResolveDir() (string, error) {
	resolveOnce.Do(func() {
		resolvedDir, resolvedErr = resolveDir()
	})
	return resolvedDir, resolvedErr
}

// ResetResolveCache resets the cached ResolveDir result. For testing only.
func ResetResolveCache() {
	resolveOnce = sync.Once{}
	resolvedDir = ""
	resolvedErr = nil
}

func resolveDir() (string, error) {
	if dir := os.Getenv("VOICETERM_DIR"); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("VOICETERM_DIR: %w", err)
		}
		if !IsVoiceTermDir(abs) {
			return "", fmt.Errorf("VOICETERM_DIR=%s is not a voiceterm directory (missing %s)", abs, markerFile)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	for {
		if IsVoiceTermDir(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	global := filepath.Join(home, ".voiceterm")
	if IsVoiceTermDir(global) {
		return global, nil
	}
	if looksLikeVoiceTermDir(global) {
		if err := WriteMarker(global); err != nil {
			return "", fmt.Errorf("migrate %s: %w", global, err)
		}
		return global, nil
	}

	if err := os.MkdirAll(global, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", global, err)
	}
	if err := WriteMarker(global); err != nil {
		return "", fmt.Errorf("initialize %s: %w", global, err)
	}
	return global, nil
}

// Dir returns the resolved voiceterm dir, falling back to ~/.voiceterm on error.
func Dir() string {
	dir, err := ResolveDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return filepath.Join(".", ".voiceterm")
		}
		return filepath.Join(home, ".voiceterm")
	}
	return dir
}

// ResolveDirAll returns the voiceterm directories named by $VOICETERM_DIR
// and the default ~/.voiceterm, sorted and de-duplicated; no other place
// is searched. Best-effort: silently skips inaccessible directories.
func ResolveDirAll() []string {
	seen := make(map[string]bool)
	var dirs []string

	add := func(dir string) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return
		}
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			abs = real
		}
		if !seen[abs] {
			seen[abs] = true
			dirs = append(dirs, abs)
		}
	}

	if dir := os.Getenv("VOICETERM_DIR"); dir != "" && IsVoiceTermDir(dir) {
		add(dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, ".voiceterm")
		if IsVoiceTermDir(global) || looksLikeVoiceTermDir(global) {
			add(global)
		}
	}

	sort.Strings(dirs)
	return dirs
}

// Load reads settings.yaml from the resolved voiceterm dir.
// If the file does not exist, DefaultSettings is returned with no error.
func Load() (Settings, error) {
	return LoadFrom(filepath.Join(Dir(), "settings.yaml"))
}

// LoadFrom reads settings from the given path.
func LoadFrom(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	s.BuildVersion = version.Version
	return s, nil
}

// Save writes settings to <voiceterm-dir>/settings.yaml.
func Save(s Settings) error {
	path := filepath.Join(Dir(), "settings.yaml")
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
