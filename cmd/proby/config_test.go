package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test helpers.

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		t.Fatalf("failed to create dir %s: %v", dir, err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// isolatedEnv returns an env slice whose XDG_CONFIG_HOME points at an empty
// directory, so the developer's real global config never leaks into tests.
func isolatedEnv(t *testing.T) []string {
	t.Helper()

	return []string{"XDG_CONFIG_HOME=" + t.TempDir()}
}

// globalEnv returns an env slice plus the path where the global config file
// is expected under it.
func globalEnv(t *testing.T) ([]string, string) {
	t.Helper()

	xdgHome := t.TempDir()

	return []string{"XDG_CONFIG_HOME=" + xdgHome}, filepath.Join(xdgHome, "proby", "config.json")
}

// Tests for defaults and file loading.

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, sources, err := LoadConfig(dir, "", isolatedEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := DefaultConfig()
	if cfg != want {
		t.Errorf("config = %+v, want defaults %+v", cfg, want)
	}

	if sources.Global != "" || sources.Project != "" {
		t.Errorf("no config files exist, but sources = %+v", sources)
	}
}

func TestConfig_FromProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "custom> ", "bulk_count": 50}`)

	cfg, sources, err := LoadConfig(dir, "", isolatedEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Prompt != "custom> " {
		t.Errorf("prompt = %q, want %q", cfg.Prompt, "custom> ")
	}

	if cfg.BulkCount != 50 {
		t.Errorf("bulk_count = %d, want 50", cfg.BulkCount)
	}

	// Fields absent from the file keep their defaults
	if cfg.DumpFile != DefaultConfig().DumpFile {
		t.Errorf("dump_file = %q, want default %q", cfg.DumpFile, DefaultConfig().DumpFile)
	}

	if sources.Project == "" {
		t.Error("project config was loaded but sources.Project is empty")
	}
}

func TestConfig_FromProjectFileWithComments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{
		// The REPL prompt
		"prompt": "commented> ",
	}`)

	cfg, _, err := LoadConfig(dir, "", isolatedEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Prompt != "commented> " {
		t.Errorf("prompt = %q, want %q", cfg.Prompt, "commented> ")
	}
}

func TestConfig_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "custom.json"), `{"dump_file": "custom-dump.json"}`)

	// Relative paths resolve against the working directory
	cfg, sources, err := LoadConfig(dir, "custom.json", isolatedEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DumpFile != "custom-dump.json" {
		t.Errorf("dump_file = %q, want %q", cfg.DumpFile, "custom-dump.json")
	}

	if sources.Project != filepath.Join(dir, "custom.json") {
		t.Errorf("sources.Project = %q, want %q", sources.Project, filepath.Join(dir, "custom.json"))
	}
}

func TestConfig_ExplicitFileOverridesProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "from-project> "}`)
	writeFile(t, filepath.Join(dir, "explicit.json"), `{"prompt": "from-explicit> "}`)

	cfg, _, err := LoadConfig(dir, "explicit.json", isolatedEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Prompt != "from-explicit> " {
		t.Errorf("prompt = %q, want %q", cfg.Prompt, "from-explicit> ")
	}
}

// Tests for the global config file.

func TestConfig_FromGlobalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env, globalPath := globalEnv(t)
	writeFile(t, globalPath, `{"history_file": "/tmp/global-history"}`)

	cfg, sources, err := LoadConfig(dir, "", env)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.HistoryFile != "/tmp/global-history" {
		t.Errorf("history_file = %q, want %q", cfg.HistoryFile, "/tmp/global-history")
	}

	if sources.Global != globalPath {
		t.Errorf("sources.Global = %q, want %q", sources.Global, globalPath)
	}
}

func TestConfig_Precedence_ProjectOverridesGlobal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env, globalPath := globalEnv(t)
	writeFile(t, globalPath, `{"prompt": "global> ", "bulk_count": 10}`)
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "project> "}`)

	cfg, _, err := LoadConfig(dir, "", env)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Prompt != "project> " {
		t.Errorf("prompt = %q, want %q", cfg.Prompt, "project> ")
	}

	// Fields the project file leaves unset still come from the global file
	if cfg.BulkCount != 10 {
		t.Errorf("bulk_count = %d, want 10 from the global file", cfg.BulkCount)
	}
}

func TestGlobalConfigPath_UsesEnvSlice(t *testing.T) {
	t.Parallel()

	got := getGlobalConfigPath([]string{"XDG_CONFIG_HOME=/custom/xdg"})
	want := filepath.Join("/custom/xdg", "proby", "config.json")

	if got != want {
		t.Errorf("getGlobalConfigPath = %q, want %q", got, want)
	}
}

// Tests for config errors.

func TestConfig_ExplicitFileNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := LoadConfig(dir, "nonexistent.json", isolatedEnv(t))
	if !errors.Is(err, errConfigFileNotFound) {
		t.Errorf("err = %v, want errConfigFileNotFound", err)
	}
}

func TestConfig_InvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{invalid json}`)

	_, _, err := LoadConfig(dir, "", isolatedEnv(t))
	if !errors.Is(err, errConfigInvalid) {
		t.Errorf("err = %v, want errConfigInvalid", err)
	}
}

func TestConfig_BulkCountMustBePositive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"bulk_count": -5}`)

	_, _, err := LoadConfig(dir, "", isolatedEnv(t))
	if !errors.Is(err, errBulkCountInvalid) {
		t.Errorf("err = %v, want errBulkCountInvalid", err)
	}
}

// Tests for formatting.

func TestFormatConfig_UsesConfigFileKeys(t *testing.T) {
	t.Parallel()

	out, err := FormatConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("FormatConfig failed: %v", err)
	}

	for _, key := range []string{`"prompt"`, `"dump_file"`, `"bulk_count"`} {
		if !strings.Contains(out, key) {
			t.Errorf("formatted config should contain %s, got:\n%s", key, out)
		}
	}
}
