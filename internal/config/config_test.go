package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pi-agent/pi-messenger/internal/config"
)

func withHome(t *testing.T) string {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".pi", "agent"), 0750); err != nil {
		t.Fatal(err)
	}
	return home
}

func TestLoadReturnsDefaultsWithNoFiles(t *testing.T) {
	withHome(t)
	cwd := t.TempDir()

	cfg, err := config.Load(cwd)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.AutoRegister == nil || !*cfg.AutoRegister {
		t.Error("expected autoRegister default true")
	}
	if cfg.Crew.Concurrency.Workers != 3 {
		t.Errorf("expected default crew.concurrency.workers=3, got %d", cfg.Crew.Concurrency.Workers)
	}
}

func TestLoadProjectOverridesUserOverridesShared(t *testing.T) {
	home := withHome(t)
	cwd := t.TempDir()

	sharedPath := filepath.Join(home, ".pi", "agent", "settings.json")
	if err := os.WriteFile(sharedPath, []byte(`{"messenger":{"nameTheme":"shared","replyHint":false}}`), 0600); err != nil {
		t.Fatal(err)
	}

	userPath := filepath.Join(home, ".pi", "agent", "pi-messenger.json")
	if err := os.WriteFile(userPath, []byte(`{"nameTheme":"user"}`), 0600); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(cwd, ".pi"), 0750); err != nil {
		t.Fatal(err)
	}
	projectPath := filepath.Join(cwd, ".pi", "pi-messenger.json")
	if err := os.WriteFile(projectPath, []byte(`{"crew":{"concurrency":{"workers":7}}}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.NameTheme != "user" {
		t.Errorf("expected nameTheme 'user' (user overrides shared), got %q", cfg.NameTheme)
	}
	if cfg.ReplyHint == nil || *cfg.ReplyHint {
		t.Errorf("expected replyHint=false from shared settings to survive, got %v", cfg.ReplyHint)
	}
	if cfg.Crew.Concurrency.Workers != 7 {
		t.Errorf("expected project layer to set workers=7, got %d", cfg.Crew.Concurrency.Workers)
	}
	if cfg.Crew.Concurrency.Scouts != 1 {
		t.Errorf("expected default scouts=1 to survive untouched, got %d", cfg.Crew.Concurrency.Scouts)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	home := withHome(t)
	cwd := t.TempDir()

	userPath := filepath.Join(home, ".pi", "agent", "pi-messenger.json")
	if err := os.WriteFile(userPath, []byte(`{invalid`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(cwd); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadFalseBooleanOverridesDefaultTrue(t *testing.T) {
	home := withHome(t)
	cwd := t.TempDir()

	userPath := filepath.Join(home, ".pi", "agent", "pi-messenger.json")
	if err := os.WriteFile(userPath, []byte(`{"autoRegister":false}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.AutoRegister == nil || *cfg.AutoRegister {
		t.Error("expected autoRegister=false to override the default true")
	}
}

func TestStuckThresholdFallsBackToDefault(t *testing.T) {
	var cfg config.Config
	got := cfg.StuckThreshold(900_000_000_000) // 900s in nanoseconds, avoids importing time for the literal
	if got != 900_000_000_000 {
		t.Errorf("expected fallback duration, got %v", got)
	}
}

func TestContextFlagsFullEnablesAll(t *testing.T) {
	cfg := config.Defaults()
	registration, reply, senderDetails := cfg.ContextFlags()
	if !registration || !reply || !senderDetails {
		t.Errorf("expected full contextMode to enable all three, got %v %v %v", registration, reply, senderDetails)
	}
}

func TestContextFlagsNoneDisablesAll(t *testing.T) {
	cfg := config.Defaults()
	cfg.ContextMode = "none"
	registration, reply, senderDetails := cfg.ContextFlags()
	if registration || reply || senderDetails {
		t.Errorf("expected none contextMode to disable all three, got %v %v %v", registration, reply, senderDetails)
	}
}

func TestContextFlagsExplicitOverrideWinsOverMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.ContextMode = "none"
	enabled := true
	cfg.ReplyHint = &enabled
	_, reply, _ := cfg.ContextFlags()
	if !reply {
		t.Error("expected explicit replyHint=true to override contextMode=none")
	}
}
