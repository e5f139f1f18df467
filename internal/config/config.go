// Package config resolves pi-messenger's settings from four layers, each
// overriding the one before it: compiled-in defaults, the user's shared
// agent settings file, the user's messenger-specific file, and the
// current project's messenger file. Each layer is an optional JSON file;
// a missing file contributes nothing and is not an error.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CrewConcurrency bounds how many scout/worker subprocesses the
// orchestrator runs at once.
type CrewConcurrency struct {
	Scouts  int `json:"scouts,omitempty"`
	Workers int `json:"workers,omitempty"`
}

// CrewWork bounds how long an orchestration run is allowed to keep
// retrying a task or looping waves before giving up.
type CrewWork struct {
	MaxAttemptsPerTask int `json:"maxAttemptsPerTask,omitempty"`
	MaxWaves           int `json:"maxWaves,omitempty"`
}

// CrewArtifacts controls whether per-attempt prompt/output/progress files
// are kept on disk and for how long.
type CrewArtifacts struct {
	Enabled     *bool `json:"enabled,omitempty"`
	CleanupDays int   `json:"cleanupDays,omitempty"`
}

// Crew groups the task-orchestration settings under the "crew" key.
type Crew struct {
	Concurrency CrewConcurrency `json:"concurrency,omitempty"`
	Work        CrewWork        `json:"work,omitempty"`
	Artifacts   CrewArtifacts   `json:"artifacts,omitempty"`
}

// Config is the fully merged settings pi-messenger runs with.
type Config struct {
	AutoRegister                *bool    `json:"autoRegister,omitempty"`
	AutoRegisterPaths           []string `json:"autoRegisterPaths,omitempty"`
	ScopeToFolder               *bool    `json:"scopeToFolder,omitempty"`
	ContextMode                 string   `json:"contextMode,omitempty"`
	RegistrationContext         *bool    `json:"registrationContext,omitempty"`
	ReplyHint                   *bool    `json:"replyHint,omitempty"`
	SenderDetailsOnFirstContact *bool    `json:"senderDetailsOnFirstContact,omitempty"`
	StuckThresholdSeconds       int      `json:"stuckThreshold,omitempty"`
	StuckNotify                 *bool    `json:"stuckNotify,omitempty"`
	AutoStatus                  *bool    `json:"autoStatus,omitempty"`
	NameTheme                   string   `json:"nameTheme,omitempty"`
	NameWords                   []string `json:"nameWords,omitempty"`
	FeedRetentionDays           int      `json:"feedRetention,omitempty"`
	BroadcastRatePerSecond      float64  `json:"broadcastRatePerSecond,omitempty"`
	BroadcastBurst              int      `json:"broadcastBurst,omitempty"`
	Crew                        Crew     `json:"crew,omitempty"`
}

// ContextFlags resolves the three fine-grained join/delivery toggles from
// their explicit overrides, falling back to contextMode's shorthand
// ("full" enables all three, "minimal" keeps only registrationContext,
// "none" disables all three) when a field was never set by any layer.
func (c Config) ContextFlags() (registrationContext, replyHint, senderDetailsOnFirstContact bool) {
	switch c.ContextMode {
	case "minimal":
		registrationContext, replyHint, senderDetailsOnFirstContact = true, false, false
	case "none":
		registrationContext, replyHint, senderDetailsOnFirstContact = false, false, false
	default: // "full" or unset
		registrationContext, replyHint, senderDetailsOnFirstContact = true, true, true
	}
	if c.RegistrationContext != nil {
		registrationContext = *c.RegistrationContext
	}
	if c.ReplyHint != nil {
		replyHint = *c.ReplyHint
	}
	if c.SenderDetailsOnFirstContact != nil {
		senderDetailsOnFirstContact = *c.SenderDetailsOnFirstContact
	}
	return registrationContext, replyHint, senderDetailsOnFirstContact
}

// StuckThreshold returns StuckThresholdSeconds as a time.Duration, or def
// if unset.
func (c Config) StuckThreshold(def time.Duration) time.Duration {
	if c.StuckThresholdSeconds <= 0 {
		return def
	}
	return time.Duration(c.StuckThresholdSeconds) * time.Second
}

// settingsFile is the shape of ~/.pi/agent/settings.json; only its
// "messenger" key is relevant to us, the rest belongs to other tools
// sharing that file.
type settingsFile struct {
	Messenger Config `json:"messenger"`
}

// Defaults returns the compiled-in baseline every other layer overrides.
func Defaults() Config {
	enabled := true
	return Config{
		AutoRegister:  &enabled,
		ScopeToFolder: &enabled,
		ContextMode:   "full",
		AutoStatus:    &enabled,
		NameTheme:     "default",
		BroadcastRatePerSecond: 5,
		BroadcastBurst:         10,
		Crew: Crew{
			Concurrency: CrewConcurrency{Scouts: 1, Workers: 3},
			Work:        CrewWork{MaxAttemptsPerTask: 5, MaxWaves: 50},
			Artifacts:   CrewArtifacts{Enabled: &enabled, CleanupDays: 14},
		},
	}
}

// Load resolves the merged config for the given project working
// directory. cwd may be empty, in which case os.Getwd() is used.
//
// Layers, lowest to highest priority:
//  1. Defaults()
//  2. ~/.pi/agent/settings.json, "messenger" key
//  3. ~/.pi/agent/pi-messenger.json
//  4. <cwd>/.pi/pi-messenger.json
func Load(cwd string) (Config, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, err
		}
		cwd = wd
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	agentDir := filepath.Join(home, ".pi", "agent")

	cfg := Defaults()

	var shared settingsFile
	if ok, err := readJSONFile(filepath.Join(agentDir, "settings.json"), &shared); err != nil {
		return Config{}, fmt.Errorf("read shared settings: %w", err)
	} else if ok {
		cfg = merge(cfg, shared.Messenger)
	}

	var userCfg Config
	if ok, err := readJSONFile(filepath.Join(agentDir, "pi-messenger.json"), &userCfg); err != nil {
		return Config{}, fmt.Errorf("read user config: %w", err)
	} else if ok {
		cfg = merge(cfg, userCfg)
	}

	var projectCfg Config
	if ok, err := readJSONFile(filepath.Join(cwd, ".pi", "pi-messenger.json"), &projectCfg); err != nil {
		return Config{}, fmt.Errorf("read project config: %w", err)
	} else if ok {
		cfg = merge(cfg, projectCfg)
	}

	return cfg, nil
}

// readJSONFile unmarshals path into v, reporting ok=false (no error) when
// the file doesn't exist.
func readJSONFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304 - path built from known config roots, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// merge overlays every non-zero field of over onto base, field by field.
// Slices and the nested Crew struct replace wholesale rather than
// element-merging: a layer either sets a list/section or it doesn't.
func merge(base, over Config) Config {
	if over.AutoRegister != nil {
		base.AutoRegister = over.AutoRegister
	}
	if over.AutoRegisterPaths != nil {
		base.AutoRegisterPaths = over.AutoRegisterPaths
	}
	if over.ScopeToFolder != nil {
		base.ScopeToFolder = over.ScopeToFolder
	}
	if over.ContextMode != "" {
		base.ContextMode = over.ContextMode
	}
	if over.RegistrationContext != nil {
		base.RegistrationContext = over.RegistrationContext
	}
	if over.ReplyHint != nil {
		base.ReplyHint = over.ReplyHint
	}
	if over.SenderDetailsOnFirstContact != nil {
		base.SenderDetailsOnFirstContact = over.SenderDetailsOnFirstContact
	}
	if over.StuckThresholdSeconds != 0 {
		base.StuckThresholdSeconds = over.StuckThresholdSeconds
	}
	if over.StuckNotify != nil {
		base.StuckNotify = over.StuckNotify
	}
	if over.AutoStatus != nil {
		base.AutoStatus = over.AutoStatus
	}
	if over.NameTheme != "" {
		base.NameTheme = over.NameTheme
	}
	if over.NameWords != nil {
		base.NameWords = over.NameWords
	}
	if over.FeedRetentionDays != 0 {
		base.FeedRetentionDays = over.FeedRetentionDays
	}
	if over.BroadcastRatePerSecond != 0 {
		base.BroadcastRatePerSecond = over.BroadcastRatePerSecond
	}
	if over.BroadcastBurst != 0 {
		base.BroadcastBurst = over.BroadcastBurst
	}
	base.Crew = mergeCrew(base.Crew, over.Crew)
	return base
}

func mergeCrew(base, over Crew) Crew {
	if over.Concurrency.Scouts != 0 {
		base.Concurrency.Scouts = over.Concurrency.Scouts
	}
	if over.Concurrency.Workers != 0 {
		base.Concurrency.Workers = over.Concurrency.Workers
	}
	if over.Work.MaxAttemptsPerTask != 0 {
		base.Work.MaxAttemptsPerTask = over.Work.MaxAttemptsPerTask
	}
	if over.Work.MaxWaves != 0 {
		base.Work.MaxWaves = over.Work.MaxWaves
	}
	if over.Artifacts.Enabled != nil {
		base.Artifacts.Enabled = over.Artifacts.Enabled
	}
	if over.Artifacts.CleanupDays != 0 {
		base.Artifacts.CleanupDays = over.Artifacts.CleanupDays
	}
	return base
}
