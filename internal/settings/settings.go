// Package settings holds the player's audio and gameplay preferences.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"bubblevoyage/internal/logger"

	"github.com/caarlos0/env/v11"
)

// Settings is the user-adjustable configuration. Volumes are 0..1. Custom
// asset fields hold a URL or file path; empty means the synthetic sound.
type Settings struct {
	MasterVolume   float64 `json:"masterVolume" env:"BUBBLE_MASTER_VOLUME"`
	AmbientVolume  float64 `json:"ambientVolume" env:"BUBBLE_AMBIENT_VOLUME"`
	StreamVolume   float64 `json:"streamVolume" env:"BUBBLE_STREAM_VOLUME"`
	WeatherVolume  float64 `json:"weatherVolume" env:"BUBBLE_WEATHER_VOLUME"`
	CreatureVolume float64 `json:"creatureVolume" env:"BUBBLE_CREATURE_VOLUME"`
	WeatherEnabled bool    `json:"weatherEnabled" env:"BUBBLE_WEATHER_ENABLED"`
	ReduceMotion   bool    `json:"reduceMotion" env:"BUBBLE_REDUCE_MOTION"`

	CustomAmbientAudio  string `json:"customAmbientAudio,omitempty" env:"BUBBLE_CUSTOM_AMBIENT_AUDIO"`
	CustomStreamAudio   string `json:"customStreamAudio,omitempty" env:"BUBBLE_CUSTOM_STREAM_AUDIO"`
	CustomWeatherAudio  string `json:"customWeatherAudio,omitempty" env:"BUBBLE_CUSTOM_WEATHER_AUDIO"`
	CustomCreatureAudio string `json:"customCreatureAudio,omitempty" env:"BUBBLE_CUSTOM_CREATURE_AUDIO"`
}

// Default returns the out-of-the-box settings.
func Default() Settings {
	return Settings{
		MasterVolume:   0.5,
		AmbientVolume:  0.5,
		StreamVolume:   0.5,
		WeatherVolume:  0.6,
		CreatureVolume: 0.6,
		WeatherEnabled: true,
	}
}

// CustomAssets lists the custom asset per channel in ambient, stream,
// weather, creature order.
func (s Settings) CustomAssets() [4]string {
	return [4]string{s.CustomAmbientAudio, s.CustomStreamAudio, s.CustomWeatherAudio, s.CustomCreatureAudio}
}

// Normalize clamps every volume into 0..1; NaN falls back to the default.
func (s Settings) Normalize() Settings {
	d := Default()
	s.MasterVolume = clampVolume(s.MasterVolume, d.MasterVolume)
	s.AmbientVolume = clampVolume(s.AmbientVolume, d.AmbientVolume)
	s.StreamVolume = clampVolume(s.StreamVolume, d.StreamVolume)
	s.WeatherVolume = clampVolume(s.WeatherVolume, d.WeatherVolume)
	s.CreatureVolume = clampVolume(s.CreatureVolume, d.CreatureVolume)
	return s
}

func clampVolume(v, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ApplyEnv overrides fields from BUBBLE_* environment variables.
func ApplyEnv(s *Settings) error {
	if err := env.Parse(s); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Manager loads, saves and serves the settings file.
type Manager struct {
	mu       sync.RWMutex
	settings Settings
	path     string
	log      *logger.Logger
}

// NewManager creates a manager for path, starting from defaults. An empty
// path keeps settings in memory only.
func NewManager(path string, log *logger.Logger) *Manager {
	return &Manager{settings: Default(), path: path, log: log}
}

// Load reads the file, writing defaults when it does not exist yet, then
// applies environment overrides.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path != "" {
		data, err := os.ReadFile(m.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			m.log.Info("settings file %s not found, using defaults", m.path)
			if err := m.saveLocked(); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("read settings file: %w", err)
		default:
			s := Default()
			if err := json.Unmarshal(data, &s); err != nil {
				return fmt.Errorf("parse settings file: %w", err)
			}
			m.settings = s
			m.log.Info("loaded settings from %s", m.path)
		}
	}
	s := m.settings
	if err := ApplyEnv(&s); err != nil {
		return err
	}
	m.settings = s.Normalize()
	return nil
}

// Save writes the current settings to disk.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if m.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	m.log.Info("saved settings to %s", m.path)
	return nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Set replaces the settings after normalizing them and persists them.
func (m *Manager) Set(s Settings) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.Normalize()
	return m.settings, m.saveLocked()
}
