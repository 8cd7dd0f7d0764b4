package main

import (
	"bubblevoyage/internal/game"
	"bubblevoyage/internal/logger"
	"bubblevoyage/internal/settings"
)

// persistingSession saves settings changes made from any surface.
type persistingSession struct {
	*game.Session
	prefs *settings.Manager
	log   *logger.Logger
}

func (p *persistingSession) UpdateSettings(s settings.Settings) settings.Settings {
	applied := p.Session.UpdateSettings(s)
	if _, err := p.prefs.Set(applied); err != nil {
		p.log.Error("save settings: %v", err)
	}
	return applied
}
