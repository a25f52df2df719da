package app

import (
	"strings"

	"github.com/charlesng35/agentauth/pkg/logger"
)

// ConfigureLogging initialises the global logger, defaulting to info/json.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, cfg.LogFormat)
}
