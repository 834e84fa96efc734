package utils

import (
	"os"
	"strconv"

	"github.com/xuanji/bazi-backend/internal/logger"
)

// GetEnv reads a string variable, falling back to defaultVal when unset.
// A nil log is allowed so the helpers stay usable before the logger exists.
func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Env var unset, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

// GetEnvAsInt reads an integer variable. An unparsable value falls back to
// defaultVal with a warning rather than failing startup.
func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Env var unset, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not an integer, using default", "env_var", key, "value", raw, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}
