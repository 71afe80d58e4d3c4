// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"cronkeeper/internal/shared"
)

// Config holds application configuration values.
type Config struct {
	Env     string `validate:"required,oneof=dev prod"`
	Crontab struct {
		Path      string `validate:"required"`
		BackupDir string `validate:"required"`
		// Retention bounds the number of kept backups; validated here,
		// at the configuration boundary, not in the engine.
		Retention int `validate:"gte=1,lte=100"`
	}
	Scripts struct {
		// Root is the fallback script root used when the crontab carries
		// no KOHA_CRON_PATH assignment.
		Root      string
		Allowlist []string
	}
	HTTP struct {
		Addr string `validate:"required"`
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Env = getenv("ENV", "prod")
	c.Crontab.Path = getenv("CRONTAB_PATH", "data/crontab")
	c.Crontab.BackupDir = getenv("BACKUP_DIR", "data/backups")
	c.Scripts.Root = os.Getenv("SCRIPT_ROOT")
	c.Scripts.Allowlist = splitList(os.Getenv("SCRIPT_ALLOWLIST"))
	c.HTTP.Addr = getenv("HTTP_ADDR", ":8080")
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/cronkeeper.log")

	retention := getenv("BACKUP_RETENTION", "10")
	n, err := strconv.Atoi(retention)
	if err != nil {
		return Config{}, shared.MarkKind(
			shared.Wrapf(err, "BACKUP_RETENTION %q", retention), shared.KindValidation)
	}
	c.Crontab.Retention = n

	if err := validate.Struct(c); err != nil {
		return Config{}, shared.MarkKind(err, shared.KindValidation)
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// splitList parses a comma-separated list, dropping empty items. Items keep
// their surrounding whitespace: allowlist patterns are trimmed at match
// time, not here.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
