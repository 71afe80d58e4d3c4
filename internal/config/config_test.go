package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cronkeeper/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, "data/crontab", c.Crontab.Path)
	assert.Equal(t, "data/backups", c.Crontab.BackupDir)
	assert.Equal(t, 10, c.Crontab.Retention)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Nil(t, c.Scripts.Allowlist)
}

func TestLoad_RetentionBounds(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"lower bound", "1", true},
		{"upper bound", "100", true},
		{"zero", "0", false},
		{"too large", "101", false},
		{"not a number", "ten", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BACKUP_RETENTION", tt.value)
			_, err := Load()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestLoad_Allowlist(t *testing.T) {
	t.Setenv("SCRIPT_ALLOWLIST", "fines.pl, batch/ ,,")
	c, err := Load()
	require.NoError(t, err)
	// items keep their whitespace; trimming happens at match time
	assert.Equal(t, []string{"fines.pl", " batch/ "}, c.Scripts.Allowlist)
}

func TestLoad_BadLogLevel(t *testing.T) {
	t.Setenv("LOG_CONSOLE_LEVEL", "loud")
	_, err := Load()
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}
