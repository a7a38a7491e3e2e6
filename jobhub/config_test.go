package jobhub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigRequiresDiscordSettings(t *testing.T) {
	cfg := DefaultConfig()

	err := structValidator.Struct(cfg)
	require.Error(t, err)
}

func TestTestConfigValidates(t *testing.T) {
	cfg := newTestConfig(t)

	require.NoError(t, structValidator.Struct(cfg))
}

func TestConfigRejectsSubSecondDurations(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Verification.Cooldown = 500 * time.Millisecond

	assert.Error(t, structValidator.Struct(cfg))

	cfg = newTestConfig(t)
	cfg.Verification.NoticeDeleteDelay = 0

	assert.Error(t, structValidator.Struct(cfg))
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultVerificationCooldown, cfg.Verification.Cooldown)
	assert.Equal(t, DefaultNoticeDeleteDelay, cfg.Verification.NoticeDeleteDelay)
	assert.Equal(t, DefaultDiscordGatewayIntent, cfg.Discord.GatewayIntents)
	assert.Equal(t, DefaultBumpReminderSchedule, cfg.Bump.Schedule)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel.Level())
}
