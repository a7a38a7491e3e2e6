package jobhub

import (
	"fmt"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/robfig/cron/v3"
)

// startBumpReminder schedules the periodic bump reminder post. Returns
// a nil cron when no reminder channel is configured.
func (h *JobHub) startBumpReminder() (*cron.Cron, error) {
	channelID := h.config.Discord.Channels.BumpReminder
	if channelID == "" {
		return nil, nil
	}

	logger := h.logger.With(loggerNameKey, "bump_reminder")
	c := cron.New()

	_, err := c.AddFunc(
		h.config.Bump.Schedule, func() {
			if !h.discord.Connected() {
				logger.Warn("gateway disconnected, skipping bump reminder")
				return
			}
			if sendErr := h.discord.channelMessageSend(
				channelID, h.config.Bump.Message,
			); sendErr != nil {
				logger.Error("error sending bump reminder", tint.Err(sendErr))
				return
			}
			logger.Info("sent bump reminder", slog.String("channel_id", channelID))
		},
	)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid bump reminder schedule %q: %w", h.config.Bump.Schedule, err,
		)
	}

	c.Start()
	logger.Info("bump reminder scheduled", "schedule", h.config.Bump.Schedule)
	return c, nil
}
