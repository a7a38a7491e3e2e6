package jobhub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// noticeScheduler deletes transient notice messages after a fixed delay.
// Deletions are best-effort; a clean shutdown cancels any that haven't
// fired yet rather than leaving orphaned timers.
type noticeScheduler struct {
	session DiscordSessionHandler
	logger  *slog.Logger
	delay   time.Duration

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

func newNoticeScheduler(
	session DiscordSessionHandler,
	logger *slog.Logger,
	delay time.Duration,
) *noticeScheduler {
	return &noticeScheduler{
		session: session,
		logger:  logger.With(loggerNameKey, "notice_scheduler"),
		delay:   delay,
		done:    make(chan struct{}),
	}
}

// Schedule arranges for the message to be deleted after the configured
// delay. Fire-and-forget: the caller does not wait on the deletion.
func (n *noticeScheduler) Schedule(channelID, messageID string) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		n.logger.Warn(
			"scheduler stopped, not scheduling deletion",
			"channel_id", channelID,
			"message_id", messageID,
		)
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()

		timer := time.NewTimer(n.delay)
		defer timer.Stop()

		select {
		case <-n.done:
			return
		case <-timer.C:
		}

		if err := n.session.ChannelMessageDelete(channelID, messageID); err != nil {
			n.logger.Debug(
				"ignoring notice delete error",
				tint.Err(err),
				"channel_id", channelID,
				"message_id", messageID,
			)
		}
	}()
}

// Stop cancels all pending deletions and waits for their goroutines to
// exit. Safe to call more than once.
func (n *noticeScheduler) Stop(ctx context.Context) {
	n.mu.Lock()
	if !n.stopped {
		n.stopped = true
		close(n.done)
	}
	n.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		n.logger.Warn("timed out waiting for pending notice deletions")
	}
}
