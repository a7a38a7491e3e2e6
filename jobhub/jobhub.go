package jobhub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"github.com/robfig/cron/v3"
)

var (
	// When building, set these like:
	// -ldflags "-X github.com/mocha-chaan/Jobhub-bot/jobhub.Version=$$(date +'%Y%m%d')"

	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

var (
	defaultLogWriter io.Writer = os.Stdout
)

// JobHub is the main application struct: it owns the discord
// connection, the verification workflow state (cooldowns and pending
// requests), the ad moderation policy, the notice scheduler, the bump
// reminder and the status API.
//
// All workflow state is in-memory only; a restart silently clears
// pending requests and cooldowns.
type JobHub struct {
	config     *Config
	logger     *slog.Logger
	logHandler slog.Handler

	discord   *Discord
	cooldowns *CooldownTracker
	pending   *PendingRequests
	notices   *noticeScheduler
	api       *API
	cron      *cron.Cron

	// tracks is the ordered role/channel table - Hiring first, which is
	// the documented tie-break for approval
	tracks []TrackRoles

	startedAt time.Time

	// prevents concurrent Run calls
	runMu sync.Mutex
}

// New creates and initializes a new JobHub instance from the given
// config. Initialization errors are collected and returned joined.
func New(config *Config) (*JobHub, error) {
	var errs []error

	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	h := &JobHub{
		config:    config,
		cooldowns: NewCooldownTracker(config.Verification.Cooldown),
		pending:   NewPendingRequests(),
	}

	h.logHandler = newLogHandler(config.LogLevel)
	h.logger = slog.New(h.logHandler)
	slog.SetDefault(h.logger)

	config.Discord.httpClient = config.HTTPClient

	disc, err := newDiscord(config.Discord)
	if err != nil {
		errs = append(errs, err)
	} else {
		disc.logger = slog.New(
			newLogHandler(config.Discord.LogLevel),
		).With(loggerNameKey, "discord")
		disc.jh = h
		h.discord = disc
		h.tracks = trackRoles(config.Discord)
	}

	discordgo.Logger = discordgoLoggerFunc(
		context.Background(),
		newLogHandler(config.Discord.DiscordGoLogLevel).WithAttrs(
			[]slog.Attr{slog.String(loggerNameKey, "discordgo")},
		),
	)

	if config.API.Enabled {
		api, apiErr := newAPI(h, config.API)
		if apiErr != nil {
			errs = append(errs, apiErr)
		}
		h.api = api
	}

	return h, errors.Join(errs...)
}

func (h *JobHub) ValidateConfig() error {
	return structValidator.Struct(h.config)
}

// Status reports the bot's current operational state.
func (h *JobHub) Status() BotStatus {
	var connected bool
	if h.discord != nil {
		connected = h.discord.Connected()
	}
	var uptime int64
	if !h.startedAt.IsZero() {
		uptime = int64(time.Since(h.startedAt).Seconds())
	}
	return BotStatus{
		Version:          Version,
		UptimeSeconds:    uptime,
		DiscordConnected: connected,
		PendingRequests:  h.pending.Len(),
		CooldownEntries:  h.cooldowns.Len(),
	}
}

// Run starts the bot: validates the config, connects to the discord
// gateway, starts the status API and the bump reminder, and blocks
// until the context is canceled, then shuts everything down in reverse
// order.
func (h *JobHub) Run(ctx context.Context) error {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	h.startedAt = time.Now()
	logger := h.logger

	if err := h.ValidateConfig(); err != nil {
		logger.Error("invalid config", tint.Err(err))
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = WithLogger(ctx, logger)

	logger.LogAttrs(ctx, slog.LevelInfo, "starting", slog.Any("config", h.config))

	session, err := h.discord.newSession()
	if err != nil {
		return err
	}
	h.discord.session = session

	h.notices = newNoticeScheduler(
		session, h.logger, h.config.Verification.NoticeDeleteDelay,
	)

	h.discord.discordgoRemoveHandlerFuncs = []func(){
		session.AddHandler(h.discord.handlerReady()),
		session.AddHandler(h.discord.handlerConnect()),
		session.AddHandler(h.discord.handlerDisconnect()),
		session.AddHandler(
			func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
				h.handleMemberAdd(ctx, m)
			},
		),
		session.AddHandler(
			func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
				h.handleInteraction(ctx, i)
			},
		),
		session.AddHandler(
			func(_ *discordgo.Session, m *discordgo.MessageCreate) {
				h.handleMessageCreate(ctx, m)
			},
		),
	}

	if err = h.openGateway(ctx, session); err != nil {
		return err
	}

	if h.config.Discord.CustomStatus != "" {
		if statusErr := h.discord.updateCustomStatus(
			h.config.Discord.CustomStatus,
		); statusErr != nil {
			logger.Warn("error setting custom status", tint.Err(statusErr))
		}
	}

	if h.api != nil {
		go func() {
			httpErr := h.api.Serve(ctx)
			if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "error serving api HTTP", tint.Err(httpErr))
			}
		}()
	}

	bumpCron, err := h.startBumpReminder()
	if err != nil {
		logger.Error("error starting bump reminder", tint.Err(err))
		return err
	}
	h.cron = bumpCron

	logger.InfoContext(ctx, "jobhub running")
	<-ctx.Done()
	logger.WarnContext(ctx, "context canceled, shutting down")

	return h.shutdown()
}

// openGateway opens the websocket connection, honoring the startup
// timeout.
func (h *JobHub) openGateway(ctx context.Context, session DiscordSessionHandler) error {
	startCtx, startCancel := context.WithTimeout(ctx, h.config.StartupTimeout)
	defer startCancel()

	openErr := make(chan error, 1)
	go func() {
		openErr <- session.Open()
	}()

	select {
	case <-startCtx.Done():
		return fmt.Errorf("startup cancelled or timed out")
	case err := <-openErr:
		if err != nil {
			return fmt.Errorf("error opening discord gateway: %w", err)
		}
	}
	return nil
}

func (h *JobHub) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), h.config.ShutdownTimeout,
	)
	defer cancel()

	if h.cron != nil {
		<-h.cron.Stop().Done()
	}

	h.notices.Stop(shutdownCtx)

	for _, removeHandler := range h.discord.discordgoRemoveHandlerFuncs {
		removeHandler()
	}

	if err := h.discord.session.Close(); err != nil {
		h.logger.Error("error closing discord session", tint.Err(err))
		return err
	}
	h.logger.Info("shutdown complete")
	return nil
}
