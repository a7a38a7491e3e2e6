//nolint:lll // struct tags can't be split
package jobhub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-playground/validator/v10"
)

const (
	EnvvarSetEnvPrefix = "JOBHUB_ENV_PREFIX"
	DefaultEnvPrefix   = "JOBHUB"

	DefaultLogLevel        = slog.LevelInfo
	DefaultStartupTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 60 * time.Second

	// DefaultVerificationCooldown is the minimum time between a user's
	// consecutive verification request attempts.
	DefaultVerificationCooldown = 5 * time.Minute

	// DefaultNoticeDeleteDelay is how long a rule-violation notice stays
	// in an ad channel before the bot deletes it.
	DefaultNoticeDeleteDelay = 10 * time.Second

	DefaultBumpReminderSchedule = "@every 2h"
	DefaultBumpReminderMessage  = "⏰ Time to `/bump` the server!"

	DefaultDiscordLogLevel       = slog.LevelWarn
	DefaultDiscordgoLogLevel     = slog.LevelWarn
	DefaultAPILogLevel           = slog.LevelInfo
	DefaultDiscordErrorMessage   = "❌ Something went wrong."
	DefaultDiscordCustomStatus   = "Watching the job board"
	DefaultDiscordStartupMessage = "✅ JobHub bot is online!"

	DefaultAPIListen         = "127.0.0.1:5000"
	defaultListenNetwork     = "tcp"
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 30 * time.Second
	DefaultCORSMaxAge        = 12 * time.Hour

	// DefaultDiscordGatewayIntent covers guild membership, guild messages
	// and message content - everything the welcome/verification/ad-rule
	// handlers consume.
	DefaultDiscordGatewayIntent = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
)

var structValidator = validator.New()

//nolint:gochecknoinits
func init() {
	structValidator.SetTagName("binding")
}

// Config is the top-level bot configuration, fixed at startup.
type Config struct {
	// LogLevel is the base log level, for the default logger
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// StartupTimeout sets a limit on the amount of time the bot has to
	// connect to the discord gateway. If this is passed, startup is aborted.
	StartupTimeout time.Duration `yaml:"startup_timeout" mapstructure:"startup_timeout" json:"startup_timeout"`

	// ShutdownTimeout is the time to allow for a graceful shutdown. After
	// this elapses, remaining connections are force-closed.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout"`

	// Verification configures the manual verification workflow
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification" json:"verification"`

	// Discord configures the bot connection, channels and roles
	Discord *DiscordConfig `yaml:"discord" mapstructure:"discord" json:"discord"`

	// API configures the operational status HTTP server
	API *APIConfig `yaml:"api" mapstructure:"api" json:"api"`

	// Bump configures the periodic bump reminder
	Bump BumpConfig `yaml:"bump" mapstructure:"bump" json:"bump"`

	HTTPClient *http.Client `log:"[redacted]"`
}

func (c Config) LogValue() slog.Value {
	return structToSlogValue(c)
}

// VerificationConfig configures the verification request workflow.
type VerificationConfig struct {
	// Cooldown is the minimum time between a user's verification
	// request attempts
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown" json:"cooldown" binding:"min=1s"`

	// NoticeDeleteDelay is how long ad-rule violation notices remain
	// before self-deleting
	NoticeDeleteDelay time.Duration `yaml:"notice_delete_delay" mapstructure:"notice_delete_delay" json:"notice_delete_delay" binding:"min=1s"`
}

// DiscordConfig configures the discord bot itself.
//
//nolint:lll // can't break tags
type DiscordConfig struct {
	// Discord bot token (from the 'Bot' tab in the discord dev portal)
	Token string `yaml:"token" mapstructure:"token" json:"token" log:"[redacted]" binding:"required"`

	// GuildID is the guild (server) the bot moderates
	GuildID string `yaml:"guild_id" mapstructure:"guild_id" json:"guild_id"`

	// Base discord logging level
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Log level for the `discordgo` library's logger
	DiscordGoLogLevel *slog.LevelVar `yaml:"discordgo_log_level" mapstructure:"discordgo_log_level" json:"discordgo_log_level"`

	// If set, the bot sends this message to the welcome channel whenever
	// it connects to the discord gateway
	StartupMessage string `yaml:"startup_message" mapstructure:"startup_message" json:"startup_message"`

	// CustomStatus is set as the bot user's status on startup
	CustomStatus string `yaml:"custom_status" mapstructure:"custom_status" json:"custom_status"`

	// Discord gateway intents. See: https://discord.com/developers/docs/topics/gateway#gateway-intents
	GatewayIntents discordgo.Intent `yaml:"gateway_intents" mapstructure:"gateway_intents" json:"gateway_intents"`

	// Channels maps the fixed channels the bot operates in
	Channels ChannelConfig `yaml:"channels" mapstructure:"channels" json:"channels"`

	// Roles maps the unverified/verified role pairs for both tracks
	Roles RoleConfig `yaml:"roles" mapstructure:"roles" json:"roles"`

	httpClient *http.Client
}

// ChannelConfig holds the channel IDs the bot posts to or moderates.
//
//nolint:lll // can't break tags
type ChannelConfig struct {
	// Welcome is where new members get the track-selection prompt
	Welcome string `yaml:"welcome" mapstructure:"welcome" json:"welcome" binding:"required"`

	// VerificationRequests is the staff-facing channel where request
	// cards with Approve/Reject buttons are posted
	VerificationRequests string `yaml:"verification_requests" mapstructure:"verification_requests" json:"verification_requests" binding:"required"`

	// ManualVerification is the public channel where approval and
	// rejection notices are posted
	ManualVerification string `yaml:"manual_verification" mapstructure:"manual_verification" json:"manual_verification" binding:"required"`

	// JobSeekerAds is the moderated advertising channel for job seekers
	JobSeekerAds string `yaml:"jobseeker_ads" mapstructure:"jobseeker_ads" json:"jobseeker_ads" binding:"required"`

	// HiringAds is the moderated advertising channel for hiring posts
	HiringAds string `yaml:"hiring_ads" mapstructure:"hiring_ads" json:"hiring_ads" binding:"required"`

	// BumpReminder is where periodic bump reminders are posted.
	// Empty disables the reminder.
	BumpReminder string `yaml:"bump_reminder" mapstructure:"bump_reminder" json:"bump_reminder"`
}

// RoleConfig holds the unverified/verified role IDs for both tracks.
//
//nolint:lll // can't break tags
type RoleConfig struct {
	HiringUnverified    string `yaml:"hiring_unverified" mapstructure:"hiring_unverified" json:"hiring_unverified" binding:"required"`
	HiringVerified      string `yaml:"hiring_verified" mapstructure:"hiring_verified" json:"hiring_verified" binding:"required"`
	JobSeekerUnverified string `yaml:"jobseeker_unverified" mapstructure:"jobseeker_unverified" json:"jobseeker_unverified" binding:"required"`
	JobSeekerVerified   string `yaml:"jobseeker_verified" mapstructure:"jobseeker_verified" json:"jobseeker_verified" binding:"required"`
}

// BumpConfig configures the periodic bump reminder post.
type BumpConfig struct {
	// Schedule is a cron spec (or @every duration) for the reminder
	Schedule string `yaml:"schedule" mapstructure:"schedule" json:"schedule"`

	// Message is the reminder content
	Message string `yaml:"message" mapstructure:"message" json:"message"`
}

// APIConfig configures the operational status HTTP server.
//
//nolint:lll // can't break tags
type APIConfig struct {
	// Determines if the status server should be active
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	// The address and port on which the server should listen (e.g., "127.0.0.1:5000").
	Listen string `yaml:"listen" mapstructure:"listen" json:"listen" binding:"required_if=Enabled true,hostname|filepath"`

	// The network type for listening (e.g., "tcp", "tcp4", "tcp6", "unix").
	ListenNetwork string `yaml:"listen_network" mapstructure:"listen_network" json:"listen_network" binding:"required_if=Enabled true,oneof=tcp tcp4 tcp6 unix"`

	// The logging level for the status server
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Cross-origin configuration
	CORS CORSConfig `yaml:"cors" mapstructure:"cors" json:"cors"`

	// Maximum duration for reading the entire request, including the body
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout" binding:"required_if=Enabled true,min=1s"`

	// Amount of time allowed to read request headers
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout" json:"read_header_timeout" binding:"required_if=Enabled true,min=1s"`

	// Maximum duration before timing out writes of the response
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout" binding:"required_if=Enabled true,min=1s"`

	// Maximum amount of time to wait for the next request when keep-alives are enabled
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" binding:"required_if=Enabled true,min=1s"`
}

// CORSConfig specifies cross-origin resource sharing settings
type CORSConfig struct {
	AllowOrigins     []string      `yaml:"allow_origins" mapstructure:"allow_origins" json:"allow_origins"`
	AllowMethods     []string      `yaml:"allow_methods" mapstructure:"allow_methods" json:"allow_methods"`
	AllowHeaders     []string      `yaml:"allow_headers" mapstructure:"allow_headers" json:"allow_headers"`
	ExposeHeaders    []string      `yaml:"expose_headers" mapstructure:"expose_headers" json:"expose_headers"`
	AllowCredentials bool          `yaml:"allow_credentials" mapstructure:"allow_credentials" json:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age" json:"max_age"`
}

var (
	DefaultCORSAllowMethods = []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodOptions,
	}
	DefaultCORSAllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Accept",
		"Cache-Control",
	}
	DefaultCORSExposeHeaders = []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
	}
)

func DefaultCORSConfig() CORSConfig {
	defaultMethods := make([]string, len(DefaultCORSAllowMethods))
	copy(defaultMethods, DefaultCORSAllowMethods)

	defaultHeaders := make([]string, len(DefaultCORSAllowHeaders))
	copy(defaultHeaders, DefaultCORSAllowHeaders)

	defaultExpose := make([]string, len(DefaultCORSExposeHeaders))
	copy(defaultExpose, DefaultCORSExposeHeaders)

	return CORSConfig{
		AllowOrigins:  []string{},
		AllowMethods:  defaultMethods,
		AllowHeaders:  defaultHeaders,
		ExposeHeaders: defaultExpose,
		MaxAge:        DefaultCORSMaxAge,
	}
}

// DefaultConfig returns a Config with all default settings populated
func DefaultConfig() *Config {
	mainLogLevel := &slog.LevelVar{}
	discordLogLevel := &slog.LevelVar{}
	discordgoLogLevel := &slog.LevelVar{}
	apiLogLevel := &slog.LevelVar{}

	mainLogLevel.Set(DefaultLogLevel)
	discordLogLevel.Set(DefaultDiscordLogLevel)
	discordgoLogLevel.Set(DefaultDiscordgoLogLevel)
	apiLogLevel.Set(DefaultAPILogLevel)

	return &Config{
		LogLevel:        mainLogLevel,
		StartupTimeout:  DefaultStartupTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		Verification: VerificationConfig{
			Cooldown:          DefaultVerificationCooldown,
			NoticeDeleteDelay: DefaultNoticeDeleteDelay,
		},
		Discord: &DiscordConfig{
			GatewayIntents:    DefaultDiscordGatewayIntent,
			LogLevel:          discordLogLevel,
			DiscordGoLogLevel: discordgoLogLevel,
			StartupMessage:    DefaultDiscordStartupMessage,
			CustomStatus:      DefaultDiscordCustomStatus,
		},
		API: &APIConfig{
			Enabled:           false,
			Listen:            DefaultAPIListen,
			ListenNetwork:     defaultListenNetwork,
			LogLevel:          apiLogLevel,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ReadTimeout:       DefaultReadTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			CORS:              DefaultCORSConfig(),
		},
		Bump: BumpConfig{
			Schedule: DefaultBumpReminderSchedule,
			Message:  DefaultBumpReminderMessage,
		},
	}
}
