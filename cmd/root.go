package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/mocha-chaan/Jobhub-bot/jobhub"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg        = jobhub.DefaultConfig()
	configFile string
)

var rootCmd = &cobra.Command{
	Use: "jobhub [flags]",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		err := viper.Unmarshal(
			cfg,
			viper.DecodeHook(
				mapstructure.ComposeDecodeHookFunc(
					mapstructure.StringToTimeDurationHookFunc(),
					LevelToStringHookFunc(),
				),
			),
		)
		if err != nil {
			log.Fatalln(err)
		}
	},
}

func getLogLevel(level string) (slog.Level, error) {
	switch level {
	case slog.LevelDebug.String():
		return slog.LevelDebug, nil
	case slog.LevelInfo.String():
		return slog.LevelInfo, nil
	case slog.LevelWarn.String():
		return slog.LevelWarn, nil
	case slog.LevelError.String():
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func LevelToStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any,
	) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Ptr {
			return data, nil
		}

		typ := t.Elem()

		if typ != reflect.TypeOf(slog.LevelVar{}) {
			return data, nil
		}
		lvl, err := getLogLevel(data.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %s", data)
		}
		lvlVar := &slog.LevelVar{}
		lvlVar.Set(lvl)
		return lvlVar, nil
	}
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	rootCmd.SetContext(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(
		signals,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer func() {
		signal.Stop(signals)
		cancel()
	}()
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			//
		}
	}()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initConfig() {
	if configFile == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		}
	} else {
		fmt.Println("loading env from file", configFile)
		if err := godotenv.Load(configFile); err != nil {
			log.Println("No .env file found")
		}
	}

	viper.SetDefault("log_level", jobhub.DefaultLogLevel.String())
	viper.SetDefault("startup_timeout", jobhub.DefaultStartupTimeout)
	viper.SetDefault("shutdown_timeout", jobhub.DefaultShutdownTimeout)

	// Verification workflow
	viper.SetDefault("verification.cooldown", jobhub.DefaultVerificationCooldown)
	viper.SetDefault(
		"verification.notice_delete_delay",
		jobhub.DefaultNoticeDeleteDelay,
	)

	// Discord config
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.guild_id", "")
	viper.SetDefault(
		"discord.log_level",
		jobhub.DefaultDiscordLogLevel.String(),
	)
	viper.SetDefault(
		"discord.discordgo_log_level",
		jobhub.DefaultDiscordgoLogLevel.String(),
	)
	viper.SetDefault(
		"discord.gateway_intents",
		jobhub.DefaultDiscordGatewayIntent,
	)
	viper.SetDefault("discord.startup_message", jobhub.DefaultDiscordStartupMessage)
	viper.SetDefault("discord.custom_status", jobhub.DefaultDiscordCustomStatus)

	// Discord: channels
	viper.SetDefault("discord.channels.welcome", "")
	viper.SetDefault("discord.channels.verification_requests", "")
	viper.SetDefault("discord.channels.manual_verification", "")
	viper.SetDefault("discord.channels.jobseeker_ads", "")
	viper.SetDefault("discord.channels.hiring_ads", "")
	viper.SetDefault("discord.channels.bump_reminder", "")

	// Discord: roles
	viper.SetDefault("discord.roles.hiring_unverified", "")
	viper.SetDefault("discord.roles.hiring_verified", "")
	viper.SetDefault("discord.roles.jobseeker_unverified", "")
	viper.SetDefault("discord.roles.jobseeker_verified", "")

	// Bump reminder
	viper.SetDefault("bump.schedule", jobhub.DefaultBumpReminderSchedule)
	viper.SetDefault("bump.message", jobhub.DefaultBumpReminderMessage)

	// API config
	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.listen", jobhub.DefaultAPIListen)
	viper.SetDefault("api.listen_network", "tcp")
	viper.SetDefault("api.log_level", jobhub.DefaultAPILogLevel.String())
	viper.SetDefault("api.read_timeout", jobhub.DefaultReadTimeout)
	viper.SetDefault(
		"api.read_header_timeout",
		jobhub.DefaultReadHeaderTimeout,
	)
	viper.SetDefault("api.write_timeout", jobhub.DefaultWriteTimeout)
	viper.SetDefault("api.idle_timeout", jobhub.DefaultIdleTimeout)

	// API: CORS config
	viper.SetDefault(
		"api.cors.allow_headers",
		jobhub.DefaultCORSAllowHeaders,
	)
	viper.SetDefault(
		"api.cors.allow_methods",
		jobhub.DefaultCORSAllowMethods,
	)
	viper.SetDefault(
		"api.cors.expose_headers",
		jobhub.DefaultCORSExposeHeaders,
	)
	viper.SetDefault(
		"api.cors.allow_origins",
		[]string{},
	)
	viper.SetDefault("api.cors.max_age", jobhub.DefaultCORSMaxAge)

	envPrefix := os.Getenv(jobhub.EnvvarSetEnvPrefix)
	if envPrefix == "" {
		envPrefix = jobhub.DefaultEnvPrefix
	}
	viper.SetEnvPrefix(envPrefix)

	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	// Convert values to correct types
	viper.Set(
		"api.cors.allow_headers",
		viper.GetStringSlice("api.cors.allow_headers"),
	)
	viper.Set(
		"api.cors.allow_origins",
		viper.GetStringSlice("api.cors.allow_origins"),
	)
	viper.Set(
		"api.cors.allow_methods",
		viper.GetStringSlice("api.cors.allow_methods"),
	)
	viper.Set(
		"api.cors.expose_headers",
		viper.GetStringSlice("api.cors.expose_headers"),
	)

	for _, key := range []string{
		"log_level",
		"discord.log_level",
		"discord.discordgo_log_level",
		"api.log_level",
	} {
		logLevelVar, err := levelStringToLevelVar(viper.GetString(key))
		if err != nil {
			log.Fatalf("error parsing %s: %v", key, err)
		}
		viper.Set(key, logLevelVar)
	}
}

func levelStringToLevelVar(lvl string) (*slog.LevelVar, error) {
	level := &slog.LevelVar{}
	err := level.UnmarshalText([]byte(lvl))
	return level, err
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Config file to use",
	)
}
