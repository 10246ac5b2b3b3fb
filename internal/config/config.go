// Package config manages application configuration from default values,
// config.yaml, and BOT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components of the
// indexing bot: logging, the Telegram transport, the archive database,
// the sampling features, and scheduled maintenance.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Random    RandomConfig    `mapstructure:"random"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the single group chat the
// bot archives. Updates from any other chat are dropped by middleware.
type TelegramConfig struct {
	Token   string `mapstructure:"token"    validate:"required"`
	GroupID int64  `mapstructure:"group_id" validate:"required"`

	// BotInfo is populated at startup via GetMe and is not read from config.
	BotInfo *models.User `mapstructure:"-"`
}

// GroupLinkID returns the numeric chat identifier used in
// https://t.me/c/<id>/<message> deep links for the configured group.
func (t TelegramConfig) GroupLinkID() int64 {
	id := t.GroupID
	if id < 0 {
		id = -id
	}
	return id - 1_000_000_000_000
}

// DatabaseConfig holds the SQLite archive location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RandomConfig tunes the random-quote sampler.
type RandomConfig struct {
	Attempts int `mapstructure:"attempts" validate:"min=1"`
}

// QuizConfig tunes the "who said this" quiz sampler.
type QuizConfig struct {
	QuestionAttempts int           `mapstructure:"question_attempts" validate:"min=1"`
	AnswerAttempts   int           `mapstructure:"answer_attempts"   validate:"min=1"`
	WrongAnswerCount int           `mapstructure:"wrong_answer_count" validate:"min=1"`
	MinTextLength    int           `mapstructure:"min_text_length"   validate:"min=1"`
	Cooldown         time.Duration `mapstructure:"cooldown"          validate:"min=0"`
}

// SchedulerConfig holds the cron-style scheduled tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml in the working directory
// 3. BOT_* environment variables
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Missing config file is fine, defaults plus env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", true)

	viper.SetDefault("telegram.token", "")
	viper.SetDefault("telegram.group_id", 0)

	viper.SetDefault("database.path", "storage.db")

	viper.SetDefault("random.attempts", 10)

	viper.SetDefault("quiz.question_attempts", 100)
	viper.SetDefault("quiz.answer_attempts", 20)
	viper.SetDefault("quiz.wrong_answer_count", 4)
	viper.SetDefault("quiz.min_text_length", 8)
	viper.SetDefault("quiz.cooldown", 60*time.Second)

	viper.SetDefault("scheduler.tasks.db_maintenance.enabled", false)
	viper.SetDefault("scheduler.tasks.db_maintenance.schedule", "0 0 4 * * *")
}
