package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imgbench/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP     HTTP     `mapstructure:"http"`
	Upload   Upload   `mapstructure:"upload"`
	Process  Process  `mapstructure:"process"`
	Scratch  Scratch  `mapstructure:"scratch"`
	Log      Log      `mapstructure:"log"`
	Telegram Telegram `mapstructure:"telegram"`
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Upload struct {
	MaxBytes    int64    `mapstructure:"max_bytes"`
	AllowedExts []string `mapstructure:"allowed_exts"`
}

type Process struct {
	Profile       string        `mapstructure:"profile"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
	MaxPixels     int64         `mapstructure:"max_pixels"`
	Quality       int           `mapstructure:"quality"`
}

type Scratch struct {
	Dir           string        `mapstructure:"dir"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Telegram struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	AllowedChatIDs []int64       `mapstructure:"allowed_chat_ids"`
	AdminUsername  string        `mapstructure:"admin_username"`
	DailyLimit     int           `mapstructure:"daily_limit"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

const EnvPrefix = "IMGBENCH"

func setDefaults() {
	viper.SetDefault("http.addr", ":5000")
	viper.SetDefault("http.read_timeout", "30s")
	viper.SetDefault("http.write_timeout", "120s")
	viper.SetDefault("http.shutdown_timeout", "15s")

	viper.SetDefault("upload.max_bytes", 16<<20)
	viper.SetDefault("upload.allowed_exts", []string{"png", "jpg", "jpeg", "gif", "webp", "bmp", "tiff"})

	viper.SetDefault("process.profile", domain.DefaultProfile)
	viper.SetDefault("process.timeout", "60s")
	viper.SetDefault("process.max_concurrent", 4)
	viper.SetDefault("process.max_pixels", 100_000_000)
	viper.SetDefault("process.quality", 80)

	viper.SetDefault("scratch.dir", filepath.Join(os.TempDir(), "image_processing"))
	viper.SetDefault("scratch.max_age", "1h")
	viper.SetDefault("scratch.sweep_interval", "15m")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)

	viper.SetDefault("telegram.enabled", false)
	viper.SetDefault("telegram.daily_limit", 50)
	viper.SetDefault("telegram.timeout", "2m")
}

// Load reads config.toml from path, or from the working directory when path is
// empty, and applies IMGBENCH_* environment overrides. A missing default config
// file is not an error.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetConfigType("toml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
	}

	log.Info().Str("path", path).Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		log.Info().Msg("no config file found, using defaults")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if _, err := domain.LookupProfile(c.Process.Profile); err != nil {
		errs = append(errs, err)
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}
	if c.Process.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("process.max_concurrent must be positive"))
	}
	if c.Process.MaxPixels <= 0 {
		errs = append(errs, errors.New("process.max_pixels must be positive"))
	}
	if c.Process.Timeout <= 0 {
		errs = append(errs, errors.New("process.timeout must be positive"))
	}
	if c.Process.Quality < 1 || c.Process.Quality > 100 {
		errs = append(errs, errors.New("process.quality must be within 1-100"))
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		errs = append(errs, errors.New("telegram.bot_token is required when telegram.enabled is set"))
	}

	return errors.Join(errs...)
}

// Profile returns the active request defaults with the configured quality.
func (c *Config) Profile() domain.Profile {
	p, err := domain.LookupProfile(c.Process.Profile)
	if err != nil {
		p, _ = domain.LookupProfile(domain.DefaultProfile)
	}
	p.Quality = c.Process.Quality
	return p
}

// SetupLogging configures the global zerolog logger.
func SetupLogging(cfg Log) {
	var logLevel zerolog.Level

	switch strings.ToLower(cfg.Level) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
