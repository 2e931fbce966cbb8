package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	LogModeDevelopment = "development"
	LogModeProduction  = "production"
)

var Module = fx.Provide(NewConfig)

type (
	Config struct {
		Host       string `mapstructure:"HOST"`
		Port       string `mapstructure:"PORT"`
		GRPCPort   string `mapstructure:"GRPC_PORT"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		LogMode    string `mapstructure:"LOG_MODE"`

		MinCookingTime int `mapstructure:"MIN_COOKING_TIME"`
		MaxCookingTime int `mapstructure:"MAX_COOKING_TIME"`
		MinAmount      int `mapstructure:"MIN_AMOUNT"`
		MaxAmount      int `mapstructure:"MAX_AMOUNT"`
		PageSize       int `mapstructure:"PAGE_SIZE"`

		ExportPDFFileName string `mapstructure:"EXPORT_PDF_FILE_NAME"`
		ExportTXTFileName string `mapstructure:"EXPORT_TXT_FILE_NAME"`
		ExportFontPath    string `mapstructure:"EXPORT_FONT_PATH"`

		MediaRoot    string `mapstructure:"MEDIA_ROOT"`
		MediaURL     string `mapstructure:"MEDIA_URL"`
		ImageMaxSize uint   `mapstructure:"IMAGE_MAX_SIZE"`

		BcryptCost int `mapstructure:"BCRYPT_COST"`
	}
)

var defaults = map[string]interface{}{
	"HOST":        "0.0.0.0",
	"PORT":        "1323",
	"GRPC_PORT":   "9000",
	"DB_HOST":     "0.0.0.0",
	"DB_PORT":     "5432",
	"DB_USER":     "user",
	"DB_PASSWORD": "password",
	"DB_NAME":     "db",
	"DB_SSL_MODE": sslModeDisable,
	"LOG_MODE":    LogModeDevelopment,

	"MIN_COOKING_TIME": 1,
	"MAX_COOKING_TIME": 32000,
	"MIN_AMOUNT":       1,
	"MAX_AMOUNT":       32000,
	"PAGE_SIZE":        6,

	"EXPORT_PDF_FILE_NAME": "shopping_list.pdf",
	"EXPORT_TXT_FILE_NAME": "shopping_list.txt",
	"EXPORT_FONT_PATH":     "",

	"MEDIA_ROOT":     "media",
	"MEDIA_URL":      "/media",
	"IMAGE_MAX_SIZE": 1024,

	"BCRYPT_COST": 14,
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FOODGRAM")

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.LogMode, LogModeDevelopment, LogModeProduction) {
		return errors.New(fmt.Sprintf("log mode is invalid: %s", cfg.LogMode))
	}
	if cfg.MinCookingTime < 1 || cfg.MinCookingTime > cfg.MaxCookingTime {
		return errors.New(fmt.Sprintf("cooking time bounds are invalid: [%d, %d]", cfg.MinCookingTime, cfg.MaxCookingTime))
	}
	if cfg.MinAmount < 1 || cfg.MinAmount > cfg.MaxAmount {
		return errors.New(fmt.Sprintf("amount bounds are invalid: [%d, %d]", cfg.MinAmount, cfg.MaxAmount))
	}
	if cfg.PageSize < 1 {
		return errors.New(fmt.Sprintf("page size is invalid: %d", cfg.PageSize))
	}
	if strings.TrimSpace(cfg.ExportPDFFileName) == "" || strings.TrimSpace(cfg.ExportTXTFileName) == "" {
		return errors.New("export file names must not be empty")
	}
	if !strings.HasPrefix(cfg.MediaURL, "/") {
		return errors.New(fmt.Sprintf("media url must start with '/': %s", cfg.MediaURL))
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
