package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// OTP challenge settings.
	OTPCodeLength     int `mapstructure:"OTP_CODE_LENGTH"`
	OTPTTLSeconds     int `mapstructure:"OTP_TTL_SECONDS"`
	OTPResendCooldown int `mapstructure:"OTP_RESEND_COOLDOWN_SECONDS"`
	OTPMaxAttempts    int `mapstructure:"OTP_MAX_ATTEMPTS"`
	SweepIntervalSecs int `mapstructure:"SWEEP_INTERVAL_SECONDS"`

	// Provider working-day template. Blocks are "HH:MM-HH:MM" ranges,
	// comma separated; each block is cut into SLOT_MINUTES increments.
	WorkdayBlocks string `mapstructure:"WORKDAY_BLOCKS"`
	SlotMinutes   int    `mapstructure:"SLOT_MINUTES"`

	// Twilio SMS credentials for OTP delivery. When the SID is empty the
	// server falls back to a logging notifier.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "medibook")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_OTP_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("OTP_CODE_LENGTH", 6)
	viper.SetDefault("OTP_TTL_SECONDS", 300)
	viper.SetDefault("OTP_RESEND_COOLDOWN_SECONDS", 30)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	viper.SetDefault("WORKDAY_BLOCKS", "09:00-12:00,14:00-17:00")
	viper.SetDefault("SLOT_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
