package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	PayOS    PayOSConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	FrontendURL    string
	BackendBaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type PayOSConfig struct {
	ClientID    string
	APIKey      string
	ChecksumKey string
	BaseURL     string
}

type BookingConfig struct {
	MinPaymentAmount int // gateway minimum, VND
	LinkMaxRetries   int // retries on duplicate order code
	RefundNoticeDays int // refund allowed until start - N days
	PayoutHoldDays   int // payout allowed after end + N days
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("PAYOS_BASE_URL", "https://api-merchant.payos.vn")
	viper.SetDefault("PAYMENT_MIN_AMOUNT", 10000)
	viper.SetDefault("PAYMENT_LINK_MAX_RETRIES", 3)
	viper.SetDefault("REFUND_NOTICE_DAYS", 2)
	viper.SetDefault("PAYOUT_HOLD_DAYS", 15)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			FrontendURL:    viper.GetString("FRONTEND_URL"),
			BackendBaseURL: viper.GetString("BACKEND_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		PayOS: PayOSConfig{
			ClientID:    viper.GetString("PAYOS_CLIENT_ID"),
			APIKey:      viper.GetString("PAYOS_API_KEY"),
			ChecksumKey: viper.GetString("PAYOS_CHECKSUM_KEY"),
			BaseURL:     viper.GetString("PAYOS_BASE_URL"),
		},
		Booking: BookingConfig{
			MinPaymentAmount: viper.GetInt("PAYMENT_MIN_AMOUNT"),
			LinkMaxRetries:   viper.GetInt("PAYMENT_LINK_MAX_RETRIES"),
			RefundNoticeDays: viper.GetInt("REFUND_NOTICE_DAYS"),
			PayoutHoldDays:   viper.GetInt("PAYOUT_HOLD_DAYS"),
		},
	}

	return config, nil
}
