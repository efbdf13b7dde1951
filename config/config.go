package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL"`
	Postgres          Postgres
	Telegram          Telegram
	Redis             Redis
	API               API
	Sheets            Sheets
	Exchange          Exchange
	Jobs              Jobs
	HTTP              HTTP
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Telegram struct {
	Token       string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout  time.Duration `env:"TELEGRAM_UPD_TIMEOUT"`
	AdminChatID int64         `env:"ADMIN_CHAT_ID"`
	OwnerUserID int64         `env:"OWNER_USER_ID"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug           bool          `env:"API_DEBUG"`
	Timeout         time.Duration `env:"API_TIMEOUT"`
	ExchangeRateApi ExchangeRateApi
}

type ExchangeRateApi struct {
	Url    string `env:"EXCHANGE_RATE_API_URL"`
	ApiKey string `env:"EXCHANGE_RATE_API_KEY"`
}

type Sheets struct {
	CredentialsFile string `env:"SHEETS_CREDENTIALS_FILE"`
	SpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	SheetRange      string `env:"SHEETS_RANGE" envDefault:"Sheet1!A:I"`
}

type Exchange struct {
	StockFile       string `env:"STOCK_FILE" envDefault:"stock_data.json"`
	AdminIban       string `env:"ADMIN_IBAN"`
	PaymentBank     string `env:"PAYMENT_BANK"`
	PaymentAccount  string `env:"PAYMENT_ACCOUNT"`
	PaymentHolder   string `env:"PAYMENT_HOLDER"`
	AdminContact    string `env:"ADMIN_CONTACT"`
	BuyLiraEnabled  bool   `env:"BUY_LIRA_ENABLED" envDefault:"true"`
	SellLiraEnabled bool   `env:"SELL_LIRA_ENABLED" envDefault:"true"`
}

type Jobs struct {
	StockSummaryCrontab string `env:"STOCK_SUMMARY_CRONTAB" envDefault:"0 9 * * *"`
}

type HTTP struct {
	Port int `env:"HTTP_PORT" envDefault:"8080"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
