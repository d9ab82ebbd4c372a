package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"LCInvestor/internal/model"
)

// InvestmentUnit is the marketplace's note size; every order is a multiple of it.
var InvestmentUnit = decimal.NewFromInt(25)

// Criterion is one named attribute a loan must match exactly.
type Criterion struct {
	Name  string
	Value model.Value
}

// Criteria keeps configuration order, which is also the order they are checked.
type Criteria []Criterion

// Account holds the investor identity and money rules.
type Account struct {
	InvestorID    int64
	AuthKey       string
	ReserveCash   decimal.Decimal
	InvestAmount  decimal.Decimal
	PortfolioName string
}

// DefaultRequestsPerSecond applies when a config file does not set a rate.
const DefaultRequestsPerSecond = 1.0

// Gateway configures the marketplace HTTP client. A RequestsPerSecond of 0
// disables rate limiting.
type Gateway struct {
	BaseURL           string
	Proxy             string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Log configures the process logger.
type Log struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

// DefaultLog is the logging setup used until a config file has been read.
func DefaultLog() Log {
	return Log{
		File:       "lcInvestor.log",
		Level:      "info",
		MaxSizeMB:  1,
		MaxBackups: 2,
	}
}

// Telegram configures optional run summary delivery.
type Telegram struct {
	BotToken string
	ChatID   string
}

// Enabled reports whether both credentials are present.
func (t Telegram) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Schedule configures optional repeated runs. An empty Cron means run once.
type Schedule struct {
	Cron string
}

// Config holds all application configuration. It is immutable once loaded.
type Config struct {
	Account  Account
	Criteria Criteria
	Gateway  Gateway
	Log      Log
	Telegram Telegram
	Schedule Schedule
}

// Error reports missing or invalid configuration.
type Error struct {
	Section string
	Key     string
	Reason  string
}

func (e *Error) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("config: %s.%s: %s", e.Section, e.Key, e.Reason)
	case e.Section != "":
		return fmt.Sprintf("config: %s: %s", e.Section, e.Reason)
	default:
		return "config: " + e.Reason
	}
}

// Load reads config from a YAML or INI file, applies environment overrides
// and defaults, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cfg", ".ini":
		cfg, err = parseINI(data)
	default:
		cfg, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LC_AUTH_KEY"); v != "" {
		cfg.Account.AuthKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = "https://api.lendingclub.com/api/investor/v1"
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 30 * time.Second
	}
	fallback := DefaultLog()
	if cfg.Log.File == "" {
		cfg.Log.File = fallback.File
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = fallback.Level
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = fallback.MaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = fallback.MaxBackups
	}
}

// Validate checks the money rules and required account fields.
func (c *Config) Validate() error {
	a := c.Account
	if a.AuthKey == "" {
		return &Error{Section: sectionAccount, Key: "authKey", Reason: "is required"}
	}
	if a.PortfolioName == "" {
		return &Error{Section: sectionAccount, Key: "portfolioName", Reason: "is required"}
	}
	if a.ReserveCash.IsNegative() {
		return &Error{Section: sectionAccount, Key: "reserveCash", Reason: "must not be negative"}
	}
	if !a.InvestAmount.IsPositive() || !a.InvestAmount.Mod(InvestmentUnit).IsZero() {
		return &Error{
			Section: sectionAccount,
			Key:     "investAmount",
			Reason:  fmt.Sprintf("%s is not a positive multiple of %s", a.InvestAmount, InvestmentUnit),
		}
	}
	if c.Gateway.RequestsPerSecond < 0 {
		return &Error{Section: "gateway", Key: "requests_per_second", Reason: "must not be negative"}
	}
	return nil
}

const sectionAccount = "account"

// rawAccount carries account values as text before casting. Both file
// formats fill it.
type rawAccount struct {
	InvestorID    string `yaml:"investor_id"`
	AuthKey       string `yaml:"auth_key"`
	ReserveCash   string `yaml:"reserve_cash"`
	InvestAmount  string `yaml:"invest_amount"`
	PortfolioName string `yaml:"portfolio_name"`
}

func (r rawAccount) cast() (Account, error) {
	var a Account

	if r.InvestorID == "" {
		return a, &Error{Section: sectionAccount, Key: "investorId", Reason: "is required"}
	}
	id, ok := model.CastNum(r.InvestorID).Int()
	if !ok {
		return a, &Error{Section: sectionAccount, Key: "investorId", Reason: fmt.Sprintf("%q is not an integer", r.InvestorID)}
	}
	a.InvestorID = id

	if r.ReserveCash == "" {
		return a, &Error{Section: sectionAccount, Key: "reserveCash", Reason: "is required"}
	}
	reserve, ok := model.CastNum(r.ReserveCash).Number()
	if !ok {
		return a, &Error{Section: sectionAccount, Key: "reserveCash", Reason: fmt.Sprintf("%q is not a number", r.ReserveCash)}
	}
	a.ReserveCash = reserve

	if r.InvestAmount == "" {
		return a, &Error{Section: sectionAccount, Key: "investAmount", Reason: "is required"}
	}
	amount, ok := model.CastNum(r.InvestAmount).Number()
	if !ok {
		return a, &Error{Section: sectionAccount, Key: "investAmount", Reason: fmt.Sprintf("%q is not a number", r.InvestAmount)}
	}
	a.InvestAmount = amount

	a.AuthKey = r.AuthKey
	a.PortfolioName = r.PortfolioName
	return a, nil
}
