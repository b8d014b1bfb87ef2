package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	LedgerWSURL    string
	LedgerIssuer   string // issuer account whose trustline limit quotes the exchange rate
	LedgerCurrency string

	VanityAPIURL    string
	VanityAPISecret string

	RateLimitRPS   int
	RateLimitBurst int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Origins            string
	APIKeys            string
	UserRegistrations  string
	WalletUserPayloads string
	AccountPayloads    string
	SearchTerms        string
	Purchases          string
	Statistics         string
	TempInfo           string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "4100"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Origins:            getEnv("DYNAMO_TABLE_ORIGINS", "allowed_origins"),
			APIKeys:            getEnv("DYNAMO_TABLE_API_KEYS", "application_api_keys"),
			UserRegistrations:  getEnv("DYNAMO_TABLE_USER_REGISTRATIONS", "user_registrations"),
			WalletUserPayloads: getEnv("DYNAMO_TABLE_WALLET_USER_PAYLOADS", "wallet_user_payloads"),
			AccountPayloads:    getEnv("DYNAMO_TABLE_ACCOUNT_PAYLOADS", "account_payloads"),
			SearchTerms:        getEnv("DYNAMO_TABLE_SEARCH_TERMS", "search_terms"),
			Purchases:          getEnv("DYNAMO_TABLE_PURCHASES", "purchased_vanity_addresses"),
			Statistics:         getEnv("DYNAMO_TABLE_STATISTICS", "statistics"),
			TempInfo:           getEnv("DYNAMO_TABLE_TEMP_INFO", "temp_info"),
		},

		LedgerWSURL:    getEnv("LEDGER_WS_URL", "wss://s1.ripple.com"),
		LedgerIssuer:   getEnv("LEDGER_ISSUER_ACCOUNT", ""),
		LedgerCurrency: getEnv("LEDGER_RATE_CURRENCY", "USD"),

		VanityAPIURL:    getEnv("VANITY_API_URL", "http://localhost:4200/"),
		VanityAPISecret: getEnv("VANITY_API_SECRET", ""),

		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
