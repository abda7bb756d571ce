package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// CORS
	CORSOrigins []string

	// Merchant
	MerchantDisplayName string
	ApplicationData     string

	// Gateway constraints advertised on the info route
	AllowedCountries     []string
	AllowedCurrencies    []string
	MerchantCapabilities []string
	SupportedNetworks    []string

	// Features
	EnableMetrics bool

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int
}

func New() *Config {
	c := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// CORS
		CORSOrigins: getEnvAsSlice("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"),

		// Merchant
		MerchantDisplayName: getEnv("MERCHANT_DISPLAY_NAME", "My Store"),
		ApplicationData:     getEnv("APPLICATION_DATA", ""),

		// Gateway constraints
		AllowedCountries:     getEnvAsSlice("ALLOWED_COUNTRIES", "US,CA,GB"),
		AllowedCurrencies:    getEnvAsSlice("ALLOWED_CURRENCIES", "USD,CAD,GBP"),
		MerchantCapabilities: getEnvAsSlice("MERCHANT_CAPABILITIES", "supports3DS"),
		SupportedNetworks:    getEnvAsSlice("SUPPORTED_NETWORKS", "visa,masterCard,amex,discover"),

		// Features
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 0),
	}

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

func getEnvAsSlice(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
