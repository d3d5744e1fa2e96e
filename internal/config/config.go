package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	Payments PaymentsConfig `yaml:"payments"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

// PaymentsConfig is injected into the payment service at construction.
// Every key it needs is listed here explicitly; Validate fails fast when one
// is missing so a half-configured gateway never reaches production traffic.
type PaymentsConfig struct {
	Gateway       string `yaml:"gateway"`
	StoreID       string `yaml:"store_id"`
	StorePassword string `yaml:"store_password"`
	PaymentAPI    string `yaml:"payment_api"`
	ValidationAPI string `yaml:"validation_api"`
	Currency      string `yaml:"currency"`

	// Backend callback endpoints the gateway redirects/posts to.
	SuccessURL string `yaml:"success_url"`
	FailURL    string `yaml:"fail_url"`
	CancelURL  string `yaml:"cancel_url"`
	IPNURL     string `yaml:"ipn_url"`

	// Frontend pages the redirect handlers forward the browser to.
	FrontendSuccessURL string `yaml:"frontend_success_url"`
	FrontendFailURL    string `yaml:"frontend_fail_url"`
	FrontendCancelURL  string `yaml:"frontend_cancel_url"`

	// Plan name -> price in integer minor units.
	Plans map[string]int64 `yaml:"plans"`
}

// Validate enumerates every required payments key.
func (p *PaymentsConfig) Validate() error {
	required := map[string]string{
		"payments.store_id":             p.StoreID,
		"payments.store_password":       p.StorePassword,
		"payments.payment_api":          p.PaymentAPI,
		"payments.validation_api":       p.ValidationAPI,
		"payments.currency":             p.Currency,
		"payments.success_url":          p.SuccessURL,
		"payments.fail_url":             p.FailURL,
		"payments.cancel_url":           p.CancelURL,
		"payments.ipn_url":              p.IPNURL,
		"payments.frontend_success_url": p.FrontendSuccessURL,
		"payments.frontend_fail_url":    p.FrontendFailURL,
		"payments.frontend_cancel_url":  p.FrontendCancelURL,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("missing required config key: %s", key)
		}
	}
	if len(p.Plans) == 0 {
		return fmt.Errorf("missing required config key: payments.plans")
	}
	for name, price := range p.Plans {
		if price <= 0 {
			return fmt.Errorf("payments.plans.%s: price must be positive, got %d", name, price)
		}
	}
	return nil
}

// PlanPrice resolves a configured plan price. ok is false for unknown plans.
func (p *PaymentsConfig) PlanPrice(plan string) (int64, bool) {
	price, ok := p.Plans[plan]
	return price, ok
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("Loading configuration from config.yaml")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		AppConfig = &cfg
		return
	}

	// Environment-variable mode (tests, containers)
	log.Println("Loading configuration from environment variables")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Payments = PaymentsConfig{
		Gateway:            "sslcommerz",
		StoreID:            envOrDefault("SSL_STORE_ID", "teststore"),
		StorePassword:      envOrDefault("SSL_STORE_PASS", "testpass"),
		PaymentAPI:         envOrDefault("SSL_PAYMENT_API", "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"),
		ValidationAPI:      envOrDefault("SSL_VALIDATION_API", "https://sandbox.sslcommerz.com/validator/api/validationserverAPI.php"),
		Currency:           "bdt",
		SuccessURL:         envOrDefault("SSL_SUCCESS_BACKEND_URL", "http://localhost:4000/api/v1/payments/success"),
		FailURL:            envOrDefault("SSL_FAIL_BACKEND_URL", "http://localhost:4000/api/v1/payments/fail"),
		CancelURL:          envOrDefault("SSL_CANCEL_BACKEND_URL", "http://localhost:4000/api/v1/payments/cancel"),
		IPNURL:             envOrDefault("SSL_IPN_URL", "http://localhost:4000/api/v1/payments/validate-payment"),
		FrontendSuccessURL: envOrDefault("SSL_SUCCESS_FRONTEND_URL", "http://localhost:3000/payment/success"),
		FrontendFailURL:    envOrDefault("SSL_FAIL_FRONTEND_URL", "http://localhost:3000/payment/fail"),
		FrontendCancelURL:  envOrDefault("SSL_CANCEL_FRONTEND_URL", "http://localhost:3000/payment/cancel"),
		Plans: map[string]int64{
			"monthly":        50000,  // 500.00 BDT
			"yearly":         500000, // 5000.00 BDT
			"verified_badge": 100000, // 1000.00 BDT
		},
	}

	AppConfig = &cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
