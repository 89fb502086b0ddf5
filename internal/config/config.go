package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
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
		TTL    int    `yaml:"ttl"` // hours
	} `yaml:"jwt"`

	AI struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ai"`

	QR struct {
		// Public base URL embedded into QR codes, e.g. https://reviews.example.com
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"qr"`

	Payment struct {
		MerchantLogin string `yaml:"merchant_login"`
		Password1     string `yaml:"password1"`
		Password2     string `yaml:"password2"`
		BaseURL       string `yaml:"base_url"`
		Currency      string `yaml:"currency"`
	} `yaml:"payment"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Worker struct {
		ExpirySweepHours int `yaml:"expiry_sweep_hours"`
	} `yaml:"worker"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

// LoadConfig reads config.yaml when present, then applies environment
// overrides. A local .env file is loaded first so development matches the
// deployed environment layout.
func LoadConfig() {
	_ = godotenv.Load()

	cfg := &Config{}

	if data, err := os.ReadFile(configPath()); err == nil {
		_ = yaml.Unmarshal(data, cfg)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 24
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 10
	}
	if cfg.QR.PublicBaseURL == "" {
		cfg.QR.PublicBaseURL = "http://localhost:8080"
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "USD"
	}
	if cfg.Worker.ExpirySweepHours == 0 {
		cfg.Worker.ExpirySweepHours = 6
	}
}

func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setInt(&cfg.JWT.TTL, "JWT_TTL_HOURS")
	setString(&cfg.AI.APIKey, "AI_API_KEY")
	setString(&cfg.AI.Model, "AI_MODEL")
	setString(&cfg.AI.BaseURL, "AI_BASE_URL")
	setInt(&cfg.AI.TimeoutSeconds, "AI_TIMEOUT_SECONDS")
	setString(&cfg.QR.PublicBaseURL, "QR_PUBLIC_BASE_URL")
	setString(&cfg.Payment.MerchantLogin, "PAYMENT_MERCHANT_LOGIN")
	setString(&cfg.Payment.Password1, "PAYMENT_PASSWORD1")
	setString(&cfg.Payment.Password2, "PAYMENT_PASSWORD2")
	setString(&cfg.Payment.BaseURL, "PAYMENT_BASE_URL")
	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "SMTP_FROM_EMAIL")
	setString(&cfg.Email.FromName, "SMTP_FROM_NAME")
	setString(&cfg.FirstAdminEmail, "FIRST_ADMIN_EMAIL")
	setString(&cfg.FirstAdminPassword, "FIRST_ADMIN_PASSWORD")
}
