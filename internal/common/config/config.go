package config

import "fmt"

type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Evaluation    EvaluationConfig   `mapstructure:"evaluation"`
	Documents     DocumentsConfig    `mapstructure:"documents"`
	Integrations  IntegrationConfig  `mapstructure:"integrations"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes"`
	SessionKeyPrefix  string `mapstructure:"session_key_prefix"`
}

// EvaluationConfig carries the scoring weights and recommendation thresholds.
// Weights must sum to 1.0; violations fail startup.
type EvaluationConfig struct {
	Weights          WeightsConfig `mapstructure:"weights"`
	ApproveThreshold float64       `mapstructure:"approve_threshold"`
	RejectThreshold  float64       `mapstructure:"reject_threshold"`
}

type WeightsConfig struct {
	Facility   float64 `mapstructure:"facility"`
	Staffing   float64 `mapstructure:"staffing"`
	Equipment  float64 `mapstructure:"equipment"`
	Compliance float64 `mapstructure:"compliance"`
	Financial  float64 `mapstructure:"financial"`
	Location   float64 `mapstructure:"location"`
	Services   float64 `mapstructure:"services"`
	Reputation float64 `mapstructure:"reputation"`
}

func (w WeightsConfig) Sum() float64 {
	return w.Facility + w.Staffing + w.Equipment + w.Compliance +
		w.Financial + w.Location + w.Services + w.Reputation
}

type DocumentsConfig struct {
	StorageDir  string `mapstructure:"storage_dir"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	ContractDir string `mapstructure:"contract_dir"`
}

type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NotificationConfig struct {
	EmailEnabled bool   `mapstructure:"email_enabled"`
	SMSEnabled   bool   `mapstructure:"sms_enabled"`
	PortalURL    string `mapstructure:"portal_url"`
}
