package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// APIConfig points at the external Scanctum backend
type APIConfig struct {
	URL string `yaml:"url"` // base URL, e.g. http://localhost:8000/api/v1
	// MinVersion is the oldest backend API version this front end supports
	MinVersion string `yaml:"minVersion"`
	// TimeoutSeconds bounds every REST call; 0 means the default (30s)
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// SessionConfig controls the server-side session store
type SessionConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "redis"
	TTLHours   int    `yaml:"ttlHours"`
	CookieName string `yaml:"cookieName"`
	Redis      struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// RateLimitConfig bounds login/signup attempts per client IP
type RateLimitConfig struct {
	LoginRPS   float64 `yaml:"loginRPS"`
	LoginBurst int     `yaml:"loginBurst"`
}

// Archive mirrors exported reports to a cloud bucket when enabled
type Archive struct {
	Provider string `yaml:"provider"` // "aws", "gcp" or "azure"
	Enabled  bool   `yaml:"enabled"`
	GCP      struct {
		Bucket    string `yaml:"bucket"`
		ProjectID string `yaml:"projectID"`
	} `yaml:"gcp"`
	AWS struct {
		Bucket string `yaml:"bucket"`
		Region string `yaml:"region"`
	} `yaml:"aws"`
	Azure struct {
		StorageAccount string `yaml:"storageAccount"`
		Container      string `yaml:"container"`
	} `yaml:"azure"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	API APIConfig `yaml:"api"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Archive   Archive         `yaml:"archive"`
}

type Secrets struct {
	// AWS credentials
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// GCP credentials
	GCPCredentialsFile string

	// Azure credentials
	AzureStorageAccountKey string
}

// LoadConfig reads the YAML config file and applies env overrides
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	loadConfigFromEnv(config)
	applyDefaults(config)

	return config, nil
}

// Defaults returns a usable configuration when no file is present
func Defaults() *Config {
	config := &Config{}
	loadConfigFromEnv(config)
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 3030
	}
	if config.API.URL == "" {
		config.API.URL = "http://localhost:8000/api/v1"
	}
	if config.API.TimeoutSeconds == 0 {
		config.API.TimeoutSeconds = 30
	}
	if config.Session.Backend == "" {
		config.Session.Backend = "memory"
	}
	if config.Session.TTLHours == 0 {
		config.Session.TTLHours = 24
	}
	if config.Session.CookieName == "" {
		config.Session.CookieName = "scanctum_session"
	}
	if config.RateLimit.LoginRPS == 0 {
		config.RateLimit.LoginRPS = 1
	}
	if config.RateLimit.LoginBurst == 0 {
		config.RateLimit.LoginBurst = 5
	}
}

// loadConfigFromEnv lets deployment environments override the file
func loadConfigFromEnv(config *Config) {
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Server.Port = port
		}
	}

	if apiURL := os.Getenv("SCANCTUM_API_URL"); apiURL != "" {
		config.API.URL = apiURL
	}
	if minVersion := os.Getenv("SCANCTUM_API_MIN_VERSION"); minVersion != "" {
		config.API.MinVersion = minVersion
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}

	if backend := os.Getenv("SESSION_BACKEND"); backend != "" {
		config.Session.Backend = backend
	}
	if ttl := os.Getenv("SESSION_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil {
			config.Session.TTLHours = hours
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Session.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Session.Redis.Password = password
	}

	if provider := os.Getenv("ARCHIVE_PROVIDER"); provider != "" {
		config.Archive.Provider = provider
	}
	if enabled := os.Getenv("ARCHIVE_ENABLED"); enabled != "" {
		config.Archive.Enabled = enabled == "true"
	}

	// GCP archive config
	if gcpBucket := os.Getenv("GCP_BUCKET"); gcpBucket != "" {
		config.Archive.GCP.Bucket = gcpBucket
	}
	if gcpProjectID := os.Getenv("GCP_PROJECT_ID"); gcpProjectID != "" {
		config.Archive.GCP.ProjectID = gcpProjectID
	}

	// AWS archive config
	if awsBucket := os.Getenv("AWS_BUCKET"); awsBucket != "" {
		config.Archive.AWS.Bucket = awsBucket
	}
	if awsRegion := os.Getenv("AWS_REGION"); awsRegion != "" {
		config.Archive.AWS.Region = awsRegion
	}

	// Azure archive config
	if azureAccount := os.Getenv("AZURE_STORAGE_ACCOUNT"); azureAccount != "" {
		config.Archive.Azure.StorageAccount = azureAccount
	}
	if azureContainer := os.Getenv("AZURE_CONTAINER"); azureContainer != "" {
		config.Archive.Azure.Container = azureContainer
	}
}

// LoadSecrets reads provider credentials from the environment
func LoadSecrets() *Secrets {
	secrets := &Secrets{}

	// AWS secrets
	secrets.AWSAccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	secrets.AWSSecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	// GCP secrets
	secrets.GCPCredentialsFile = os.Getenv("GCP_CREDENTIALS_FILE")

	// Azure secrets
	secrets.AzureStorageAccountKey = os.Getenv("AZURE_STORAGE_ACCOUNT_KEY")

	return secrets
}
