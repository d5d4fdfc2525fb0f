package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// FixedAccessTokenTTL is the lifetime of every session credential.
const FixedAccessTokenTTL = 5 * time.Hour

type JWTConfig struct {
	SecretKey      string        `mapstructure:"secretKey"`
	Issuer         string        `mapstructure:"issuer"`
	Audience       string        `mapstructure:"audience"`
	AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort        string        `mapstructure:"HTTPPort"`
		Timeout         time.Duration `mapstructure:"HTTPTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
			MaxConns          int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT      JWTConfig `mapstructure:"jwt"`
	Security struct {
		BcryptCost int `mapstructure:"bcryptCost"`
	} `mapstructure:"security"`
	RateLimit struct {
		AuthRequestsPerMinute int `mapstructure:"authRequestsPerMinute"`
	} `mapstructure:"rateLimit"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	Cache struct {
		DirectoryTTL time.Duration `mapstructure:"directoryTTL"`
	} `mapstructure:"cache"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// MEDIBOOK_JWT_SECRETKEY overrides jwt.secretKey, and so on.
	v.SetEnvPrefix("MEDIBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate checks the settings the process cannot start without and
// pins the session lifetime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return errors.New("jwt.secretKey must be set (MEDIBOOK_JWT_SECRETKEY)")
	}
	if c.JWT.AccessTokenTTL != FixedAccessTokenTTL {
		c.JWT.AccessTokenTTL = FixedAccessTokenTTL
	}
	if c.Server.HTTPPort == "" {
		c.Server.HTTPPort = "8000"
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "medibook-api"
	}
	if c.Observability.MetricsPort == "" {
		c.Observability.MetricsPort = "9090"
	}
	if c.RateLimit.AuthRequestsPerMinute <= 0 {
		c.RateLimit.AuthRequestsPerMinute = 20
	}
	if c.Cache.DirectoryTTL <= 0 {
		c.Cache.DirectoryTTL = time.Minute
	}
	return nil
}
