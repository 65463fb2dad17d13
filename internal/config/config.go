package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment   string `mapstructure:"environment"`
	DevModeBypass bool   `mapstructure:"dev_mode_bypass"`

	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Auth struct {
		Issuer       string `mapstructure:"issuer"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"auth"`
	Tenancy struct {
		// SharedSchema holds the tenant directory and the reference
		// catalog. It is always searched after the tenant schema.
		SharedSchema string `mapstructure:"shared_schema"`
		// Fallbacks used when the reference catalog is empty at
		// tenant-creation time.
		DefaultRegionID   int64 `mapstructure:"default_region_id"`
		DefaultLocationID int64 `mapstructure:"default_location_id"`
		DefaultTypeCode   int   `mapstructure:"default_type_code"`
		// ProvisionTimeoutSeconds bounds tenant creation and schema
		// creation individually.
		ProvisionTimeoutSeconds int `mapstructure:"provision_timeout_seconds"`
	} `mapstructure:"tenancy"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// ProvisionTimeout returns the configured provisioning timeout as a
// duration.
func (c *Config) ProvisionTimeout() time.Duration {
	return time.Duration(c.Tenancy.ProvisionTimeoutSeconds) * time.Second
}

// LoadConfig loads the configuration from a file and the environment.
// configFile may be empty, in which case the default search paths are
// used.
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.AutomaticEnv()

	viper.SetDefault("environment", "DEV")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("tenancy.shared_schema", "public")
	viper.SetDefault("tenancy.default_region_id", 1)
	viper.SetDefault("tenancy.default_location_id", 1)
	viper.SetDefault("tenancy.default_type_code", 1)
	viper.SetDefault("tenancy.provision_timeout_seconds", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// normalize issuer url (strip trailing slash if any)
	config.Auth.Issuer = normalizeIssuer(config.Auth.Issuer)

	return &config, nil
}

// normalizeIssuer ensures the provided OIDC issuer string is in a
// predictable form. It removes any trailing slash and leaves the scheme
// and path intact, so the value can be pasted straight from the
// provider's admin console.
func normalizeIssuer(input string) string {
	iss := strings.TrimSpace(input)
	if strings.HasSuffix(iss, "/") {
		iss = strings.TrimRight(iss, "/")
	}
	return iss
}
