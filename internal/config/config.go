// Package config loads daemon settings from defaults, an optional YAML
// file, and BLOCKVAULT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the daemon configuration.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	DataDir    string `mapstructure:"data_dir"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
		Admins    []string      `mapstructure:"admins"`
	} `mapstructure:"auth"`

	IPFS struct {
		APIURL  string `mapstructure:"api_url"`
		Gateway string `mapstructure:"gateway"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"ipfs"`

	CORSOrigin string `mapstructure:"cors_origin"`
	LogLevel   string `mapstructure:"log_level"`
}

// DatabasePath returns the SQLite file location under the data dir.
func (c Config) DatabasePath() string { return c.DataDir + "/blockvault.db" }

// StorageDir returns the encrypted blob directory under the data dir.
func (c Config) StorageDir() string { return c.DataDir + "/storage" }

// ProverKeyDir returns where the Groth16 keys live under the data dir.
func (c Config) ProverKeyDir() string { return c.DataDir + "/prover" }

// Load reads configuration. cfgFile may be empty; defaults then env vars
// still apply.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can resolve it during
	// Unmarshal.
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.admins", []string{})
	v.SetDefault("ipfs.api_url", "")
	v.SetDefault("ipfs.gateway", "https://ipfs.io")
	v.SetDefault("ipfs.token", "")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("BLOCKVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set (BLOCKVAULT_AUTH_JWT_SECRET)")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 bytes")
	}
	return nil
}
