// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("mongo.uri", "MONGODB_URI")
	v.BindEnv("mongo.db", "MONGODB_DB")

	v.BindEnv("admin.password", "ADMIN_PASSWORD")
	v.BindEnv("admin.secret", "APP_SECRET")

	v.BindEnv("media.endpoint", "media_endpoint")
	v.BindEnv("media.access_key_id", "media_access_key_id")
	v.BindEnv("media.secret_access_key", "media_secret_access_key")
	v.BindEnv("media.bucket", "media_bucket")
	v.BindEnv("media.base_url", "media_base_url")
	v.BindEnv("media.folder", "media_folder")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")

	v.BindEnv("cache.ttl", "cache_ttl")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("mongo.db", "portfolio")

	v.SetDefault("media.folder", "portfolio")

	v.SetDefault("upload.max_size", 10)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/webp"})

	v.SetDefault("cache.ttl", 60)

	if err := v.ReadInConfig(); err != nil {
		// Env-only deployments don't ship a config.toml
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("mongo.uri") == "" {
		zap.L().Warn("No MongoDB URI configured, database operations will fail")
	}

	if v.GetString("admin.password") == "" {
		return errors.New("admin password can't be empty")
	}

	if len(v.GetString("admin.secret")) < 16 {
		return errors.New("app secret must be at least 16 characters long")
	}

	if v.GetString("media.access_key_id") == "" {
		return errors.New("media access key id can't be empty")
	}
	if v.GetString("media.secret_access_key") == "" {
		return errors.New("media secret access key can't be empty")
	}
	if v.GetString("media.bucket") == "" {
		return errors.New("media bucket can't be empty")
	}
	if v.GetString("media.endpoint") == "" {
		return errors.New("media endpoint can't be empty")
	}
	if v.GetString("media.base_url") == "" {
		return errors.New("media base url can't be empty")
	}

	if v.GetInt("cache.ttl") <= 0 {
		return errors.New("cache.ttl must be bigger than 0")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
