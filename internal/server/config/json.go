package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/travelog/internal/flagx"
	"github.com/dmitrijs2005/travelog/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	MinPasswordLength            int            `json:"min_password_length"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3PublicURL                  string         `json:"s3_public_url"`
	MaxUploadSize                int64          `json:"max_upload_size"`
	SecureCookie                 bool           `json:"secure_cookie"`
	LogLevel                     string         `json:"log_level"`
	LogFormat                    string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field that is set in the file into config. Unreadable files and invalid
// JSON panic: the server must not start with a half-applied config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setStr(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setStr(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.MinPasswordLength != 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setStr(&config.S3PublicURL, c.S3PublicURL)
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.SecureCookie {
		config.SecureCookie = true
	}
	setStr(&config.LogLevel, c.LogLevel)
	setStr(&config.LogFormat, c.LogFormat)
}
