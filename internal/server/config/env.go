package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/travelog/internal/flagx"
	"github.com/joho/godotenv"
)

// envPrefix is prepended to every variable name read by parseEnv.
const envPrefix = "TRAVELOG_"

// parseEnv overlays values from TRAVELOG_* environment variables. When the
// -env flag names a dotenv file it is loaded first; variables already set in
// the process environment take precedence over the file. A missing or
// unreadable file is a startup error and panics, like a bad JSON file.
func parseEnv(config *Config) {
	if file := flagx.EnvFileFlags(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	minutes := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = time.Duration(n) * time.Minute
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				panic(err)
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int64) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	minutes("ACCESS_TOKEN_MINUTES", &config.AccessTokenValidityDuration)
	minutes("REFRESH_TOKEN_MINUTES", &config.RefreshTokenValidityDuration)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PUBLIC_URL", &config.S3PublicURL)
	boolean("SECURE_COOKIE", &config.SecureCookie)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)

	minPw := int64(config.MinPasswordLength)
	integer("MIN_PASSWORD_LENGTH", &minPw)
	config.MinPasswordLength = int(minPw)
	integer("MAX_UPLOAD_SIZE", &config.MaxUploadSize)
}
