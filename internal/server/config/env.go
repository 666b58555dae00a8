package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration values from environment variables onto the
// provided Config. Variables that are unset leave the current value intact,
// so the env layer composes with defaults and the JSON file.
//
// Recognized variables:
//
//	ADDRESS           HTTP bind address
//	DATABASE_DSN      PostgreSQL DSN
//	SECRET_KEY        JWT HMAC secret
//	TOKEN_VALIDITY    session token lifetime (time.ParseDuration syntax)
//	COOKIE_NAME       session cookie name
//	COOKIE_DOMAIN     session cookie domain
//	CORS_ORIGIN       allowed browser origin
//	PHOTO_STORAGE     "disk" or "s3"
//	UPLOADS_DIR       disk-backend directory
//	MAX_UPLOAD_BYTES  multipart upload cap, bytes
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddrHTTP, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.CookieName, "COOKIE_NAME")
	setString(&config.CookieDomain, "COOKIE_DOMAIN")
	setString(&config.CORSOrigin, "CORS_ORIGIN")
	setString(&config.PhotoStorage, "PHOTO_STORAGE")
	setString(&config.UploadsDir, "UPLOADS_DIR")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v, ok := os.LookupEnv("TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}

	if v, ok := os.LookupEnv("MAX_UPLOAD_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxUploadBytes = n
		}
	}
}
