package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/molyneaux/vehicle-photo-api/internal/flagx"
)

const defaultEnvFile = ".env"

// loadEnvFile exports variables from a dotenv file into the process
// environment without overriding variables that are already set.
// The file comes from -env-file, then ENV_FILE, then ./.env; only an
// explicitly named file is required to exist.
func loadEnvFile(args []string) error {
	path := flagx.EnvFile(args)
	if path == "" {
		path = os.Getenv("ENV_FILE")
	}
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays environment variables onto config.
func parseEnv(config *Config) error {
	setString(&config.ListenAddr, "LISTEN_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.StorageBackend, "STORAGE_BACKEND")
	setString(&config.PhotoRoot, "PHOTO_ROOT")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.S3AccessKey, "S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "S3_SECRET_KEY")
	setString(&config.MinioEndpoint, "MINIO_ENDPOINT")
	setString(&config.MinioAccessKey, "MINIO_ACCESS_KEY")
	setString(&config.MinioSecretKey, "MINIO_SECRET_KEY")
	setString(&config.MinioBucket, "MINIO_BUCKET")
	setString(&config.PublicUploadURL, "PUBLIC_UPLOAD_URL")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFormat, "LOG_FORMAT")

	if v, ok := lookup("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
	}
	if v, ok := lookup("BCRYPT_COST"); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = cost
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		config.MaxUploadBytes = n
	}
	if v, ok := lookup("MAX_BATCH_PHOTOS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_BATCH_PHOTOS: %w", err)
		}
		config.MaxBatchPhotos = n
	}
	if v, ok := lookup("CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}

	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
