package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/molyneaux/vehicle-photo-api/internal/flagx"
	"github.com/molyneaux/vehicle-photo-api/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// "30m" style strings. Only fields present (non-zero) override the
// current configuration.
type JsonConfig struct {
	ListenAddr                  string         `json:"listen_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	StorageBackend              string         `json:"storage_backend"`
	PhotoRoot                   string         `json:"photo_root"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3AccessKey                 string         `json:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key"`
	MinioEndpoint               string         `json:"minio_endpoint"`
	MinioAccessKey              string         `json:"minio_access_key"`
	MinioSecretKey              string         `json:"minio_secret_key"`
	MinioBucket                 string         `json:"minio_bucket"`
	MaxUploadBytes              int64          `json:"max_upload_bytes"`
	MaxBatchPhotos              int            `json:"max_batch_photos"`
	CORSOrigins                 []string       `json:"cors_origins"`
	PublicUploadURL             string         `json:"public_upload_url"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
}

// parseJson overlays the JSON file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&config.ListenAddr, c.ListenAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.BcryptCost, c.BcryptCost)
	overlay(&config.StorageBackend, c.StorageBackend)
	overlay(&config.PhotoRoot, c.PhotoRoot)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.MinioEndpoint, c.MinioEndpoint)
	overlay(&config.MinioAccessKey, c.MinioAccessKey)
	overlay(&config.MinioSecretKey, c.MinioSecretKey)
	overlay(&config.MinioBucket, c.MinioBucket)
	overlay(&config.MaxUploadBytes, c.MaxUploadBytes)
	overlay(&config.MaxBatchPhotos, c.MaxBatchPhotos)
	overlay(&config.PublicUploadURL, c.PublicUploadURL)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFormat, c.LogFormat)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}

	return nil
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
