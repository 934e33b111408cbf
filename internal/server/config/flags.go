package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/molyneaux/vehicle-photo-api/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP listen address (e.g. ":8000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-b string   storage backend: fs, s3 or minio
//	-r string   photo root directory for the fs backend
//
// Other arguments (for example -c or flags of cmd/createadmin) are
// filtered out before parsing.
func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, "-a", "-d", "-s", "-t", "-b", "-r")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing key")
	minutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (fs, s3, minio)")
	fs.StringVar(&config.PhotoRoot, "r", config.PhotoRoot, "photo root directory")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*minutes) * time.Minute
		}
	})
	return nil
}
