// Command createadmin makes sure an administrator account exists.
//
//	createadmin [-u admin] [-p password] [server config flags]
//
// Without -p the password is taken from ADMIN_PASSWORD or prompted for.
package main

import (
	"context"
	"log"
	"os"

	"github.com/molyneaux/vehicle-photo-api/internal/logging"
	"github.com/molyneaux/vehicle-photo-api/internal/server/admin"
	"github.com/molyneaux/vehicle-photo-api/internal/server/config"
	"github.com/molyneaux/vehicle-photo-api/internal/server/repositories/repomanager"
	"github.com/molyneaux/vehicle-photo-api/internal/server/services"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := admin.ParseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, "text", os.Stderr)
	if err != nil {
		return err
	}

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return err
	}

	us := services.NewUserService(db, rm, cfg, logger)
	return admin.Run(ctx, us, opts, os.Stdout)
}
