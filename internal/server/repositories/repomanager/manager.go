package repomanager

import (
	"context"
	"database/sql"

	"github.com/molyneaux/vehicle-photo-api/internal/dbx"
	"github.com/molyneaux/vehicle-photo-api/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
