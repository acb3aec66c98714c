// Package repomanager hands out repositories bound to a connection or a
// transaction and runs the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/evorun/internal/dbx"
	"github.com/dmitrijs2005/evorun/internal/server/repositories/users"
	"github.com/dmitrijs2005/evorun/internal/server/repositories/workouts"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Workouts(db dbx.DBTX) workouts.Repository
}
