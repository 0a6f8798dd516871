// Package repomanager hands out repositories bound to a DB handle, which may
// be a pooled connection or a running transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/erisahalipaj/userauth/internal/dbx"
	"github.com/erisahalipaj/userauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
