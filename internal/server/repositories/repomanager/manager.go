package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/travelog/internal/dbx"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/entries"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/files"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, plus the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
	Files(db dbx.DBTX) files.Repository
}
