// Package db wires repositories to a shared database connection.
package db

import (
	"context"
	"database/sql"

	"github.com/akarpovs/livegate/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Close() error
}
