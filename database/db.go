package database

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/bazaar/*.sql migrations/sessions/*.sql
var migrations embed.FS

// Connect opens the main marketplace database (listings + admins) and
// brings its schema up to date.
func Connect(path string) (*sqlx.DB, error) {
	return open(path, "migrations/bazaar")
}

// ConnectSessions opens the OAuth-handshake session database. It lives in
// its own file so the short-lived handshake state never mixes with
// marketplace data.
func ConnectSessions(path string) (*sqlx.DB, error) {
	return open(path, "migrations/sessions")
}

func open(path, migrationDir string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite serializes writers at the file level; a single connection
	// avoids SQLITE_BUSY churn under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := migrateUp(db, migrationDir); err != nil {
		return nil, err
	}
	return db, nil
}

// migrateUp migrates the database and handles the migration logic
func migrateUp(db *sqlx.DB, dir string) error {
	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrations, dir)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Tx provides the transaction wrapper
func Tx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start a transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if err := tx.Rollback(); err != nil {
				logrus.Errorf("failed to rollback tx: %s", err)
			}
			return
		}
		if err := tx.Commit(); err != nil {
			logrus.Errorf("failed to commit tx: %s", err)
		}
	}()
	err = fn(tx)
	return err
}
