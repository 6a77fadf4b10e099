package database

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

//go:embed migrations
var embeddedMigrations embed.FS

// RunMigrations executes all SQL migration files for the active dialect.
// An empty migrationsPath uses the migrations compiled into the binary.
func (db *DB) RunMigrations(migrationsPath string) error {
	var source fs.FS = embeddedMigrations
	root := "migrations"
	if migrationsPath != "" {
		source = os.DirFS(migrationsPath)
		root = "."
	}
	return db.runMigrationsFS(source, path.Join(root, db.Dialect.MigrationsSubdir()))
}

func (db *DB) runMigrationsFS(source fs.FS, dir string) error {
	if _, err := db.Exec(db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := fs.Glob(source, path.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		filename := path.Base(file)

		hasRun, err := db.hasMigrationRun(filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(source, file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		// Multi-statement files rely on the driver accepting several statements
		// per Exec (sqlite3, lib/pq, and mysql with multiStatements=true).
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (filename) VALUES (?)", filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
	}

	return nil
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(filename string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
