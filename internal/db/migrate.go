package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const directoryMigration = `
CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY,
    email text NOT NULL,
    display_name text NOT NULL DEFAULT '',
    auth_provider text NOT NULL,
    auth_subject text NOT NULL DEFAULT '',
    password_hash text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));

CREATE UNIQUE INDEX IF NOT EXISTS users_auth_unique
ON users (auth_provider, auth_subject)
WHERE auth_subject <> '';
`

// Migrate crea las tablas del directorio de identidad si no existen.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, directoryMigration)
	return err
}
