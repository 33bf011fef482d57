package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ai3d-studio/internal/domain"
)

// ErrDuplicateUser se devuelve cuando el email o la identidad OAuth ya existen.
var ErrDuplicateUser = errors.New("user already exists")

const uniqueViolation = "23505"

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, display_name, auth_provider, auth_subject, password_hash, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, auth_provider, auth_subject, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.AuthProvider,
		user.AuthSubject,
		user.PasswordHash,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateUser
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.scanOne(ctx, query, email)
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND auth_subject = $2`
	return r.scanOne(ctx, query, provider, subject)
}

func (r *PgUserRepository) scanOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}
