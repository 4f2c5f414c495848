package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
)

const uniqueViolationCode = "23505"

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository     = (*Repository)(nil)
	_ repository.ProductRepository  = (*Repository)(nil)
	_ repository.CategoryRepository = (*Repository)(nil)
	_ repository.VariantRepository  = (*Repository)(nil)
	_ repository.PurchaseRepository = (*Repository)(nil)
)

func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return repository.ErrConflict
	}
	return err
}

// CreateUser inserts an account and fills in the generated id.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO usuarios (nombres, apellidos, correo, contrasena, dni, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	row := r.pool.QueryRow(ctx, query, user.Nombres, user.Apellidos, user.Correo, user.PasswordHash, user.DNI, user.FechaRegistro)
	if err := row.Scan(&user.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetUserByEmail fetches a user by exact correo match.
func (r *Repository) GetUserByEmail(ctx context.Context, correo string) (*domain.User, error) {
	const query = `SELECT id, nombres, apellidos, correo, contrasena, dni, fecha_registro
		FROM usuarios WHERE correo = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, correo))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT id, nombres, apellidos, correo, contrasena, dni, fecha_registro
		FROM usuarios WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// ListUsers returns all accounts ordered by registration.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT id, nombres, apellidos, correo, contrasena, dni, fecha_registro
		FROM usuarios ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Nombres, &u.Apellidos, &u.Correo, &u.PasswordHash, &u.DNI, &u.FechaRegistro); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserProfile updates profile fields, never the stored credential.
func (r *Repository) UpdateUserProfile(ctx context.Context, user *domain.User) error {
	const query = `UPDATE usuarios SET nombres = $2, apellidos = $3, correo = $4, dni = $5 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, user.ID, user.Nombres, user.Apellidos, user.Correo, user.DNI)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Nombres, &u.Apellidos, &u.Correo, &u.PasswordHash, &u.DNI, &u.FechaRegistro); err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}
