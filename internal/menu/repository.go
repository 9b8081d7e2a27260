package menu

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Repository defines persistence operations for menu permissions.
type Repository interface {
	List(ctx context.Context) ([]Permission, error)
	Get(ctx context.Context, id int64) (Permission, error)
	Create(ctx context.Context, fields Fields) (Permission, error)
	Update(ctx context.Context, id int64, fields Fields) (Permission, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const permissionColumns = `id, menu_name, menu_label, menu_path, icon_name, is_active,
	admin_access, user_access, guest_access, sort_order, created_at`

// List returns all rows ordered by sort order, insertion order breaking ties.
func (r *repository) List(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM menu_permissions ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Permission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM menu_permissions WHERE id = $1`, id)
	p, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, httpx.ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, fields Fields) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO menu_permissions
			(menu_name, menu_label, menu_path, icon_name, is_active, admin_access, user_access, guest_access, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+permissionColumns,
		fields.MenuName, fields.MenuLabel, fields.MenuPath, fields.IconName, activeFlag(fields),
		fields.AdminAccess, fields.UserAccess, fields.GuestAccess, fields.SortOrder,
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)
	p, err := scanPermission(row)
	if err != nil {
		return Permission{}, mapConstraint(err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields Fields) (Permission, error) {
	// COALESCE keeps the stored flag when is_active arrives unset; updates
	// must never re-activate a row as a side effect.
	row := r.pool.QueryRow(ctx, `
		UPDATE menu_permissions SET
			menu_name = $2, menu_label = $3, menu_path = $4, icon_name = $5,
			is_active = COALESCE($6, is_active), admin_access = $7, user_access = $8, guest_access = $9, sort_order = $10
		WHERE id = $1
		RETURNING `+permissionColumns,
		id, fields.MenuName, fields.MenuLabel, fields.MenuPath, fields.IconName, fields.IsActive,
		fields.AdminAccess, fields.UserAccess, fields.GuestAccess, fields.SortOrder,
	)
	p, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, httpx.ErrNotFound
		}
		return Permission{}, mapConstraint(err)
	}
	return p, nil
}

// Delete removes a row by identifier. Returns ErrNotFound if nothing matched.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	var createdAt pgtype.Timestamptz
	err := row.Scan(
		&p.ID, &p.MenuName, &p.MenuLabel, &p.MenuPath, &p.IconName, &p.IsActive,
		&p.AdminAccess, &p.UserAccess, &p.GuestAccess, &p.SortOrder, &createdAt,
	)
	if err != nil {
		return Permission{}, err
	}
	p.CreatedAt = createdAt.Time
	return p, nil
}

func activeFlag(fields Fields) bool {
	if fields.IsActive == nil {
		return true
	}
	return *fields.IsActive
}

// mapConstraint folds the menu_name unique index into the duplicate error.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}
