package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/socialgraph-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT id, usuario, correo, biografia, institucion, escuela_profesional, facultad,
			  tipo_usuario, estado_cuenta, created_at, siguiendo, seguidos
			  FROM users WHERE id = $1`

	var (
		user                model.User
		following, followed []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.Bio, &user.Institution, &user.School, &user.Faculty,
		&user.Kind, &user.Status, &user.CreatedAt, &following, &followed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.Following, err = model.ParseIDList(following); err != nil {
		return model.User{}, fmt.Errorf("failed to decode following of user %d: %w", id, err)
	}
	if user.Followers, err = model.ParseIDList(followed); err != nil {
		return model.User{}, fmt.Errorf("failed to decode followers of user %d: %w", id, err)
	}

	return user, nil
}

// Snapshot reads the adjacency lists of every user in a single statement,
// so the result reflects one consistent point in time.
func (r *UserRepository) Snapshot(ctx context.Context) ([]model.User, error) {
	query := `SELECT id, estado_cuenta, siguiendo, seguidos FROM users ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users snapshot: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			user                model.User
			following, followed []byte
		)
		if err := rows.Scan(&user.ID, &user.Status, &following, &followed); err != nil {
			return nil, fmt.Errorf("failed to scan user snapshot: %w", err)
		}
		if user.Following, err = model.ParseIDList(following); err != nil {
			return nil, fmt.Errorf("failed to decode following of user %d: %w", user.ID, err)
		}
		if user.Followers, err = model.ParseIDList(followed); err != nil {
			return nil, fmt.Errorf("failed to decode followers of user %d: %w", user.ID, err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users snapshot: %w", err)
	}

	return users, nil
}
