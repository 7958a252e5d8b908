package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/socialgraph-server/internal/model"
)

var _ model.RelationStore = (*RelationRepository)(nil)

// RelationRepository mutates the siguiendo/seguidos JSONB arrays with
// single-statement updates, so concurrent writers never lose each other's
// changes to the same row.
type RelationRepository struct {
	relationWriter
	db *Connection
}

func NewRelationRepository(db *Connection) *RelationRepository {
	return &RelationRepository{
		relationWriter: relationWriter{q: db},
		db:             db,
	}
}

// RunInTx runs fn inside a transaction; any error rolls back every write made through w.
// Deadlocks and serialization failures are reported as model.ErrTxConflict.
func (r *RelationRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, w model.RelationWriter) error) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &relationWriter{q: tx})
	})
	if isTxConflict(err) {
		return fmt.Errorf("%w: %w", model.ErrTxConflict, err)
	}
	return err
}

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// Atomic is always true: both rows are written in one transaction.
func (r *RelationRepository) Atomic() bool {
	return true
}

type relationWriter struct {
	q querier
}

func listColumn(list model.ListKind) (string, error) {
	switch list {
	case model.ListFollowing:
		return "siguiendo", nil
	case model.ListFollowers:
		return "seguidos", nil
	default:
		return "", fmt.Errorf("unknown list %q", list)
	}
}

func (w *relationWriter) Add(ctx context.Context, userID int64, list model.ListKind, member int64) (bool, error) {
	col, err := listColumn(list)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		UPDATE users SET %[1]s = %[1]s || jsonb_build_array($2::bigint)
		WHERE id = $1 AND NOT (%[1]s @> jsonb_build_array($2::bigint))`, col)

	cmd, err := w.q.Exec(ctx, query, userID, member)
	if err != nil {
		return false, fmt.Errorf("failed to add %d to %s of user %d: %w", member, list, userID, err)
	}

	return cmd.RowsAffected() > 0, nil
}

func (w *relationWriter) Remove(ctx context.Context, userID int64, list model.ListKind, member int64) (bool, error) {
	col, err := listColumn(list)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		UPDATE users SET %[1]s = COALESCE(
			(SELECT jsonb_agg(e) FROM jsonb_array_elements(%[1]s) AS e WHERE e <> to_jsonb($2::bigint)),
			'[]'::jsonb)
		WHERE id = $1 AND %[1]s @> jsonb_build_array($2::bigint)`, col)

	cmd, err := w.q.Exec(ctx, query, userID, member)
	if err != nil {
		return false, fmt.Errorf("failed to remove %d from %s of user %d: %w", member, list, userID, err)
	}

	return cmd.RowsAffected() > 0, nil
}

func (w *relationWriter) CompareAndSwap(ctx context.Context, userID int64, list model.ListKind, prev, next model.IDList) (bool, error) {
	col, err := listColumn(list)
	if err != nil {
		return false, err
	}

	prevJSON, err := json.Marshal(prev)
	if err != nil {
		return false, fmt.Errorf("failed to encode previous %s: %w", list, err)
	}
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode next %s: %w", list, err)
	}

	query := fmt.Sprintf(`UPDATE users SET %[1]s = $3::jsonb WHERE id = $1 AND %[1]s = $2::jsonb`, col)

	cmd, err := w.q.Exec(ctx, query, userID, string(prevJSON), string(nextJSON))
	if err != nil {
		return false, fmt.Errorf("failed to swap %s of user %d: %w", list, userID, err)
	}

	return cmd.RowsAffected() > 0, nil
}

func (w *relationWriter) LockFollowing(ctx context.Context, userID int64) (model.IDList, error) {
	query := `SELECT siguiendo FROM users WHERE id = $1 FOR UPDATE`

	var raw []byte
	if err := w.q.QueryRow(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock following of user %d: %w", userID, err)
	}

	following, err := model.ParseIDList(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode following of user %d: %w", userID, err)
	}

	return following, nil
}
