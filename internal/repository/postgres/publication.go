package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/socialgraph-server/internal/model"
)

var _ model.PublicationStore = (*PublicationRepository)(nil)

type PublicationRepository struct {
	db *Connection
}

func NewPublicationRepository(db *Connection) *PublicationRepository {
	return &PublicationRepository{
		db: db,
	}
}

// ListPublished returns the user's published items, most recent first.
func (r *PublicationRepository) ListPublished(ctx context.Context, userID int64) ([]model.Publication, error) {
	query := `
		SELECT id, descripcion, nombre_archivo, tipo_archivo, fecha
		FROM publications
		WHERE id_usuario = $1 AND estado_publicacion = $2
		ORDER BY fecha DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID, model.PublicationStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("failed to get publications of user %d: %w", userID, err)
	}
	defer rows.Close()

	publications := make([]model.Publication, 0)
	for rows.Next() {
		var p model.Publication
		if err := rows.Scan(&p.ID, &p.Description, &p.FileName, &p.FileType, &p.Date); err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}
		publications = append(publications, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate publications: %w", err)
	}

	return publications, nil
}
