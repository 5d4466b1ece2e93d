package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cinemaadmin/backend/internal/models"
)

// ErrMediaItemNotFound is returned when no media item has the requested ID
var ErrMediaItemNotFound = errors.New("media item not found")

// mediaItemRepository implements media item persistence on MySQL
type mediaItemRepository struct {
	db *sql.DB
}

// NewMediaItemRepository creates a new media item repository
func NewMediaItemRepository(db *sql.DB) *mediaItemRepository {
	return &mediaItemRepository{
		db: db,
	}
}

// List retrieves media items with an optional category filter and pagination
func (r *mediaItemRepository) List(ctx context.Context, filter models.MediaListFilter) ([]models.MediaItem, error) {
	var whereClauses []string
	var args []any

	if filter.Category != "" {
		whereClauses = append(whereClauses, "category = ?")
		args = append(args, filter.Category)
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	offset := (filter.Page - 1) * filter.Count

	query := fmt.Sprintf(`
		SELECT id, title, description, category, genre, duration, video_file_name, thumbnail_url, created_at, updated_at
		FROM media_items
		%s
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	args = append(args, filter.Count, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items: %w", err)
	}
	defer rows.Close()

	items := make([]models.MediaItem, 0)
	for rows.Next() {
		var item models.MediaItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Genre,
			&item.Duration,
			&item.VideoFileName,
			&item.ThumbnailURL,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media items: %w", err)
	}

	return items, nil
}

// GetByID retrieves a media item with its actor IDs
func (r *mediaItemRepository) GetByID(ctx context.Context, id int) (*models.MediaItem, error) {
	query := `
		SELECT id, title, description, category, genre, duration, video_file_name, thumbnail_url, created_at, updated_at
		FROM media_items
		WHERE id = ?
		LIMIT 1
	`

	var item models.MediaItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.Genre,
		&item.Duration,
		&item.VideoFileName,
		&item.ThumbnailURL,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMediaItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media item by id: %w", err)
	}

	actorIDs, err := r.actorIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	item.ActorIDs = actorIDs

	return &item, nil
}

func (r *mediaItemRepository) actorIDs(ctx context.Context, mediaID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT actor_id FROM media_actors WHERE media_id = ? ORDER BY actor_id", mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media actors: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan actor id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media actors: %w", err)
	}
	return ids, nil
}

// Create inserts a media item and sets its ID
func (r *mediaItemRepository) Create(ctx context.Context, item *models.MediaItem) error {
	query := `
		INSERT INTO media_items (title, description, category, genre, duration, video_file_name, thumbnail_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Title,
		item.Description,
		item.Category,
		item.Genre,
		item.Duration,
		item.VideoFileName,
		item.ThumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create media item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = int(id)
	return nil
}

// Update overwrites every editable column of a media item
func (r *mediaItemRepository) Update(ctx context.Context, item *models.MediaItem) error {
	query := `
		UPDATE media_items
		SET title = ?, description = ?, category = ?, genre = ?, duration = ?, video_file_name = ?, thumbnail_url = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Title,
		item.Description,
		item.Category,
		item.Genre,
		item.Duration,
		item.VideoFileName,
		item.ThumbnailURL,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update media item: %w", err)
	}

	// MySQL reports 0 affected rows when nothing changed, so existence is checked separately
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		exists, err := r.exists(ctx, item.ID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrMediaItemNotFound
		}
	}

	return nil
}

func (r *mediaItemRepository) exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM media_items WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check media item existence: %w", err)
	}
	return exists, nil
}

// ReplaceActors deletes every actor association of mediaID and inserts one row per actor ID
func (r *mediaItemRepository) ReplaceActors(ctx context.Context, mediaID int, actorIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM media_actors WHERE media_id = ?", mediaID); err != nil {
		return fmt.Errorf("failed to delete media actors: %w", err)
	}

	unique := dedupe(actorIDs)
	if len(unique) > 0 {
		placeholders := make([]string, 0, len(unique))
		args := make([]any, 0, len(unique)*2)
		for _, actorID := range unique {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, mediaID, actorID)
		}

		query := fmt.Sprintf(`
			INSERT INTO media_actors (media_id, actor_id)
			VALUES %s
		`, strings.Join(placeholders, ", "))

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert media actors: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a media item and its actor associations
func (r *mediaItemRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM media_actors WHERE media_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete media actors: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM media_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete media item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrMediaItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
