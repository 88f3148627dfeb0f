package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// ==================== Folder Store ====================

// folderStore implements driven.FolderStore.
type folderStore struct {
	store *Store
}

var _ driven.FolderStore = (*folderStore)(nil)

// Save stores or updates a folder.
func (s *folderStore) Save(ctx context.Context, folder domain.Folder) error {
	if folder.ID == "" {
		return domain.ErrInvalidInput
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO folders (id, name, path, media_type, topic, syncing, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			media_type = excluded.media_type,
			topic = excluded.topic,
			syncing = excluded.syncing
	`, folder.ID, folder.Name, folder.Path, string(folder.MediaType),
		nullString(folder.Topic), boolToInt(folder.Syncing), formatTime(folder.CreatedAt))

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("saving folder: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("saving folder: %w", err)
	}
	return nil
}

// Get retrieves a folder by ID.
func (s *folderStore) Get(ctx context.Context, id string) (*domain.Folder, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, path, media_type, topic, syncing, created_at
		FROM folders WHERE id = ?
	`, id)

	folder, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning folder: %w", err)
	}
	return folder, nil
}

// List returns all folders ordered by name.
func (s *folderStore) List(ctx context.Context) ([]domain.Folder, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, path, media_type, topic, syncing, created_at
		FROM folders ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder //nolint:prealloc // size unknown from query
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating folders: %w", err)
	}

	return folders, nil
}

// Delete removes a folder.
func (s *folderStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*domain.Folder, error) {
	var folder domain.Folder
	var mediaType, createdAt string
	var topic sql.NullString
	var syncing int

	if err := row.Scan(&folder.ID, &folder.Name, &folder.Path, &mediaType,
		&topic, &syncing, &createdAt); err != nil {
		return nil, err
	}

	folder.MediaType = domain.MediaType(mediaType)
	folder.Topic = topic.String
	folder.Syncing = syncing == 1
	folder.CreatedAt = parseTime(createdAt)

	return &folder, nil
}

// ==================== Sent Ledger ====================

// sentLedger implements driven.SentLedger.
type sentLedger struct {
	store *Store
}

var _ driven.SentLedger = (*sentLedger)(nil)

// IsSent reports whether the key was marked sent.
func (s *sentLedger) IsSent(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sent_files WHERE key = ?", key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking sent file: %w", err)
	}
	return n > 0, nil
}

// MarkSent records the key as sent.
func (s *sentLedger) MarkSent(ctx context.Context, key string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sent_files (key, sent_at) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET sent_at = excluded.sent_at
	`, key, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("marking file sent: %w", err)
	}
	return nil
}

// ClearPrefix removes all keys starting with prefix.
func (s *sentLedger) ClearPrefix(ctx context.Context, prefix string) (int, error) {
	// substr avoids LIKE wildcards in folder IDs and file names
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM sent_files WHERE substr(key, 1, ?) = ?", len(prefix), prefix)
	if err != nil {
		return 0, fmt.Errorf("clearing sent files: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing sent files: %w", err)
	}
	return int(n), nil
}
