package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
)

// CreateBackup persists a write-once backup record.
func (r *Repository) CreateBackup(ctx context.Context, record *domain.BackupRecord) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("encode backup data: %w", err)
	}
	ids, err := json.Marshal(record.DeletedItemIDs)
	if err != nil {
		return fmt.Errorf("encode deleted ids: %w", err)
	}
	const query = `INSERT INTO backups (id, collection_name, data, deleted_item_ids, backup_reason, backup_size, size_formatted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.pool.Exec(ctx, query, record.ID, record.CollectionName, data, ids, record.BackupReason, record.BackupSize, record.SizeFormatted, record.CreatedAt)
	return mapError(err)
}

const backupColumns = `id, collection_name, data, deleted_item_ids, backup_reason, backup_size, size_formatted, created_at`

func scanBackup(row pgx.Row) (*domain.BackupRecord, error) {
	var rec domain.BackupRecord
	var data, ids []byte
	if err := row.Scan(&rec.ID, &rec.CollectionName, &data, &ids, &rec.BackupReason, &rec.BackupSize, &rec.SizeFormatted, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return nil, fmt.Errorf("decode backup data: %w", err)
	}
	if err := json.Unmarshal(ids, &rec.DeletedItemIDs); err != nil {
		return nil, fmt.Errorf("decode deleted ids: %w", err)
	}
	return &rec, nil
}

// GetBackupByID loads one backup record.
func (r *Repository) GetBackupByID(ctx context.Context, backupID string) (*domain.BackupRecord, error) {
	query := `SELECT ` + backupColumns + ` FROM backups WHERE id = $1`
	return scanBackup(r.pool.QueryRow(ctx, query, backupID))
}

// ListBackups pages through backup records, optionally filtered by
// collection name, newest first.
func (r *Repository) ListBackups(ctx context.Context, collectionName string, offset, limit int) ([]domain.BackupRecord, int, error) {
	var total int
	if collectionName != "" {
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(1) FROM backups WHERE collection_name = $1`, collectionName).Scan(&total); err != nil {
			return nil, 0, err
		}
	} else {
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(1) FROM backups`).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	var rows pgx.Rows
	var err error
	if collectionName != "" {
		query := `SELECT ` + backupColumns + ` FROM backups WHERE collection_name = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`
		rows, err = r.pool.Query(ctx, query, collectionName, offset, limit)
	} else {
		query := `SELECT ` + backupColumns + ` FROM backups ORDER BY created_at DESC OFFSET $1 LIMIT $2`
		rows, err = r.pool.Query(ctx, query, offset, limit)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []domain.BackupRecord
	for rows.Next() {
		rec, err := scanBackup(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	return records, total, rows.Err()
}

// RestoreDocuments bulk-inserts backed-up documents into the live
// collection they came from. Id collisions with live rows are not checked
// here; the resulting duplicate-key error surfaces to the caller.
func (r *Repository) RestoreDocuments(ctx context.Context, collectionName string, docs []json.RawMessage) error {
	switch collectionName {
	case domain.CollectionTeams:
		return r.restoreTeams(ctx, docs)
	case domain.CollectionProjects:
		return r.restoreProjects(ctx, docs)
	case domain.CollectionUsers:
		return r.restoreUsers(ctx, docs)
	default:
		return repository.ErrNotFound
	}
}

func (r *Repository) restoreTeams(ctx context.Context, docs []json.RawMessage) error {
	for _, doc := range docs {
		var team domain.Team
		if err := json.Unmarshal(doc, &team); err != nil {
			return fmt.Errorf("decode team document: %w", err)
		}
		if err := r.CreateTeam(ctx, &team); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) restoreProjects(ctx context.Context, docs []json.RawMessage) error {
	for _, doc := range docs {
		var project domain.Project
		if err := json.Unmarshal(doc, &project); err != nil {
			return fmt.Errorf("decode project document: %w", err)
		}
		if err := r.CreateProject(ctx, &project); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) restoreUsers(ctx context.Context, docs []json.RawMessage) error {
	for _, doc := range docs {
		var user domain.User
		if err := json.Unmarshal(doc, &user); err != nil {
			return fmt.Errorf("decode user document: %w", err)
		}
		if err := r.CreateUser(ctx, &user); err != nil {
			return err
		}
	}
	return nil
}
