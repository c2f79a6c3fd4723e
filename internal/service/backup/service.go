package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
)

// Service snapshots documents before destructive writes and can push a
// snapshot back into its original collection.
type Service struct {
	repo   repository.BackupRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(repo repository.BackupRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

type identified struct {
	ID string `json:"id"`
}

// Create serializes the documents, wraps a single one into a one-element
// sequence, and persists a write-once record with its byte size and a
// human-readable KB figure.
func (s Service) Create(ctx context.Context, collectionName string, docs []any, reason string) (*domain.BackupRecord, error) {
	if reason == "" {
		reason = "manual"
	}
	raw := make([]json.RawMessage, 0, len(docs))
	ids := make([]string, 0, len(docs))
	size := int64(2) // brackets of the serialized sequence
	for i, doc := range docs {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode document for backup: %w", err)
		}
		raw = append(raw, encoded)
		size += int64(len(encoded))
		if i > 0 {
			size++ // separating comma
		}
		var id identified
		if err := json.Unmarshal(encoded, &id); err == nil && id.ID != "" {
			ids = append(ids, id.ID)
		}
	}

	record := &domain.BackupRecord{
		ID:             uuid.NewString(),
		CollectionName: collectionName,
		Data:           raw,
		DeletedItemIDs: ids,
		BackupReason:   reason,
		BackupSize:     size,
		SizeFormatted:  fmt.Sprintf("%.2f KB", float64(size)/1024),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateBackup(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("backup created",
		"backup_id", record.ID,
		"collection", collectionName,
		"documents", len(raw),
		"size", record.SizeFormatted)
	return record, nil
}

// Restore loads a backup record, verifies it belongs to the requested
// collection and bulk-inserts its documents back into the live collection.
// Id collisions are not checked; a duplicate-key failure surfaces as a
// generic persistence error.
func (s Service) Restore(ctx context.Context, collectionName, backupID string) ([]json.RawMessage, error) {
	if collectionName == "" || backupID == "" {
		return nil, apierror.BadRequest("Missing required fields!",
			"Collection name and backup ID are mandatory!",
			"Provide both collectionName and backupId in the request body!")
	}
	record, err := s.repo.GetBackupByID(ctx, backupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Backup not found!",
				"No backup exists with the given ID!",
				"Check the backup ID and try again!")
		}
		return nil, err
	}
	if record.CollectionName != collectionName {
		return nil, apierror.NotFound("Backup not found!",
			"The backup does not belong to the requested collection!",
			"Verify the collection name matches the backup record!")
	}
	if err := s.repo.RestoreDocuments(ctx, collectionName, record.Data); err != nil {
		return nil, err
	}
	s.logger.Info("backup restored",
		"backup_id", record.ID,
		"collection", collectionName,
		"documents", len(record.Data))
	return record.Data, nil
}

// Page describes one page of backup records.
type Page struct {
	Records      []domain.BackupRecord
	TotalRecords int
	CurrentPage  int
	TotalPages   int
	PerPage      int
}

// List pages through backup records with an optional collection filter.
// An empty page is reported as not found.
func (s Service) List(ctx context.Context, page, limit int, collectionName string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	records, total, err := s.repo.ListBackups(ctx, collectionName, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		reason := "No records available"
		solution := "Check if any backups exist in the system"
		if collectionName != "" {
			reason = fmt.Sprintf("No records found for collection: %s", collectionName)
			solution = "Verify the collection name or check backup data"
		}
		return nil, apierror.NotFound("Records Not Found!", reason, solution)
	}
	return &Page{
		Records:      records,
		TotalRecords: total,
		CurrentPage:  page,
		TotalPages:   (total + limit - 1) / limit,
		PerPage:      limit,
	}, nil
}
