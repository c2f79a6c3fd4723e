package backup

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
)

type stubBackupRepository struct {
	records  map[string]domain.BackupRecord
	restored map[string][]json.RawMessage
}

func newStubBackupRepository() *stubBackupRepository {
	return &stubBackupRepository{
		records:  map[string]domain.BackupRecord{},
		restored: map[string][]json.RawMessage{},
	}
}

func (s *stubBackupRepository) CreateBackup(ctx context.Context, record *domain.BackupRecord) error {
	s.records[record.ID] = *record
	return nil
}

func (s *stubBackupRepository) GetBackupByID(ctx context.Context, backupID string) (*domain.BackupRecord, error) {
	if record, ok := s.records[backupID]; ok {
		return &record, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubBackupRepository) ListBackups(ctx context.Context, collectionName string, offset, limit int) ([]domain.BackupRecord, int, error) {
	var matched []domain.BackupRecord
	for _, record := range s.records {
		if collectionName == "" || record.CollectionName == collectionName {
			matched = append(matched, record)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *stubBackupRepository) RestoreDocuments(ctx context.Context, collectionName string, docs []json.RawMessage) error {
	s.restored[collectionName] = append(s.restored[collectionName], docs...)
	return nil
}

func newService(repo *stubBackupRepository) Service {
	return New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateRecordsSizeAndIDs(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)
	team := domain.Team{ID: "t1", Name: "core", CreatedBy: "user-1"}

	record, err := svc.Create(context.Background(), domain.CollectionTeams, []any{team}, "Team deletion")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionTeams, record.CollectionName)
	assert.Equal(t, []string{"t1"}, record.DeletedItemIDs)
	assert.Equal(t, "Team deletion", record.BackupReason)
	require.Len(t, record.Data, 1)

	encoded, err := json.Marshal(team)
	require.NoError(t, err)
	assert.Equal(t, int64(len(encoded)+2), record.BackupSize)
	assert.Regexp(t, `^\d+\.\d{2} KB$`, record.SizeFormatted)
}

func TestCreateDefaultsReason(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)

	record, err := svc.Create(context.Background(), domain.CollectionUsers, []any{domain.User{ID: "u1"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "manual", record.BackupReason)
}

func TestRestoreRoundTrip(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)
	team := domain.Team{ID: "t1", Name: "core", CreatedBy: "user-1", CreatedAt: time.Now().UTC()}

	record, err := svc.Create(context.Background(), domain.CollectionTeams, []any{team}, "Team deletion")
	require.NoError(t, err)

	restored, err := svc.Restore(context.Background(), domain.CollectionTeams, record.ID)
	require.NoError(t, err)
	require.Len(t, restored, 1)

	var revived domain.Team
	require.NoError(t, json.Unmarshal(restored[0], &revived))
	assert.Equal(t, team.ID, revived.ID)
	assert.Equal(t, team.Name, revived.Name)
	assert.Len(t, repo.restored[domain.CollectionTeams], 1)
}

func TestRestoreRejectsCollectionMismatch(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)

	record, err := svc.Create(context.Background(), domain.CollectionTeams, []any{domain.Team{ID: "t1"}}, "")
	require.NoError(t, err)

	_, err = svc.Restore(context.Background(), domain.CollectionProjects, record.ID)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = svc.Restore(context.Background(), domain.CollectionTeams, "missing")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)

	_, err := svc.Create(context.Background(), domain.CollectionTeams, []any{domain.Team{ID: "t1"}}, "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), domain.CollectionProjects, []any{domain.Project{ID: "p1"}}, "")
	require.NoError(t, err)

	page, err := svc.List(context.Background(), 1, 10, domain.CollectionTeams)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalRecords)
	assert.Equal(t, 1, page.TotalPages)

	_, err = svc.List(context.Background(), 1, 10, "Unknown")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Records Not Found!", apiErr.Message)
}

func TestWorkerPersistsEnqueuedSnapshot(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)
	worker := NewWorker(svc, 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	worker.Run()

	worker.Enqueue(domain.CollectionTeams, []any{domain.Team{ID: "t1"}}, "Team deletion")
	worker.Close()

	require.Len(t, repo.records, 1)
	for _, record := range repo.records {
		assert.Equal(t, domain.CollectionTeams, record.CollectionName)
		assert.Equal(t, []string{"t1"}, record.DeletedItemIDs)
	}
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	repo := newStubBackupRepository()
	svc := newService(repo)
	// no Run: the queue never drains, so a second enqueue overflows
	worker := NewWorker(svc, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	worker.Enqueue(domain.CollectionTeams, []any{domain.Team{ID: "t1"}}, "Team deletion")
	worker.Enqueue(domain.CollectionTeams, []any{domain.Team{ID: "t2"}}, "Team deletion")

	worker.Run()
	worker.Close()
	require.Len(t, repo.records, 1)
}
