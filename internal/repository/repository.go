package repository

import (
	"context"
	"encoding/json"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
)

// UserRepository persists users and their membership lists.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	AppendMembership(ctx context.Context, userID string, m domain.Membership) error
	RemoveMembership(ctx context.Context, userID, teamID string) error
}

// TeamRepository manages teams. DeleteTeamCascade removes the team and
// strips its membership entry from every user atomically.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team *domain.Team) error
	GetTeamByID(ctx context.Context, teamID string) (*domain.Team, error)
	GetTeamByNameAndCreator(ctx context.Context, name, creatorID string) (*domain.Team, error)
	UpdateTeam(ctx context.Context, team *domain.Team) error
	ListTeamsByIDs(ctx context.Context, teamIDs []string, offset, limit int) ([]domain.Team, int, error)
	DeleteTeamCascade(ctx context.Context, teamID string) error
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error)
	GetProjectByNameAndTeam(ctx context.Context, name, teamID string) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, projectID string) error
	ListProjectsByTeams(ctx context.Context, teamIDs []string, offset, limit int) ([]domain.Project, int, error)
}

// BackupRepository stores write-once backup records and can push their
// documents back into a live collection.
type BackupRepository interface {
	CreateBackup(ctx context.Context, record *domain.BackupRecord) error
	GetBackupByID(ctx context.Context, backupID string) (*domain.BackupRecord, error)
	ListBackups(ctx context.Context, collectionName string, offset, limit int) ([]domain.BackupRecord, int, error)
	RestoreDocuments(ctx context.Context, collectionName string, docs []json.RawMessage) error
}
