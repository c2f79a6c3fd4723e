package project

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
)

type stubProjectRepository struct {
	projects map[string]domain.Project
	deleted  []string
}

func newStubProjectRepository() *stubProjectRepository {
	return &stubProjectRepository{projects: map[string]domain.Project{}}
}

func (s *stubProjectRepository) CreateProject(ctx context.Context, project *domain.Project) error {
	for _, existing := range s.projects {
		if existing.Name == project.Name && existing.TeamID == project.TeamID {
			return repository.ErrDuplicate
		}
	}
	s.projects[project.ID] = *project
	return nil
}

func (s *stubProjectRepository) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	if project, ok := s.projects[projectID]; ok {
		return &project, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubProjectRepository) GetProjectByNameAndTeam(ctx context.Context, name, teamID string) (*domain.Project, error) {
	for _, project := range s.projects {
		if project.Name == name && project.TeamID == teamID {
			return &project, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubProjectRepository) UpdateProject(ctx context.Context, project *domain.Project) error {
	if _, ok := s.projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	s.projects[project.ID] = *project
	return nil
}

func (s *stubProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	if _, ok := s.projects[projectID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.projects, projectID)
	s.deleted = append(s.deleted, projectID)
	return nil
}

func (s *stubProjectRepository) ListProjectsByTeams(ctx context.Context, teamIDs []string, offset, limit int) ([]domain.Project, int, error) {
	var matched []domain.Project
	for _, project := range s.projects {
		for _, teamID := range teamIDs {
			if project.TeamID == teamID {
				matched = append(matched, project)
				break
			}
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

type stubTeamRepository struct {
	teams map[string]domain.Team
}

func (s *stubTeamRepository) CreateTeam(ctx context.Context, team *domain.Team) error { return nil }

func (s *stubTeamRepository) GetTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	if team, ok := s.teams[teamID]; ok {
		return &team, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubTeamRepository) GetTeamByNameAndCreator(ctx context.Context, name, creatorID string) (*domain.Team, error) {
	return nil, repository.ErrNotFound
}

func (s *stubTeamRepository) UpdateTeam(ctx context.Context, team *domain.Team) error { return nil }

func (s *stubTeamRepository) ListTeamsByIDs(ctx context.Context, teamIDs []string, offset, limit int) ([]domain.Team, int, error) {
	return nil, 0, nil
}

func (s *stubTeamRepository) DeleteTeamCascade(ctx context.Context, teamID string) error { return nil }

func newService(projects *stubProjectRepository, teams map[string]domain.Team) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(projects, &stubTeamRepository{teams: teams}, log)
}

// platformAdmin holds the platform-wide Admin grant plus the Admin role
// inside the given teams.
func platformAdmin(id string, teamIDs ...string) *domain.User {
	actor := &domain.User{ID: id, Teams: []domain.Membership{{Role: domain.RoleAdmin}}}
	for _, teamID := range teamIDs {
		actor.Teams = append(actor.Teams, domain.Membership{TeamID: teamID, Role: domain.RoleAdmin})
	}
	return actor
}

func TestCreateStoresProject(t *testing.T) {
	projects := newStubProjectRepository()
	svc := newService(projects, map[string]domain.Team{"t1": {ID: "t1"}})
	actor := platformAdmin("user-1", "t1")

	created, err := svc.Create(context.Background(), actor, "billing", "invoices", "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", created.TeamID)
	assert.Equal(t, "user-1", created.CreatedBy)
	_, ok := projects.projects[created.ID]
	assert.True(t, ok)
}

func TestCreateDeniedWithoutPlatformGrant(t *testing.T) {
	svc := newService(newStubProjectRepository(), map[string]domain.Team{"t1": {ID: "t1"}})
	// team-scoped Admin only: every membership names a team
	actor := &domain.User{ID: "user-1", Teams: []domain.Membership{{TeamID: "t1", Role: domain.RoleAdmin}}}

	_, err := svc.Create(context.Background(), actor, "billing", "", "t1")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Only Admins can create projects!", apiErr.Reason)
}

func TestCreateDeniedWithoutTeamRole(t *testing.T) {
	svc := newService(newStubProjectRepository(), map[string]domain.Team{"t1": {ID: "t1"}})
	actor := platformAdmin("user-1")

	_, err := svc.Create(context.Background(), actor, "billing", "", "t1")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Only team admins can create projects!", apiErr.Reason)
}

func TestCreateChecksTeamBeforeAuthorization(t *testing.T) {
	svc := newService(newStubProjectRepository(), map[string]domain.Team{})
	actor := &domain.User{ID: "user-1", Teams: []domain.Membership{{TeamID: "t1", Role: domain.RoleMember}}}

	_, err := svc.Create(context.Background(), actor, "billing", "", "missing")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Team not found!", apiErr.Message)
}

func TestCreateRejectsDuplicateNameInTeam(t *testing.T) {
	projects := newStubProjectRepository()
	svc := newService(projects, map[string]domain.Team{"t1": {ID: "t1"}})
	actor := platformAdmin("user-1", "t1")

	_, err := svc.Create(context.Background(), actor, "billing", "", "t1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actor, "billing", "", "t1")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Project already exists!", apiErr.Message)
}

func TestUpdateRejectsMalformedID(t *testing.T) {
	svc := newService(newStubProjectRepository(), nil)
	actor := platformAdmin("user-1", "t1")

	name := "renamed"
	_, err := svc.Update(context.Background(), actor, "not-a-uuid", &name, nil)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid project ID", apiErr.Message)
}

func TestUpdateRequiresAtLeastOneField(t *testing.T) {
	svc := newService(newStubProjectRepository(), nil)
	actor := platformAdmin("user-1", "t1")

	_, err := svc.Update(context.Background(), actor, uuid.NewString(), nil, nil)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "No updates provided", apiErr.Message)
}

func TestUpdateAppliesPartialChange(t *testing.T) {
	projects := newStubProjectRepository()
	id := uuid.NewString()
	projects.projects[id] = domain.Project{ID: id, Name: "billing", Description: "old", TeamID: "t1"}
	svc := newService(projects, nil)
	actor := platformAdmin("user-1", "t1")

	description := "new"
	updated, err := svc.Update(context.Background(), actor, id, nil, &description)
	require.NoError(t, err)
	assert.Equal(t, "billing", updated.Name)
	assert.Equal(t, "new", updated.Description)
}

func TestDeleteRemovesProject(t *testing.T) {
	projects := newStubProjectRepository()
	projects.projects["p1"] = domain.Project{ID: "p1", Name: "billing", TeamID: "t1"}
	svc := newService(projects, nil)
	actor := platformAdmin("user-1", "t1")

	require.NoError(t, svc.Delete(context.Background(), actor, "p1"))
	assert.Equal(t, []string{"p1"}, projects.deleted)
}

func TestListRequiresTeamsAndResults(t *testing.T) {
	projects := newStubProjectRepository()
	svc := newService(projects, nil)

	noTeams := &domain.User{ID: "user-1", Teams: []domain.Membership{{Role: domain.RoleAdmin}}}
	_, err := svc.List(context.Background(), noTeams, 1, 10)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "No teams found", apiErr.Message)

	withTeam := platformAdmin("user-1", "t1")
	_, err = svc.List(context.Background(), withTeam, 1, 10)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No projects found", apiErr.Message)

	projects.projects["p1"] = domain.Project{ID: "p1", Name: "billing", TeamID: "t1"}
	page, err := svc.List(context.Background(), withTeam, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 100, page.Limit)
}
