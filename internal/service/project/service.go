package project

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/authz"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
)

// Service handles project workflows.
type Service struct {
	projects repository.ProjectRepository
	teams    repository.TeamRepository
	logger   *slog.Logger
}

// New constructs a Service.
func New(projects repository.ProjectRepository, teams repository.TeamRepository, logger *slog.Logger) Service {
	return Service{projects: projects, teams: teams, logger: logger}
}

func projectNotFound() *apierror.Error {
	return apierror.NotFound("Project not found!",
		"The specified project does not exist!",
		"Check the project ID and try again!")
}

// Create adds a project to a team the actor administers.
func (s Service) Create(ctx context.Context, actor *domain.User, name, description, teamID string) (*domain.Project, error) {
	if name == "" || teamID == "" {
		return nil, apierror.BadRequest("Missing required fields!",
			"Project name and team ID are mandatory!",
			"Provide all required fields in the request body!")
	}
	if _, err := s.teams.GetTeamByID(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Team not found!",
				"The specified team does not exist!",
				"Check the team ID and try again!")
		}
		return nil, err
	}
	if err := authz.CanCreateProject(actor, teamID); err != nil {
		return nil, err
	}
	if existing, err := s.projects.GetProjectByNameAndTeam(ctx, name, teamID); err == nil && existing != nil {
		return nil, apierror.Conflict("Project already exists!",
			"A project with this name already exists in the team!",
			"Choose a different project name!")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		TeamID:      teamID,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("Project already exists!",
				"A project with this name already exists in the team!",
				"Choose a different project name!")
		}
		return nil, err
	}
	s.logger.Info("project created", "project_id", project.ID, "team_id", teamID, "created_by", actor.ID)
	return project, nil
}

// Update changes name or description; at least one must be provided and
// the id must be a well-formed uuid.
func (s Service) Update(ctx context.Context, actor *domain.User, projectID string, name, description *string) (*domain.Project, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, apierror.BadRequest("Invalid project ID",
			"The provided project ID is malformed",
			"Provide a valid project ID")
	}
	if name == nil && description == nil {
		return nil, apierror.BadRequest("No updates provided",
			"Neither name nor description was provided",
			"Provide at least one field to update")
	}
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Project not found",
				"Project or its associated team doesn't exist",
				"Verify the project ID and try again")
		}
		return nil, err
	}
	if err := authz.CanManageProject(actor, project); err != nil {
		return nil, err
	}
	if name != nil {
		project.Name = *name
	}
	if description != nil {
		project.Description = *description
	}
	project.UpdatedAt = time.Now().UTC()
	if err := s.projects.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("Project already exists!",
				"A project with this name already exists in the team!",
				"Choose a different project name!")
		}
		return nil, err
	}
	s.logger.Info("project updated", "project_id", project.ID, "updated_by", actor.ID)
	return project, nil
}

// Delete removes a project the actor administers.
func (s Service) Delete(ctx context.Context, actor *domain.User, projectID string) error {
	if projectID == "" {
		return apierror.BadRequest("Missing project ID!",
			"Project ID is required!",
			"Provide a valid project ID in the request body!")
	}
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return projectNotFound()
		}
		return err
	}
	if err := authz.CanManageProject(actor, project); err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", projectID, "deleted_by", actor.ID)
	return nil
}

// Page describes one page of projects across the actor's teams.
type Page struct {
	Projects   []domain.Project
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// List pages through projects of every team the actor belongs to, newest
// first. An actor with no teams, or an empty page, is a not-found result.
func (s Service) List(ctx context.Context, actor *domain.User, page, limit int) (*Page, error) {
	if err := authz.CanListProjects(actor); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	teamIDs := actor.TeamIDs()
	if len(teamIDs) == 0 {
		return nil, apierror.NotFound("No teams found",
			"User is not part of any teams",
			"Join a team first to see projects")
	}
	projects, total, err := s.projects.ListProjectsByTeams(ctx, teamIDs, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, apierror.NotFound("No projects found",
			"No projects exist for your teams",
			"Create a project in one of your teams")
	}
	return &Page{
		Projects:   projects,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}
