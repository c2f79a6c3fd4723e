package team

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

// BackupEnqueuer hands snapshots to a background worker. The backup is
// fire-and-forget: enqueueing never blocks or fails the delete.
type BackupEnqueuer interface {
	Enqueue(collectionName string, docs []any, reason string)
}

// Service handles team workflows.
type Service struct {
	teams   repository.TeamRepository
	users   repository.UserRepository
	backups BackupEnqueuer
	logger  *slog.Logger
}

// New constructs a Service.
func New(teams repository.TeamRepository, users repository.UserRepository, backups BackupEnqueuer, logger *slog.Logger) Service {
	return Service{teams: teams, users: users, backups: backups, logger: logger}
}

func teamNotFound() *apierror.Error {
	return apierror.NotFound("Team not found!",
		"The specified team does not exist!",
		"Check the team ID and try again!")
}

func userNotFound() *apierror.Error {
	return apierror.NotFound("User not found!",
		"The specified user does not exist!",
		"Check the user ID and try again!")
}

// Create registers a team and joins the creator as its Admin.
func (s Service) Create(ctx context.Context, actor *domain.User, name, description string) (*domain.Team, error) {
	if err := authz.CanCreateTeam(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apierror.BadRequest("Missing required fields!",
			"Team name is mandatory!",
			"Provide a team name in the request body!")
	}
	if existing, err := s.teams.GetTeamByNameAndCreator(ctx, name, actor.ID); err == nil && existing != nil {
		return nil, apierror.Conflict("Team already exists!",
			"A team with this name already exists for this user!",
			"Choose a different team name!")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	team := &domain.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.teams.CreateTeam(ctx, team); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("Team already exists!",
				"A team with this name already exists for this user!",
				"Choose a different team name!")
		}
		return nil, err
	}
	if err := s.users.AppendMembership(ctx, actor.ID, domain.Membership{TeamID: team.ID, Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	s.logger.Info("team created", "team_id", team.ID, "created_by", actor.ID)
	return team, nil
}

// Update renames or redescribes a team. Only the fields provided change.
func (s Service) Update(ctx context.Context, actor *domain.User, teamID string, name, description *string) (*domain.Team, error) {
	if teamID == "" {
		return nil, apierror.BadRequest("Missing team ID!",
			"Team ID is required in the URL!",
			"Provide a valid team ID in the URL (e.g., /team/update/:id)")
	}
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, teamNotFound()
		}
		return nil, err
	}
	if err := authz.CanManageTeam(actor, team); err != nil {
		return nil, err
	}
	if name != nil {
		team.Name = *name
	}
	if description != nil {
		team.Description = *description
	}
	team.UpdatedAt = time.Now().UTC()
	if err := s.teams.UpdateTeam(ctx, team); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("Team already exists!",
				"A team with this name already exists for this user!",
				"Choose a different team name!")
		}
		return nil, err
	}
	s.logger.Info("team updated", "team_id", team.ID, "updated_by", actor.ID)
	return team, nil
}

// Delete removes the team and every membership referencing it in one
// transaction, then hands a snapshot of the team to the backup worker.
// The snapshot is outside the transaction's atomicity boundary.
func (s Service) Delete(ctx context.Context, actor *domain.User, teamID string) error {
	if teamID == "" {
		return apierror.BadRequest("Missing team ID!",
			"Team ID is required in the URL!",
			"Provide a valid team ID in the URL")
	}
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return teamNotFound()
		}
		return err
	}
	if err := authz.CanManageTeam(actor, team); err != nil {
		return err
	}
	if err := s.teams.DeleteTeamCascade(ctx, teamID); err != nil {
		return apierror.Internal("Team deletion failed!",
			err.Error(),
			"Please try again later")
	}
	s.backups.Enqueue(domain.CollectionTeams, []any{team}, "Team deletion")
	s.logger.Info("team deleted", "team_id", teamID, "deleted_by", actor.ID)
	return nil
}

// AddMember joins the target user to the team with the given role.
func (s Service) AddMember(ctx context.Context, actor *domain.User, teamID, targetUserID string, role domain.Role) error {
	if teamID == "" || targetUserID == "" || role == "" {
		return apierror.BadRequest("Missing required fields!",
			"Team ID, user ID, and role are mandatory!",
			"Provide all required fields in the request body!")
	}
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return teamNotFound()
		}
		return err
	}
	target, err := s.users.GetUserByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return userNotFound()
		}
		return err
	}
	if err := authz.CanAddMember(actor, team, target, role); err != nil {
		return err
	}
	if err := s.users.AppendMembership(ctx, targetUserID, domain.Membership{TeamID: teamID, Role: role}); err != nil {
		return err
	}
	s.logger.Info("member added", "team_id", teamID, "user_id", targetUserID, "role", role)
	return nil
}

// RemoveMember pulls the team's membership entry from the target user.
func (s Service) RemoveMember(ctx context.Context, actor *domain.User, teamID, targetUserID string) error {
	if teamID == "" || targetUserID == "" {
		return apierror.BadRequest("Missing required fields!",
			"Team ID and user ID are mandatory!",
			"Provide all required fields in the request body!")
	}
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return teamNotFound()
		}
		return err
	}
	target, err := s.users.GetUserByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return userNotFound()
		}
		return err
	}
	if err := authz.CanRemoveMember(actor, team, target); err != nil {
		return err
	}
	if err := s.users.RemoveMembership(ctx, targetUserID, teamID); err != nil {
		return err
	}
	s.logger.Info("member removed", "team_id", teamID, "user_id", targetUserID)
	return nil
}

// Page describes one page of the actor's teams.
type Page struct {
	Teams      []domain.Team
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// List pages through the teams the actor belongs to.
func (s Service) List(ctx context.Context, actor *domain.User, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	teams, total, err := s.teams.ListTeamsByIDs(ctx, actor.TeamIDs(), (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{
		Teams:      teams,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}
