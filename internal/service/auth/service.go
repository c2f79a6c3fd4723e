package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/authz"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/config"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/crypto"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/token"
)

// Service handles signup, login and user administration.
type Service struct {
	users  repository.UserRepository
	teams  repository.TeamRepository
	logger *slog.Logger
	cfg    config.Config
}

// New constructs a Service.
func New(users repository.UserRepository, teams repository.TeamRepository, logger *slog.Logger, cfg config.Config) Service {
	return Service{users: users, teams: teams, logger: logger, cfg: cfg}
}

// Signup registers a new user with a platform-level role grant and returns
// the signed access token.
func (s Service) Signup(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, string, error) {
	if name == "" || email == "" || password == "" || role == "" {
		return nil, "", apierror.BadRequest("Missing required fields!",
			"Name, email, password, and role are mandatory!",
			"Provide all required fields in the request body!")
	}
	if !role.Valid() {
		return nil, "", apierror.BadRequest("Invalid role!",
			"Role must be either 'Admin' or 'Member'!",
			"Provide a valid role!")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", apierror.Conflict("User already exists!",
			"Email is already registered!",
			"Use a different email or login instead!")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Teams:        []domain.Membership{{Role: role}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apierror.Conflict("User already exists!",
				"Email is already registered!",
				"Use a different email or login instead!")
		}
		return nil, "", err
	}

	accessToken, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, accessToken, nil
}

// Login authenticates credentials and returns the user with a fresh token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apierror.BadRequest("Missing required fields!",
			"Email and password are mandatory!",
			"Provide both email and password in the request body!")
	}
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apierror.Unauthorized("Invalid credentials!",
				"Email not found!",
				"Check the email or register a new account!")
		}
		return nil, "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apierror.Unauthorized("Invalid credentials!",
			"Incorrect password!",
			"Verify your password and try again!")
	}
	accessToken, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, accessToken, nil
}

// CreateUser lets a platform Admin create an account directly into a team.
func (s Service) CreateUser(ctx context.Context, actor *domain.User, name, email, password string, role domain.Role, teamID string) (*domain.User, error) {
	if err := authz.CanCreateUser(actor); err != nil {
		return nil, err
	}
	if name == "" || email == "" || password == "" || role == "" || teamID == "" {
		return nil, apierror.BadRequest("Missing required fields!",
			"Name, email, password, role, and teamId are mandatory!",
			"Provide all required fields in the request body!")
	}
	if !role.Valid() {
		return nil, apierror.BadRequest("Invalid role!",
			"Role must be either 'Admin' or 'Member'!",
			"Provide a valid role!")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, apierror.Conflict("User already exists!",
			"Email is already registered!",
			"Use a different email!")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.teams.GetTeamByID(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.BadRequest("Invalid team!",
				"Team ID does not exist!",
				"Provide a valid team ID!")
		}
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Teams:        []domain.Membership{{TeamID: teamID, Role: role}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("User already exists!",
				"Email is already registered!",
				"Use a different email!")
		}
		return nil, err
	}
	s.logger.Info("user created", "user_id", user.ID, "team_id", teamID, "created_by", actor.ID)
	return user, nil
}

// ListUsers returns every account; password hashes never serialize.
func (s Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// Authorize validates a bearer token and loads the account it belongs to.
func (s Service) Authorize(ctx context.Context, raw string) (*domain.User, *token.Claims, error) {
	claims, err := token.Parse(strings.TrimSpace(raw), s.cfg.AccessTokenSecret)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, nil, apierror.Unauthorized("Token Expired!",
				"Session expired!",
				"Login again!")
		}
		return nil, nil, apierror.Unauthorized("Invalid Token!",
			"Token malformed or invalid signature!",
			"Provide a valid token!")
	}
	if claims.UserID == "" {
		return nil, nil, apierror.Unauthorized("Invalid Token!",
			"Token does not contain a valid user ID!",
			"Provide a valid token!")
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apierror.NotFound("User not found!",
				"The authenticated user does not exist in the database!",
				"Verify your authentication token or register a new account!")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

func (s Service) issueToken(user *domain.User) (string, error) {
	return token.Sign(user.ID, user.Email, user.Roles(), s.cfg.AccessTokenSecret, s.cfg.AccessTokenTTL)
}
