package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL. User
// membership lists live in a JSONB column so the user document stays the
// single owner of its team links, matching the document-store layout the
// API models.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository    = (*Repository)(nil)
	_ repository.TeamRepository    = (*Repository)(nil)
	_ repository.ProjectRepository = (*Repository)(nil)
	_ repository.BackupRepository  = (*Repository)(nil)
)

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}

// CreateUser inserts a user with its membership list.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	memberships, err := json.Marshal(user.Teams)
	if err != nil {
		return fmt.Errorf("encode memberships: %w", err)
	}
	const query = `INSERT INTO users (id, name, email, password_hash, memberships, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, memberships, user.CreatedAt, user.UpdatedAt)
	return mapError(err)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var memberships []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &memberships, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(memberships, &u.Teams); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}
	return &u, nil
}

const userColumns = `id, name, email, password_hash, memberships, created_at, updated_at`

// GetUserByEmail fetches a user by its lowercased email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// ListUsers returns every user.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// AppendMembership pushes one membership entry onto the user's list.
func (r *Repository) AppendMembership(ctx context.Context, userID string, m domain.Membership) error {
	entry, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode membership: %w", err)
	}
	const query = `UPDATE users
		SET memberships = memberships || $2::jsonb, updated_at = $3
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, userID, entry, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const stripMembershipQuery = `UPDATE users
	SET memberships = COALESCE(
		(SELECT jsonb_agg(entry)
		 FROM jsonb_array_elements(memberships) AS entry
		 WHERE entry->>'teamId' IS DISTINCT FROM $1),
		'[]'::jsonb),
	    updated_at = $2
	WHERE memberships @> jsonb_build_array(jsonb_build_object('teamId', $1::text))`

// RemoveMembership pulls the team's entry from the user's list.
func (r *Repository) RemoveMembership(ctx context.Context, userID, teamID string) error {
	const query = `UPDATE users
		SET memberships = COALESCE(
			(SELECT jsonb_agg(entry)
			 FROM jsonb_array_elements(memberships) AS entry
			 WHERE entry->>'teamId' IS DISTINCT FROM $2),
			'[]'::jsonb),
		    updated_at = $3
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, userID, teamID, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateTeam creates a team record.
func (r *Repository) CreateTeam(ctx context.Context, team *domain.Team) error {
	const query = `INSERT INTO teams (id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, team.ID, team.Name, team.Description, team.CreatedBy, team.CreatedAt, team.UpdatedAt)
	return mapError(err)
}

const teamColumns = `id, name, description, created_by, created_at, updated_at`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetTeamByID returns a team by identifier.
func (r *Repository) GetTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.pool.QueryRow(ctx, query, teamID))
}

// GetTeamByNameAndCreator looks up the uniqueness pair for team creation.
func (r *Repository) GetTeamByNameAndCreator(ctx context.Context, name, creatorID string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE name = $1 AND created_by = $2`
	return scanTeam(r.pool.QueryRow(ctx, query, name, creatorID))
}

// UpdateTeam persists name and description changes.
func (r *Repository) UpdateTeam(ctx context.Context, team *domain.Team) error {
	const query = `UPDATE teams SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, team.ID, team.Name, team.Description, team.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListTeamsByIDs pages through the given teams and reports the total count.
func (r *Repository) ListTeamsByIDs(ctx context.Context, teamIDs []string, offset, limit int) ([]domain.Team, int, error) {
	if len(teamIDs) == 0 {
		return nil, 0, nil
	}
	countQuery := `SELECT COUNT(1) FROM teams WHERE id = ANY($1)`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, teamIDs).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ANY($1) ORDER BY created_at OFFSET $2 LIMIT $3`
	rows, err := r.pool.Query(ctx, query, teamIDs, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, 0, err
		}
		teams = append(teams, *t)
	}
	return teams, total, rows.Err()
}

// DeleteTeamCascade removes the team and strips its membership entry from
// every user inside one transaction; either both happen or neither does.
func (r *Repository) DeleteTeamCascade(ctx context.Context, teamID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	if _, err := tx.Exec(ctx, stripMembershipQuery, teamID, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateProject inserts a project.
func (r *Repository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `INSERT INTO projects (id, name, description, team_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, project.ID, project.Name, project.Description, project.TeamID, project.CreatedBy, project.CreatedAt, project.UpdatedAt)
	return mapError(err)
}

const projectColumns = `id, name, description, team_id, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.TeamID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetProjectByID retrieves a project by identifier.
func (r *Repository) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, projectID))
}

// GetProjectByNameAndTeam looks up the uniqueness pair for project creation.
func (r *Repository) GetProjectByNameAndTeam(ctx context.Context, name, teamID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE name = $1 AND team_id = $2`
	return scanProject(r.pool.QueryRow(ctx, query, name, teamID))
}

// UpdateProject persists name and description changes.
func (r *Repository) UpdateProject(ctx context.Context, project *domain.Project) error {
	const query = `UPDATE projects SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, project.ID, project.Name, project.Description, project.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteProject removes a project.
func (r *Repository) DeleteProject(ctx context.Context, projectID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListProjectsByTeams pages through projects of the given teams, newest
// first, and reports the total count.
func (r *Repository) ListProjectsByTeams(ctx context.Context, teamIDs []string, offset, limit int) ([]domain.Project, int, error) {
	if len(teamIDs) == 0 {
		return nil, 0, nil
	}
	countQuery := `SELECT COUNT(1) FROM projects WHERE team_id = ANY($1)`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, teamIDs).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE team_id = ANY($1) ORDER BY created_at DESC OFFSET $2 LIMIT $3`
	rows, err := r.pool.Query(ctx, query, teamIDs, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, *p)
	}
	return projects, total, rows.Err()
}
