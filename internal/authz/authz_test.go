package authz

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
)

func member(teams ...domain.Membership) *domain.User {
	return &domain.User{ID: "actor", Teams: teams}
}

func TestCanCreateTeam(t *testing.T) {
	t.Run("member only is forbidden", func(t *testing.T) {
		actor := member(domain.Membership{Role: domain.RoleMember})
		err := CanCreateTeam(actor)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusForbidden, err.Status)
	})

	t.Run("admin below the team cap is allowed", func(t *testing.T) {
		actor := member(domain.Membership{Role: domain.RoleAdmin})
		assert.Nil(t, CanCreateTeam(actor))
	})

	t.Run("admin at five teams is rejected", func(t *testing.T) {
		teams := []domain.Membership{{Role: domain.RoleAdmin}}
		for _, id := range []string{"t1", "t2", "t3", "t4"} {
			teams = append(teams, domain.Membership{TeamID: id, Role: domain.RoleMember})
		}
		err := CanCreateTeam(member(teams...))
		require.NotNil(t, err)
		assert.Equal(t, http.StatusBadRequest, err.Status)
	})
}

func TestCanManageTeamRequiresAdminAndCreator(t *testing.T) {
	team := &domain.Team{ID: "team-1", CreatedBy: "actor"}

	t.Run("admin creator allowed", func(t *testing.T) {
		actor := member(domain.Membership{Role: domain.RoleAdmin})
		assert.Nil(t, CanManageTeam(actor, team))
	})

	t.Run("admin who is not the creator is forbidden", func(t *testing.T) {
		other := &domain.User{ID: "someone-else", Teams: []domain.Membership{{Role: domain.RoleAdmin}}}
		err := CanManageTeam(other, team)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusForbidden, err.Status)
	})

	t.Run("creator without admin role is forbidden", func(t *testing.T) {
		actor := member(domain.Membership{Role: domain.RoleMember})
		err := CanManageTeam(actor, team)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusForbidden, err.Status)
	})
}

func TestCanAddMember(t *testing.T) {
	team := &domain.Team{ID: "team-1", CreatedBy: "actor"}
	actor := member(domain.Membership{Role: domain.RoleAdmin})

	t.Run("invalid role", func(t *testing.T) {
		target := &domain.User{ID: "u2"}
		err := CanAddMember(actor, team, target, domain.Role("Owner"))
		require.NotNil(t, err)
		assert.Equal(t, http.StatusBadRequest, err.Status)
	})

	t.Run("target at cap", func(t *testing.T) {
		target := &domain.User{ID: "u2", Teams: []domain.Membership{
			{TeamID: "a", Role: domain.RoleMember},
			{TeamID: "b", Role: domain.RoleMember},
			{TeamID: "c", Role: domain.RoleMember},
			{TeamID: "d", Role: domain.RoleMember},
			{TeamID: "e", Role: domain.RoleMember},
		}}
		err := CanAddMember(actor, team, target, domain.RoleMember)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusBadRequest, err.Status)
	})

	t.Run("already a member", func(t *testing.T) {
		target := &domain.User{ID: "u2", Teams: []domain.Membership{{TeamID: "team-1", Role: domain.RoleMember}}}
		err := CanAddMember(actor, team, target, domain.RoleMember)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusConflict, err.Status)
	})

	t.Run("allowed", func(t *testing.T) {
		target := &domain.User{ID: "u2", Teams: []domain.Membership{{Role: domain.RoleMember}}}
		assert.Nil(t, CanAddMember(actor, team, target, domain.RoleAdmin))
	})
}

func TestCanRemoveMember(t *testing.T) {
	team := &domain.Team{ID: "team-1", CreatedBy: "actor"}
	actor := member(domain.Membership{Role: domain.RoleAdmin})

	t.Run("target not a member", func(t *testing.T) {
		target := &domain.User{ID: "u2"}
		err := CanRemoveMember(actor, team, target)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusBadRequest, err.Status)
	})

	t.Run("allowed", func(t *testing.T) {
		target := &domain.User{ID: "u2", Teams: []domain.Membership{{TeamID: "team-1", Role: domain.RoleMember}}}
		assert.Nil(t, CanRemoveMember(actor, team, target))
	})
}

func TestCanCreateProjectRequiresBothScopes(t *testing.T) {
	t.Run("team admin without platform admin is denied", func(t *testing.T) {
		// Admin inside team-1 but only a Member grant at platform level.
		actor := member(
			domain.Membership{Role: domain.RoleMember},
			domain.Membership{TeamID: "team-1", Role: domain.RoleAdmin},
		)
		err := CanCreateProject(actor, "team-1")
		require.NotNil(t, err)
		assert.Equal(t, http.StatusForbidden, err.Status)
		assert.Equal(t, "Only Admins can create projects!", err.Reason)
	})

	t.Run("platform admin without team admin is denied", func(t *testing.T) {
		actor := member(
			domain.Membership{Role: domain.RoleAdmin},
			domain.Membership{TeamID: "team-1", Role: domain.RoleMember},
		)
		err := CanCreateProject(actor, "team-1")
		require.NotNil(t, err)
		assert.Equal(t, http.StatusForbidden, err.Status)
		assert.Equal(t, "Only team admins can create projects!", err.Reason)
	})

	t.Run("platform admin with team admin is allowed", func(t *testing.T) {
		actor := member(
			domain.Membership{Role: domain.RoleAdmin},
			domain.Membership{TeamID: "team-1", Role: domain.RoleAdmin},
		)
		assert.Nil(t, CanCreateProject(actor, "team-1"))
	})
}

func TestCanListProjectsIsAdminOnly(t *testing.T) {
	err := CanListProjects(member(domain.Membership{Role: domain.RoleMember}))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.Status)

	assert.Nil(t, CanListProjects(member(domain.Membership{Role: domain.RoleAdmin})))
}
