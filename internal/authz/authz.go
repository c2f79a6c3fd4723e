// Package authz evaluates whether an authenticated actor may act on a
// team, project or user. Every function is stateless over already-loaded
// domain values and returns nil when the action is allowed, or a typed
// error naming the exact rule that failed.
package authz

import (
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
)

// CanCreateTeam requires the platform Admin role and a free membership slot:
// creating a team also joins it.
func CanCreateTeam(actor *domain.User) *apierror.Error {
	if !actor.HasPlatformRole(domain.RoleAdmin) {
		return apierror.Forbidden("Forbidden!",
			"Only Admins can create teams!",
			"Use an Admin account to perform this action!")
	}
	if len(actor.Teams) >= domain.MaxTeamsPerUser {
		return apierror.BadRequest("Team limit reached!",
			"Users cannot join or create more than 5 teams!",
			"Remove the user from an existing team before creating a new one!")
	}
	return nil
}

// CanManageTeam gates team update and delete: the actor must hold the
// platform Admin role and be the team's creator. Both conditions are
// required.
func CanManageTeam(actor *domain.User, team *domain.Team) *apierror.Error {
	if !actor.HasPlatformRole(domain.RoleAdmin) || team.CreatedBy != actor.ID {
		return apierror.Forbidden("Forbidden!",
			"Only team admins can update the team!",
			"Use an Admin account or contact the team creator!")
	}
	return nil
}

// CanAddMember checks the actor may manage the team, the role is valid and
// the target has room for, and is not already in, the team.
func CanAddMember(actor *domain.User, team *domain.Team, target *domain.User, role domain.Role) *apierror.Error {
	if !role.Valid() {
		return apierror.BadRequest("Invalid role!",
			"Role must be either 'Admin' or 'Member'!",
			"Provide a valid role!")
	}
	if !actor.HasPlatformRole(domain.RoleAdmin) || team.CreatedBy != actor.ID {
		return apierror.Forbidden("Forbidden!",
			"Only team admins can add members!",
			"Use an Admin account or contact the team creator!")
	}
	if len(target.Teams) >= domain.MaxTeamsPerUser {
		return apierror.BadRequest("Team limit reached!",
			"Users cannot join more than 5 teams!",
			"Remove the user from an existing team before adding to a new one!")
	}
	if target.IsMemberOf(team.ID) {
		return apierror.Conflict("User already in team!",
			"The user is already a member of this team!",
			"Check the user ID or update their role instead!")
	}
	return nil
}

// CanRemoveMember checks the actor may manage the team and the target is
// currently a member.
func CanRemoveMember(actor *domain.User, team *domain.Team, target *domain.User) *apierror.Error {
	if !actor.HasPlatformRole(domain.RoleAdmin) || team.CreatedBy != actor.ID {
		return apierror.Forbidden("Forbidden!",
			"Only team admins can remove members!",
			"Use an Admin account or contact the team creator!")
	}
	if !target.IsMemberOf(team.ID) {
		return apierror.BadRequest("User not in team!",
			"The user is not a member of this team!",
			"Check the user ID and try again!")
	}
	return nil
}

// CanCreateProject requires a platform-level Admin grant and the Admin
// role inside the target team. A team-scoped Admin without the platform
// grant is denied, as is a platform Admin without the team role.
func CanCreateProject(actor *domain.User, teamID string) *apierror.Error {
	if !actor.HasPlatformGrant(domain.RoleAdmin) {
		return apierror.Forbidden("Forbidden!",
			"Only Admins can create projects!",
			"Use an Admin account to perform this action!")
	}
	if role, ok := actor.RoleIn(teamID); !ok || role != domain.RoleAdmin {
		return apierror.Forbidden("Forbidden!",
			"Only team admins can create projects!",
			"Use an Admin account or contact the team admin!")
	}
	return nil
}

// CanManageProject gates project update and delete with the same pairing
// of platform-level Admin and team-scoped Admin.
func CanManageProject(actor *domain.User, project *domain.Project) *apierror.Error {
	if !actor.HasPlatformGrant(domain.RoleAdmin) {
		return apierror.Forbidden("Forbidden!",
			"Only Admins can update projects!",
			"Use an Admin account to perform this action!")
	}
	if role, ok := actor.RoleIn(project.TeamID); !ok || role != domain.RoleAdmin {
		return apierror.Forbidden("Forbidden",
			"You must be a team admin to update projects",
			"Contact your team administrator")
	}
	return nil
}

// CanListProjects: the listing endpoint itself is Admin-only; scoping to
// the actor's teams happens afterwards.
func CanListProjects(actor *domain.User) *apierror.Error {
	if !actor.HasPlatformRole(domain.RoleAdmin) {
		return apierror.Forbidden("Forbidden!",
			"Only Admins can list projects!",
			"Use an Admin account to perform this action!")
	}
	return nil
}

// CanCreateUser gates direct user creation into a team.
func CanCreateUser(actor *domain.User) *apierror.Error {
	if !actor.HasPlatformRole(domain.RoleAdmin) {
		return apierror.Forbidden("Forbidden!",
			"Only Admins can create users!",
			"Use an Admin account to perform this action!")
	}
	return nil
}
