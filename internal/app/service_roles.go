package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"scriptorium/api/internal/roles"
	"scriptorium/api/internal/store"
)

// memberRole returns the role from the user's own membership row, or "" when
// the user has no individual membership. Wildcard access is not consulted;
// invitation handling depends on the distinction.
func (s *Service) memberRole(ctx context.Context, projectID, userID string) (roles.Role, error) {
	role, err := s.store.GetProjectMemberRole(ctx, projectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return roles.Role(role), nil
}

// GetUserRole resolves the user's effective role, falling back to viewer when
// the project grants wildcard access.
func (s *Service) GetUserRole(ctx context.Context, projectID, userID string) (roles.Role, error) {
	role, err := s.memberRole(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if role != "" {
		return role, nil
	}
	wildcard, err := s.memberRole(ctx, projectID, roles.WildcardUserID)
	if err != nil {
		return "", err
	}
	if wildcard == roles.RoleViewer {
		return roles.RoleViewer, nil
	}
	return "", nil
}

func (s *Service) requireProjectRole(ctx context.Context, projectID, userID string) (roles.Role, error) {
	role, err := s.GetUserRole(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", domainError(http.StatusForbidden, "FORBIDDEN", "You do not have access to this project", nil)
	}
	return role, nil
}

func (s *Service) requireWriteRole(ctx context.Context, projectID, userID string) error {
	role, err := s.requireProjectRole(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if role != roles.RoleOwner && role != roles.RoleWriter {
		return domainError(http.StatusForbidden, "FORBIDDEN", "Writer access is required for this action", nil)
	}
	return nil
}

func (s *Service) requireOwnerRole(ctx context.Context, projectID, userID string) error {
	role, err := s.requireProjectRole(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if role != roles.RoleOwner {
		return domainError(http.StatusForbidden, "FORBIDDEN", "Owner access is required for this action", nil)
	}
	return nil
}

// ListProjectRoles returns the membership lists for a project.
func (s *Service) ListProjectRoles(ctx context.Context, session Session, projectID string) (map[string]any, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	return s.roleListsPayload(ctx, projectID)
}

// UpdateProjectUserRole sets a member's role, or removes the membership when
// role is empty. Only owners may change roles. An owner may not demote or
// remove themselves while they are the sole owner.
func (s *Service) UpdateProjectUserRole(ctx context.Context, session Session, projectID, userID, role string) (map[string]any, error) {
	if err := s.requireOwnerRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	nextRole := roles.Role(strings.ToLower(strings.TrimSpace(role)))
	if nextRole == "" {
		return s.removeMember(ctx, session, projectID, userID)
	}
	if !roles.Valid(nextRole) {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown role "+string(nextRole), nil)
	}
	if userID == roles.WildcardUserID && nextRole != roles.RoleViewer {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "wildcard access can only be granted as viewer", nil)
	}

	current, err := s.memberRole(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if current == roles.RoleOwner && nextRole != roles.RoleOwner {
		owners, err := s.store.CountProjectOwners(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if owners <= 1 {
			return nil, domainError(http.StatusConflict, "ROLE_CONFLICT", "A project must keep at least one owner", nil)
		}
	}

	if err := s.store.SetProjectMemberRole(ctx, projectID, userID, string(nextRole)); err != nil {
		return nil, err
	}
	return s.roleListsPayload(ctx, projectID)
}

// RemoveProjectUserRole drops a member from the project.
func (s *Service) RemoveProjectUserRole(ctx context.Context, session Session, projectID, userID string) (map[string]any, error) {
	if err := s.requireOwnerRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.removeMember(ctx, session, projectID, userID)
}

func (s *Service) removeMember(ctx context.Context, session Session, projectID, userID string) (map[string]any, error) {
	current, err := s.memberRole(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if current == roles.RoleOwner {
		owners, err := s.store.CountProjectOwners(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if owners <= 1 {
			return nil, domainError(http.StatusConflict, "ROLE_CONFLICT", "A project must keep at least one owner", nil)
		}
	}
	if err := s.store.RemoveProjectMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.roleListsPayload(ctx, projectID)
}

// roleListsPayload builds the per-role membership lists. Owner, writer, and
// viewer lists are always present; the unordered role lists are included only
// when non-empty.
func (s *Service) roleListsPayload(ctx context.Context, projectID string) (map[string]any, error) {
	members, err := s.store.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	byRole := map[roles.Role][]string{}
	for _, member := range members {
		role := roles.Role(member.Role)
		byRole[role] = append(byRole[role], member.UserID)
	}
	for _, role := range roles.Precedence {
		if byRole[role] == nil && roles.Ordered(role) {
			byRole[role] = []string{}
		}
	}

	payload := map[string]any{
		"owners":  byRole[roles.RoleOwner],
		"writers": byRole[roles.RoleWriter],
		"viewers": byRole[roles.RoleViewer],
	}
	if len(byRole[roles.RoleEditor]) > 0 {
		payload["editors"] = byRole[roles.RoleEditor]
	}
	if len(byRole[roles.RoleAnnotator]) > 0 {
		payload["annotators"] = byRole[roles.RoleAnnotator]
	}
	if len(byRole[roles.RoleProofer]) > 0 {
		payload["proofers"] = byRole[roles.RoleProofer]
	}
	return payload, nil
}

// grantRole assigns a role to a user in a project, creating the membership
// row if absent.
func (s *Service) grantRole(ctx context.Context, projectID, userID string, role roles.Role) error {
	return s.store.SetProjectMemberRole(ctx, projectID, userID, string(role))
}

func projectDisplayName(project store.Project) string {
	if strings.TrimSpace(project.Title) != "" {
		return project.Title
	}
	return "the project"
}
