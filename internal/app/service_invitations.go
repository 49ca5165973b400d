package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"scriptorium/api/internal/roles"
	"scriptorium/api/internal/store"
	"scriptorium/api/internal/util"
)

// InviteUser creates or refreshes a direct invitation for an email address.
// The invitation ID is derived from inviter, invitee email, and project, so
// re-inviting the same person updates the existing row instead of piling up
// duplicates.
func (s *Service) InviteUser(ctx context.Context, session Session, projectID, email, name, role, message string) (map[string]any, error) {
	if err := s.requireOwnerRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	inviteEmail := strings.ToLower(strings.TrimSpace(email))
	if inviteEmail == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email is required", nil)
	}
	inviteRole := roles.Role(strings.ToLower(strings.TrimSpace(role)))
	if !roles.Valid(inviteRole) {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown role "+string(inviteRole), nil)
	}

	invitation := store.Invitation{
		ID:               util.DerivedID("inv", session.UserID, inviteEmail, projectID),
		ProjectID:        projectID,
		Role:             string(inviteRole),
		InvitingUserID:   session.UserID,
		InvitedUserEmail: inviteEmail,
		InvitedUserName:  strings.TrimSpace(name),
		Message:          strings.TrimSpace(message),
	}
	if err := s.store.UpsertInvitation(ctx, invitation); err != nil {
		return nil, err
	}

	if s.SMTPConfigured() {
		acceptURL := s.cfg.BaseURL + "/invitations/" + invitation.ID + "/accept"
		go func() {
			if err := s.email.SendInvitationEmail(invitation.InvitedUserEmail, session.UserName, project.Title, invitation.Role, invitation.Message, acceptURL); err != nil {
				log.Printf("email: send invitation to %s: %v", invitation.InvitedUserEmail, err)
			}
		}()
	}

	return map[string]any{
		"id":               invitation.ID,
		"projectId":        invitation.ProjectID,
		"role":             invitation.Role,
		"invitedUserEmail": invitation.InvitedUserEmail,
		"invitedUserName":  invitation.InvitedUserName,
		"message":          invitation.Message,
	}, nil
}

// ListInvitations returns the user's own pending invitations for a project.
func (s *Service) ListInvitations(ctx context.Context, session Session, projectID string) ([]map[string]any, error) {
	invitations, err := s.store.ListInvitationsForUser(ctx, projectID, session.Email)
	if err != nil {
		return nil, err
	}
	return invitationListPayload(invitations), nil
}

// AcceptInvitation accepts a direct invitation. When several invitations are
// pending for the same user and project, the most privileged ordered one wins:
// accepting a lesser invitation while an owner invitation is pending accepts
// the owner invitation instead, and likewise a writer invitation wins over a
// viewer one. All superseded pending invitations are removed.
func (s *Service) AcceptInvitation(ctx context.Context, session Session, invitationID string) (map[string]any, error) {
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainError(http.StatusGone, "GONE", "This invitation no longer exists", nil)
	}
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(invitation.InvitedUserEmail, session.Email) {
		return nil, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "This invitation was issued to a different account", nil)
	}

	project, err := s.store.GetProject(ctx, invitation.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		// The project is gone; the invitation is dead weight.
		if err := s.store.DeleteInvitation(ctx, invitation.ID); err != nil {
			return nil, err
		}
		return nil, domainError(http.StatusNotFound, "PROJECT_NOT_FOUND", "The project for this invitation no longer exists", nil)
	}
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ListInvitationsForUser(ctx, invitation.ProjectID, session.Email)
	if err != nil {
		return nil, err
	}

	selected := invitation
	if roles.Role(selected.Role) != roles.RoleOwner {
		if owner, ok := findPendingWithRole(pending, roles.RoleOwner); ok {
			selected = owner
		} else if roles.Role(selected.Role) == roles.RoleViewer {
			if writer, ok := findPendingWithRole(pending, roles.RoleWriter); ok {
				selected = writer
			}
		}
	}

	// Superseded pending invitations are independent rows; remove them
	// concurrently.
	var wg sync.WaitGroup
	errCh := make(chan error, len(pending))
	for _, other := range pending {
		if other.ID == selected.ID {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.store.DeleteInvitation(ctx, id); err != nil {
				errCh <- err
			}
		}(other.ID)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	return s.handleInvitation(ctx, session, project, selected, roles.Role(selected.Role))
}

func findPendingWithRole(pending []store.Invitation, role roles.Role) (store.Invitation, bool) {
	for _, invitation := range pending {
		if roles.Role(invitation.Role) == role {
			return invitation, true
		}
	}
	return store.Invitation{}, false
}

// handleInvitation applies a single invitation against the user's current
// membership and returns the outcome message.
func (s *Service) handleInvitation(ctx context.Context, session Session, project store.Project, invitation store.Invitation, roleToAssign roles.Role) (map[string]any, error) {
	current, err := s.memberRole(ctx, project.ID, session.UserID)
	if err != nil {
		return nil, err
	}

	outcome := func(message string) map[string]any {
		return map[string]any{
			"message":   message,
			"projectId": project.ID,
		}
	}

	if current == "" {
		if err := s.grantRole(ctx, project.ID, session.UserID, roleToAssign); err != nil {
			return nil, err
		}
		if err := s.store.MarkInvitationAccepted(ctx, invitation.ID, time.Now()); err != nil {
			return nil, err
		}
		return outcome("You have been added to " + projectDisplayName(project) + "."), nil
	}

	if invitation.AcceptedAt != nil {
		return outcome("Invitation already accepted."), nil
	}

	switch roles.Compare(roleToAssign, current) {
	case 1:
		if err := s.grantRole(ctx, project.ID, session.UserID, roleToAssign); err != nil {
			return nil, err
		}
		if err := s.store.MarkInvitationAccepted(ctx, invitation.ID, time.Now()); err != nil {
			return nil, err
		}
		return outcome("Your role was updated successfully."), nil
	case 0:
		if err := s.store.DeleteInvitation(ctx, invitation.ID); err != nil {
			return nil, err
		}
		return outcome("You already have this role in the project."), nil
	default:
		if err := s.store.DeleteInvitation(ctx, invitation.ID); err != nil {
			return nil, err
		}
		return outcome("Your current role in the project is already of higher privilege."), nil
	}
}

// RejectInvitation deletes a pending invitation addressed to the caller.
func (s *Service) RejectInvitation(ctx context.Context, session Session, invitationID string) error {
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if errors.Is(err, sql.ErrNoRows) {
		return domainError(http.StatusGone, "GONE", "This invitation no longer exists", nil)
	}
	if err != nil {
		return err
	}
	if !strings.EqualFold(invitation.InvitedUserEmail, session.Email) {
		return domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "This invitation was issued to a different account", nil)
	}
	return s.store.DeleteInvitation(ctx, invitation.ID)
}

// CreateInvitationToken issues a shareable link token granting a role to
// whoever redeems it. One token exists per project and role; re-issuing only
// extends the expiry and returns the existing token.
func (s *Service) CreateInvitationToken(ctx context.Context, session Session, projectID, role string, ttl time.Duration) (map[string]any, error) {
	if err := s.requireOwnerRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	tokenRole := roles.Role(strings.ToLower(strings.TrimSpace(role)))
	if tokenRole != roles.RoleViewer && tokenRole != roles.RoleWriter {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "link invitations can only grant viewer or writer", nil)
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}

	token := store.InvitationToken{
		ID:        util.DerivedID("ivt", projectID, string(tokenRole)),
		ProjectID: projectID,
		Role:      string(tokenRole),
		Token:     util.NewID("itk"),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.store.UpsertInvitationToken(ctx, token); err != nil {
		return nil, err
	}
	// The upsert keeps the original token for an existing row; read it back.
	saved, err := s.store.GetInvitationToken(ctx, token.ID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":        saved.ID,
		"projectId": saved.ProjectID,
		"role":      saved.Role,
		"token":     saved.Token,
		"url":       s.cfg.BaseURL + "/join/" + saved.Token,
		"expiresAt": saved.ExpiresAt,
	}, nil
}

// AcceptInvitationToken redeems a shareable link token. A pending direct
// invitation that grants at least the token's role takes precedence over the
// token itself; pending invitations below the token's role are discarded.
func (s *Service) AcceptInvitationToken(ctx context.Context, session Session, rawToken string) (map[string]any, error) {
	token, err := s.store.GetInvitationTokenByToken(ctx, rawToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainError(http.StatusGone, "GONE", "This invitation link is invalid or has expired", nil)
	}
	if err != nil {
		return nil, err
	}

	permitted := roles.Role(token.Role)
	if permitted != roles.RoleViewer && permitted != roles.RoleWriter {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unsupported link role "+token.Role, nil)
	}

	project, err := s.store.GetProject(ctx, token.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainError(http.StatusNotFound, "PROJECT_NOT_FOUND", "The project for this invitation no longer exists", nil)
	}
	if err != nil {
		return nil, err
	}

	result, err := s.addUserViaToken(ctx, session, project, permitted)
	if err != nil {
		return nil, err
	}
	if err := s.store.TouchInvitationToken(ctx, token.ID, time.Now()); err != nil {
		log.Printf("invitation: touch token %s: %v", token.ID, err)
	}
	return result, nil
}

func (s *Service) addUserViaToken(ctx context.Context, session Session, project store.Project, permitted roles.Role) (map[string]any, error) {
	pending, err := s.store.ListInvitationsForUser(ctx, project.ID, session.Email)
	if err != nil {
		return nil, err
	}

	var winner *store.Invitation
	roleToAssign := permitted
	for i := range pending {
		invitation := pending[i]
		if roles.Compare(roles.Role(invitation.Role), permitted) >= 0 {
			if winner == nil || roles.Compare(roles.Role(invitation.Role), roleToAssign) == 1 {
				winner = &pending[i]
				roleToAssign = roles.Role(invitation.Role)
			}
			continue
		}
		// A pending invitation below what the link grants is obsolete.
		if err := s.store.DeleteInvitation(ctx, invitation.ID); err != nil {
			return nil, err
		}
	}

	outcome := func(message string) map[string]any {
		return map[string]any{
			"message":   message,
			"projectId": project.ID,
		}
	}

	current, err := s.memberRole(ctx, project.ID, session.UserID)
	if err != nil {
		return nil, err
	}

	// A qualifying invitation still competes with the role the user already
	// holds; it must never demote an existing member.
	if winner != nil {
		if current == "" || roles.Compare(roleToAssign, current) == 1 {
			if err := s.grantRole(ctx, project.ID, session.UserID, roleToAssign); err != nil {
				return nil, err
			}
			if err := s.store.MarkInvitationAccepted(ctx, winner.ID, time.Now()); err != nil {
				return nil, err
			}
			return outcome("An invitation with a less limiting role was found and accepted."), nil
		}
		if err := s.store.DeleteInvitation(ctx, winner.ID); err != nil {
			return nil, err
		}
		if roles.Compare(roleToAssign, current) == 0 {
			return outcome("You already have this role in the project."), nil
		}
		return outcome("Your current role in the project is already of higher privilege."), nil
	}

	switch {
	case current == "":
		if err := s.grantRole(ctx, project.ID, session.UserID, permitted); err != nil {
			return nil, err
		}
		return outcome("You have been added to " + projectDisplayName(project) + "."), nil
	case current == roles.RoleViewer && permitted == roles.RoleWriter:
		if err := s.grantRole(ctx, project.ID, session.UserID, permitted); err != nil {
			return nil, err
		}
		return outcome("Your role was updated successfully."), nil
	case roles.Compare(permitted, current) == 0:
		return outcome("You already have this role in the project."), nil
	default:
		return outcome("Your current role in the project is already of higher privilege."), nil
	}
}
