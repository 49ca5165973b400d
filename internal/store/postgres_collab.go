package store

import (
	"context"
	"fmt"
	"time"
)

// Projects

func (s *PostgresStore) InsertProject(ctx context.Context, project Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, description, created_by)
		VALUES ($1, $2, $3, $4)
	`, project.ID, project.Title, project.Description, project.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	var project Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_by, created_at, updated_at
		FROM projects
		WHERE id=$1
	`, projectID).Scan(&project.ID, &project.Title, &project.Description, &project.CreatedBy, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *PostgresStore) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.description, p.created_by, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.Title, &project.Description, &project.CreatedBy, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, projectID, title, description string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title=$2, description=$3, updated_at=NOW() WHERE id=$1
	`, projectID, title, description)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Project members. One row per (project, user); the unique constraint keeps
// a user from holding two roles in the same project.

func (s *PostgresStore) ListProjectMembers(ctx context.Context, projectID string) ([]ProjectMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, user_id, role, added_at
		FROM project_members
		WHERE project_id=$1
		ORDER BY added_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	items := make([]ProjectMember, 0)
	for rows.Next() {
		var member ProjectMember
		if err := rows.Scan(&member.ProjectID, &member.UserID, &member.Role, &member.AddedAt); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		items = append(items, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project members: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetProjectMemberRole(ctx context.Context, projectID, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT role FROM project_members WHERE project_id=$1 AND user_id=$2
	`, projectID, userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

func (s *PostgresStore) SetProjectMemberRole(ctx context.Context, projectID, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role=EXCLUDED.role
	`, projectID, userID, role)
	if err != nil {
		return fmt.Errorf("set project member role: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM project_members WHERE project_id=$1 AND user_id=$2
	`, projectID, userID)
	if err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountProjectOwners(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM project_members WHERE project_id=$1 AND role='owner'
	`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count project owners: %w", err)
	}
	return count, nil
}

// Invitations

func (s *PostgresStore) UpsertInvitation(ctx context.Context, invitation Invitation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invitations (id, project_id, role, inviting_user_id, invited_user_email, invited_user_name, message)
		VALUES ($1, $2, $3, $4, LOWER($5), $6, $7)
		ON CONFLICT (id) DO UPDATE SET role=EXCLUDED.role, message=EXCLUDED.message, updated_at=NOW()
	`, invitation.ID, invitation.ProjectID, invitation.Role, invitation.InvitingUserID,
		invitation.InvitedUserEmail, invitation.InvitedUserName, invitation.Message)
	if err != nil {
		return fmt.Errorf("upsert invitation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInvitation(ctx context.Context, invitationID string) (Invitation, error) {
	var invitation Invitation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, role, inviting_user_id, invited_user_email, invited_user_name, message, accepted_at, created_at, updated_at
		FROM invitations
		WHERE id=$1
	`, invitationID).Scan(
		&invitation.ID, &invitation.ProjectID, &invitation.Role, &invitation.InvitingUserID,
		&invitation.InvitedUserEmail, &invitation.InvitedUserName, &invitation.Message,
		&invitation.AcceptedAt, &invitation.CreatedAt, &invitation.UpdatedAt,
	)
	if err != nil {
		return Invitation{}, err
	}
	return invitation, nil
}

// ListInvitationsForUser returns every still-pending invitation addressed to
// the given email for one project.
func (s *PostgresStore) ListInvitationsForUser(ctx context.Context, projectID, email string) ([]Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, role, inviting_user_id, invited_user_email, invited_user_name, message, accepted_at, created_at, updated_at
		FROM invitations
		WHERE project_id=$1 AND invited_user_email=LOWER($2) AND accepted_at IS NULL
		ORDER BY created_at ASC
	`, projectID, email)
	if err != nil {
		return nil, fmt.Errorf("list invitations for user: %w", err)
	}
	defer rows.Close()

	items := make([]Invitation, 0)
	for rows.Next() {
		var invitation Invitation
		if err := rows.Scan(
			&invitation.ID, &invitation.ProjectID, &invitation.Role, &invitation.InvitingUserID,
			&invitation.InvitedUserEmail, &invitation.InvitedUserName, &invitation.Message,
			&invitation.AcceptedAt, &invitation.CreatedAt, &invitation.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		items = append(items, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListProjectInvitations(ctx context.Context, projectID string) ([]Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, role, inviting_user_id, invited_user_email, invited_user_name, message, accepted_at, created_at, updated_at
		FROM invitations
		WHERE project_id=$1 AND accepted_at IS NULL
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project invitations: %w", err)
	}
	defer rows.Close()

	items := make([]Invitation, 0)
	for rows.Next() {
		var invitation Invitation
		if err := rows.Scan(
			&invitation.ID, &invitation.ProjectID, &invitation.Role, &invitation.InvitingUserID,
			&invitation.InvitedUserEmail, &invitation.InvitedUserName, &invitation.Message,
			&invitation.AcceptedAt, &invitation.CreatedAt, &invitation.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		items = append(items, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) MarkInvitationAccepted(ctx context.Context, invitationID string, acceptedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE invitations SET accepted_at=$2, updated_at=NOW() WHERE id=$1
	`, invitationID, acceptedAt)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteInvitation(ctx context.Context, invitationID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id=$1`, invitationID)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProjectInvitations(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE project_id=$1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project invitations: %w", err)
	}
	return nil
}

// Invitation tokens

func (s *PostgresStore) UpsertInvitationToken(ctx context.Context, token InvitationToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invitation_tokens (id, project_id, role, token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET expires_at=EXCLUDED.expires_at, updated_at=NOW()
	`, token.ID, token.ProjectID, token.Role, token.Token, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert invitation token: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInvitationToken(ctx context.Context, tokenID string) (InvitationToken, error) {
	var token InvitationToken
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, role, token, expires_at, created_at, updated_at
		FROM invitation_tokens
		WHERE id=$1
	`, tokenID).Scan(&token.ID, &token.ProjectID, &token.Role, &token.Token, &token.ExpiresAt, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return InvitationToken{}, err
	}
	return token, nil
}

func (s *PostgresStore) GetInvitationTokenByToken(ctx context.Context, rawToken string) (InvitationToken, error) {
	var token InvitationToken
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, role, token, expires_at, created_at, updated_at
		FROM invitation_tokens
		WHERE token=$1 AND expires_at > NOW()
	`, rawToken).Scan(&token.ID, &token.ProjectID, &token.Role, &token.Token, &token.ExpiresAt, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return InvitationToken{}, err
	}
	return token, nil
}

func (s *PostgresStore) TouchInvitationToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE invitation_tokens SET expires_at=$2, updated_at=NOW() WHERE id=$1
	`, tokenID, expiresAt)
	if err != nil {
		return fmt.Errorf("touch invitation token: %w", err)
	}
	return nil
}

// Manuscripts

func (s *PostgresStore) InsertManuscript(ctx context.Context, manuscript Manuscript) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manuscripts (id, project_id, title, body, updated_by)
		VALUES ($1, $2, $3, $4, $5)
	`, manuscript.ID, manuscript.ProjectID, manuscript.Title, manuscript.Body, manuscript.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert manuscript: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetManuscript(ctx context.Context, manuscriptID string) (Manuscript, error) {
	var manuscript Manuscript
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, body, updated_by, created_at, updated_at
		FROM manuscripts
		WHERE id=$1
	`, manuscriptID).Scan(&manuscript.ID, &manuscript.ProjectID, &manuscript.Title, &manuscript.Body, &manuscript.UpdatedBy, &manuscript.CreatedAt, &manuscript.UpdatedAt)
	if err != nil {
		return Manuscript{}, err
	}
	return manuscript, nil
}

func (s *PostgresStore) ListManuscripts(ctx context.Context, projectID string) ([]Manuscript, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, body, updated_by, created_at, updated_at
		FROM manuscripts
		WHERE project_id=$1
		ORDER BY updated_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list manuscripts: %w", err)
	}
	defer rows.Close()

	items := make([]Manuscript, 0)
	for rows.Next() {
		var manuscript Manuscript
		if err := rows.Scan(&manuscript.ID, &manuscript.ProjectID, &manuscript.Title, &manuscript.Body, &manuscript.UpdatedBy, &manuscript.CreatedAt, &manuscript.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan manuscript: %w", err)
		}
		items = append(items, manuscript)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manuscripts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateManuscript(ctx context.Context, manuscriptID, title, body, updatedBy string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE manuscripts SET title=$2, body=$3, updated_by=$4, updated_at=NOW() WHERE id=$1
	`, manuscriptID, title, body, updatedBy)
	if err != nil {
		return fmt.Errorf("update manuscript: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteManuscript(ctx context.Context, manuscriptID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM manuscripts WHERE id=$1`, manuscriptID)
	if err != nil {
		return fmt.Errorf("delete manuscript: %w", err)
	}
	return nil
}

// Snapshots

func (s *PostgresStore) InsertSnapshot(ctx context.Context, snapshot Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, project_id, name, commit_hash, archive_key, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, snapshot.ID, snapshot.ProjectID, snapshot.Name, snapshot.CommitHash, snapshot.ArchiveKey, snapshot.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, projectID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, commit_hash, archive_key, created_by, created_at
		FROM snapshots
		WHERE project_id=$1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	items := make([]Snapshot, 0)
	for rows.Next() {
		var snapshot Snapshot
		if err := rows.Scan(&snapshot.ID, &snapshot.ProjectID, &snapshot.Name, &snapshot.CommitHash, &snapshot.ArchiveKey, &snapshot.CreatedBy, &snapshot.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		items = append(items, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return items, nil
}
