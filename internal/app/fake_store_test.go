package app

import (
	"context"
	"database/sql"
	"time"

	"scriptorium/api/internal/config"
	"scriptorium/api/internal/store"
)

type fakeStore struct {
	pingFn func(context.Context) error

	getUserByIDFn          func(context.Context, string) (store.User, error)
	getUserByEmailFn       func(context.Context, string) (store.User, error)
	lookupRefreshSessionFn func(context.Context, string) (store.User, error)

	insertProjectFn       func(context.Context, store.Project) error
	getProjectFn          func(context.Context, string) (store.Project, error)
	listProjectsForUserFn func(context.Context, string) ([]store.Project, error)
	updateProjectFn       func(context.Context, string, string, string) error
	deleteProjectFn       func(context.Context, string) error

	listProjectMembersFn   func(context.Context, string) ([]store.ProjectMember, error)
	getProjectMemberRoleFn func(context.Context, string, string) (string, error)
	setProjectMemberRoleFn func(context.Context, string, string, string) error
	removeProjectMemberFn  func(context.Context, string, string) error
	countProjectOwnersFn   func(context.Context, string) (int, error)

	upsertInvitationFn         func(context.Context, store.Invitation) error
	getInvitationFn            func(context.Context, string) (store.Invitation, error)
	listInvitationsForUserFn   func(context.Context, string, string) ([]store.Invitation, error)
	listProjectInvitationsFn   func(context.Context, string) ([]store.Invitation, error)
	markInvitationAcceptedFn   func(context.Context, string, time.Time) error
	deleteInvitationFn         func(context.Context, string) error
	deleteProjectInvitationsFn func(context.Context, string) error

	upsertInvitationTokenFn     func(context.Context, store.InvitationToken) error
	getInvitationTokenFn        func(context.Context, string) (store.InvitationToken, error)
	getInvitationTokenByTokenFn func(context.Context, string) (store.InvitationToken, error)

	insertManuscriptFn func(context.Context, store.Manuscript) error
	getManuscriptFn    func(context.Context, string) (store.Manuscript, error)
	listManuscriptsFn  func(context.Context, string) ([]store.Manuscript, error)
	updateManuscriptFn func(context.Context, string, string, string, string) error
	deleteManuscriptFn func(context.Context, string) error

	insertSnapshotFn func(context.Context, store.Snapshot) error
	listSnapshotsFn  func(context.Context, string) ([]store.Snapshot, error)
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID string) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, userID)
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	if f.getUserByEmailFn != nil {
		return f.getUserByEmailFn(ctx, email)
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeStore) RevokeAccessToken(context.Context, string, time.Time) error { return nil }
func (f *fakeStore) IsAccessTokenRevoked(context.Context, string) (bool, error) {
	return false, nil
}

func (f *fakeStore) SaveRefreshSession(context.Context, string, string, time.Time) error {
	return nil
}
func (f *fakeStore) LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error) {
	if f.lookupRefreshSessionFn != nil {
		return f.lookupRefreshSessionFn(ctx, tokenHash)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) RevokeRefreshSession(context.Context, string) error { return nil }

func (f *fakeStore) InsertProject(ctx context.Context, project store.Project) error {
	if f.insertProjectFn != nil {
		return f.insertProjectFn(ctx, project)
	}
	return nil
}

func (f *fakeStore) GetProject(ctx context.Context, projectID string) (store.Project, error) {
	if f.getProjectFn != nil {
		return f.getProjectFn(ctx, projectID)
	}
	return store.Project{}, sql.ErrNoRows
}

func (f *fakeStore) ListProjectsForUser(ctx context.Context, userID string) ([]store.Project, error) {
	if f.listProjectsForUserFn != nil {
		return f.listProjectsForUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, projectID, title, description string) error {
	if f.updateProjectFn != nil {
		return f.updateProjectFn(ctx, projectID, title, description)
	}
	return nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, projectID string) error {
	if f.deleteProjectFn != nil {
		return f.deleteProjectFn(ctx, projectID)
	}
	return nil
}

func (f *fakeStore) ListProjectMembers(ctx context.Context, projectID string) ([]store.ProjectMember, error) {
	if f.listProjectMembersFn != nil {
		return f.listProjectMembersFn(ctx, projectID)
	}
	return nil, nil
}

func (f *fakeStore) GetProjectMemberRole(ctx context.Context, projectID, userID string) (string, error) {
	if f.getProjectMemberRoleFn != nil {
		return f.getProjectMemberRoleFn(ctx, projectID, userID)
	}
	return "", sql.ErrNoRows
}

func (f *fakeStore) SetProjectMemberRole(ctx context.Context, projectID, userID, role string) error {
	if f.setProjectMemberRoleFn != nil {
		return f.setProjectMemberRoleFn(ctx, projectID, userID, role)
	}
	return nil
}

func (f *fakeStore) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	if f.removeProjectMemberFn != nil {
		return f.removeProjectMemberFn(ctx, projectID, userID)
	}
	return nil
}

func (f *fakeStore) CountProjectOwners(ctx context.Context, projectID string) (int, error) {
	if f.countProjectOwnersFn != nil {
		return f.countProjectOwnersFn(ctx, projectID)
	}
	return 1, nil
}

func (f *fakeStore) UpsertInvitation(ctx context.Context, invitation store.Invitation) error {
	if f.upsertInvitationFn != nil {
		return f.upsertInvitationFn(ctx, invitation)
	}
	return nil
}

func (f *fakeStore) GetInvitation(ctx context.Context, invitationID string) (store.Invitation, error) {
	if f.getInvitationFn != nil {
		return f.getInvitationFn(ctx, invitationID)
	}
	return store.Invitation{}, sql.ErrNoRows
}

func (f *fakeStore) ListInvitationsForUser(ctx context.Context, projectID, email string) ([]store.Invitation, error) {
	if f.listInvitationsForUserFn != nil {
		return f.listInvitationsForUserFn(ctx, projectID, email)
	}
	return nil, nil
}

func (f *fakeStore) ListProjectInvitations(ctx context.Context, projectID string) ([]store.Invitation, error) {
	if f.listProjectInvitationsFn != nil {
		return f.listProjectInvitationsFn(ctx, projectID)
	}
	return nil, nil
}

func (f *fakeStore) MarkInvitationAccepted(ctx context.Context, invitationID string, acceptedAt time.Time) error {
	if f.markInvitationAcceptedFn != nil {
		return f.markInvitationAcceptedFn(ctx, invitationID, acceptedAt)
	}
	return nil
}

func (f *fakeStore) DeleteInvitation(ctx context.Context, invitationID string) error {
	if f.deleteInvitationFn != nil {
		return f.deleteInvitationFn(ctx, invitationID)
	}
	return nil
}

func (f *fakeStore) DeleteProjectInvitations(ctx context.Context, projectID string) error {
	if f.deleteProjectInvitationsFn != nil {
		return f.deleteProjectInvitationsFn(ctx, projectID)
	}
	return nil
}

func (f *fakeStore) UpsertInvitationToken(ctx context.Context, token store.InvitationToken) error {
	if f.upsertInvitationTokenFn != nil {
		return f.upsertInvitationTokenFn(ctx, token)
	}
	return nil
}

func (f *fakeStore) GetInvitationToken(ctx context.Context, tokenID string) (store.InvitationToken, error) {
	if f.getInvitationTokenFn != nil {
		return f.getInvitationTokenFn(ctx, tokenID)
	}
	return store.InvitationToken{}, sql.ErrNoRows
}

func (f *fakeStore) GetInvitationTokenByToken(ctx context.Context, raw string) (store.InvitationToken, error) {
	if f.getInvitationTokenByTokenFn != nil {
		return f.getInvitationTokenByTokenFn(ctx, raw)
	}
	return store.InvitationToken{}, sql.ErrNoRows
}

func (f *fakeStore) TouchInvitationToken(context.Context, string, time.Time) error { return nil }

func (f *fakeStore) InsertManuscript(ctx context.Context, manuscript store.Manuscript) error {
	if f.insertManuscriptFn != nil {
		return f.insertManuscriptFn(ctx, manuscript)
	}
	return nil
}

func (f *fakeStore) GetManuscript(ctx context.Context, manuscriptID string) (store.Manuscript, error) {
	if f.getManuscriptFn != nil {
		return f.getManuscriptFn(ctx, manuscriptID)
	}
	return store.Manuscript{}, sql.ErrNoRows
}

func (f *fakeStore) ListManuscripts(ctx context.Context, projectID string) ([]store.Manuscript, error) {
	if f.listManuscriptsFn != nil {
		return f.listManuscriptsFn(ctx, projectID)
	}
	return nil, nil
}

func (f *fakeStore) UpdateManuscript(ctx context.Context, manuscriptID, title, body, updatedBy string) error {
	if f.updateManuscriptFn != nil {
		return f.updateManuscriptFn(ctx, manuscriptID, title, body, updatedBy)
	}
	return nil
}

func (f *fakeStore) DeleteManuscript(ctx context.Context, manuscriptID string) error {
	if f.deleteManuscriptFn != nil {
		return f.deleteManuscriptFn(ctx, manuscriptID)
	}
	return nil
}

func (f *fakeStore) InsertSnapshot(ctx context.Context, row store.Snapshot) error {
	if f.insertSnapshotFn != nil {
		return f.insertSnapshotFn(ctx, row)
	}
	return nil
}

func (f *fakeStore) ListSnapshots(ctx context.Context, projectID string) ([]store.Snapshot, error) {
	if f.listSnapshotsFn != nil {
		return f.listSnapshotsFn(ctx, projectID)
	}
	return nil, nil
}

func newTestService(fs *fakeStore) *Service {
	return &Service{
		cfg: config.Config{
			TokenSecret: "test-secret",
			AccessTTL:   time.Hour,
			RefreshTTL:  24 * time.Hour,
			BaseURL:     "http://localhost:5173",
		},
		store:    fs,
		sessions: fs,
	}
}
