package app

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"testing"
	"time"

	"scriptorium/api/internal/store"
)

func TestAcceptInvitationGone(t *testing.T) {
	svc := newTestService(&fakeStore{})
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	_, err := svc.AcceptInvitation(context.Background(), session, "inv_missing")
	assertDomainError(t, err, http.StatusGone, "GONE")
}

func TestAcceptInvitationWrongAccount(t *testing.T) {
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return store.Invitation{ID: "inv_1", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com"}, nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_2", Email: "grace@example.com"}

	_, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	assertDomainError(t, err, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}

func TestAcceptInvitationDeletedProjectCleansUp(t *testing.T) {
	var deleted []string
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return store.Invitation{ID: "inv_1", ProjectID: "prj_gone", Role: "writer", InvitedUserEmail: "ada@example.com"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{}, sql.ErrNoRows
		},
		deleteInvitationFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	_, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	assertDomainError(t, err, http.StatusNotFound, "PROJECT_NOT_FOUND")
	if len(deleted) != 1 || deleted[0] != "inv_1" {
		t.Fatalf("expected orphaned invitation removed, got %v", deleted)
	}
}

func TestAcceptInvitationNewMember(t *testing.T) {
	var grantedRole string
	var accepted []string
	invitation := store.Invitation{ID: "inv_1", ProjectID: "prj_1", Role: "viewer", InvitedUserEmail: "ada@example.com"}
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return invitation, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1", Title: "Field Notes"}, nil
		},
		listInvitationsForUserFn: func(context.Context, string, string) ([]store.Invitation, error) {
			return []store.Invitation{invitation}, nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
		markInvitationAcceptedFn: func(_ context.Context, id string, _ time.Time) error {
			accepted = append(accepted, id)
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if grantedRole != "viewer" {
		t.Fatalf("expected viewer granted, got %q", grantedRole)
	}
	if len(accepted) != 1 || accepted[0] != "inv_1" {
		t.Fatalf("expected inv_1 marked accepted, got %v", accepted)
	}
	if payload["message"] != "You have been added to Field Notes." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationOwnerInvitationWins(t *testing.T) {
	viewerInv := store.Invitation{ID: "inv_viewer", ProjectID: "prj_1", Role: "viewer", InvitedUserEmail: "ada@example.com"}
	ownerInv := store.Invitation{ID: "inv_owner", ProjectID: "prj_1", Role: "owner", InvitedUserEmail: "ada@example.com"}

	var mu sync.Mutex
	var deleted []string
	var grantedRole string
	var acceptedID string
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return viewerInv, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1", Title: "Field Notes"}, nil
		},
		listInvitationsForUserFn: func(context.Context, string, string) ([]store.Invitation, error) {
			return []store.Invitation{viewerInv, ownerInv}, nil
		},
		deleteInvitationFn: func(_ context.Context, id string) error {
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
			return nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
		markInvitationAcceptedFn: func(_ context.Context, id string, _ time.Time) error {
			acceptedID = id
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	if _, err := svc.AcceptInvitation(context.Background(), session, "inv_viewer"); err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if grantedRole != "owner" {
		t.Fatalf("expected pending owner invitation to win, got role %q", grantedRole)
	}
	if acceptedID != "inv_owner" {
		t.Fatalf("expected inv_owner marked accepted, got %q", acceptedID)
	}
	if len(deleted) != 1 || deleted[0] != "inv_viewer" {
		t.Fatalf("expected superseded inv_viewer removed, got %v", deleted)
	}
}

func TestAcceptInvitationWriterInvitationOverViewer(t *testing.T) {
	viewerInv := store.Invitation{ID: "inv_viewer", ProjectID: "prj_1", Role: "viewer", InvitedUserEmail: "ada@example.com"}
	writerInv := store.Invitation{ID: "inv_writer", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com"}

	var mu sync.Mutex
	var deleted []string
	var grantedRole string
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return viewerInv, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		listInvitationsForUserFn: func(context.Context, string, string) ([]store.Invitation, error) {
			return []store.Invitation{viewerInv, writerInv}, nil
		},
		deleteInvitationFn: func(_ context.Context, id string) error {
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
			return nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	if _, err := svc.AcceptInvitation(context.Background(), session, "inv_viewer"); err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if grantedRole != "writer" {
		t.Fatalf("expected pending writer invitation to win, got role %q", grantedRole)
	}
	if len(deleted) != 1 || deleted[0] != "inv_viewer" {
		t.Fatalf("expected superseded inv_viewer removed, got %v", deleted)
	}
}

func TestAcceptInvitationIdempotentReaccept(t *testing.T) {
	acceptedAt := time.Now().Add(-time.Hour)
	invitation := store.Invitation{ID: "inv_1", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com", AcceptedAt: &acceptedAt}
	members := map[string]string{"usr_1": "writer"}
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return invitation, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if payload["message"] != "Invitation already accepted." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationUpgradesRole(t *testing.T) {
	invitation := store.Invitation{ID: "inv_1", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com"}
	members := map[string]string{"usr_1": "viewer"}
	var grantedRole string
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return invitation, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if grantedRole != "writer" {
		t.Fatalf("expected upgrade to writer, got %q", grantedRole)
	}
	if payload["message"] != "Your role was updated successfully." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationSameRoleDiscards(t *testing.T) {
	invitation := store.Invitation{ID: "inv_1", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com"}
	members := map[string]string{"usr_1": "writer"}
	var deleted []string
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return invitation, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		deleteInvitationFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if payload["message"] != "You already have this role in the project." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
	if len(deleted) != 1 || deleted[0] != "inv_1" {
		t.Fatalf("expected invitation removed, got %v", deleted)
	}
}

func TestAcceptInvitationLowerRoleDiscards(t *testing.T) {
	invitation := store.Invitation{ID: "inv_1", ProjectID: "prj_1", Role: "viewer", InvitedUserEmail: "ada@example.com"}
	members := map[string]string{"usr_1": "owner"}
	var deleted []string
	fs := &fakeStore{
		getInvitationFn: func(context.Context, string) (store.Invitation, error) {
			return invitation, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		deleteInvitationFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitation(context.Background(), session, "inv_1")
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if payload["message"] != "Your current role in the project is already of higher privilege." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
	if len(deleted) != 1 || deleted[0] != "inv_1" {
		t.Fatalf("expected invitation removed, got %v", deleted)
	}
}

func TestCreateInvitationTokenRejectsOwnerRole(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1"}

	_, err := svc.CreateInvitationToken(context.Background(), session, "prj_1", "owner", 0)
	assertDomainError(t, err, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestCreateInvitationTokenKeepsExistingToken(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	existing := store.InvitationToken{ID: "", ProjectID: "prj_1", Role: "viewer", Token: "itk_original"}
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		upsertInvitationTokenFn: func(_ context.Context, token store.InvitationToken) error {
			existing.ID = token.ID
			existing.ExpiresAt = token.ExpiresAt
			return nil
		},
		getInvitationTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return existing, nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1"}

	payload, err := svc.CreateInvitationToken(context.Background(), session, "prj_1", "viewer", 0)
	if err != nil {
		t.Fatalf("CreateInvitationToken() error = %v", err)
	}
	if payload["token"] != "itk_original" {
		t.Fatalf("expected existing token preserved, got %q", payload["token"])
	}
}

func TestAcceptInvitationTokenGone(t *testing.T) {
	svc := newTestService(&fakeStore{})
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	_, err := svc.AcceptInvitationToken(context.Background(), session, "itk_expired")
	assertDomainError(t, err, http.StatusGone, "GONE")
}

func TestAcceptInvitationTokenNewMember(t *testing.T) {
	var grantedRole string
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "viewer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1", Title: "Field Notes"}, nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1")
	if err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if grantedRole != "viewer" {
		t.Fatalf("expected viewer granted, got %q", grantedRole)
	}
	if payload["message"] != "You have been added to Field Notes." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationTokenPendingInvitationWins(t *testing.T) {
	writerInv := store.Invitation{ID: "inv_writer", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com"}
	var grantedRole string
	var acceptedID string
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "viewer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		listInvitationsForUserFn: func(context.Context, string, string) ([]store.Invitation, error) {
			return []store.Invitation{writerInv}, nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
		markInvitationAcceptedFn: func(_ context.Context, id string, _ time.Time) error {
			acceptedID = id
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1")
	if err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if grantedRole != "writer" {
		t.Fatalf("expected pending writer invitation to win over viewer link, got %q", grantedRole)
	}
	if acceptedID != "inv_writer" {
		t.Fatalf("expected inv_writer marked accepted, got %q", acceptedID)
	}
	if payload["message"] != "An invitation with a less limiting role was found and accepted." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationTokenDiscardsLesserInvitations(t *testing.T) {
	viewerInv := store.Invitation{ID: "inv_viewer", ProjectID: "prj_1", Role: "viewer", InvitedUserEmail: "ada@example.com"}
	var deleted []string
	var grantedRole string
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "writer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1", Title: "Field Notes"}, nil
		},
		listInvitationsForUserFn: func(context.Context, string, string) ([]store.Invitation, error) {
			return []store.Invitation{viewerInv}, nil
		},
		deleteInvitationFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	if _, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1"); err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "inv_viewer" {
		t.Fatalf("expected viewer invitation discarded, got %v", deleted)
	}
	if grantedRole != "writer" {
		t.Fatalf("expected writer from link, got %q", grantedRole)
	}
}

func TestAcceptInvitationTokenUpgradesViewer(t *testing.T) {
	members := map[string]string{"usr_1": "viewer"}
	var grantedRole string
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "writer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			grantedRole = role
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1")
	if err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if grantedRole != "writer" {
		t.Fatalf("expected upgrade to writer, got %q", grantedRole)
	}
	if payload["message"] != "Your role was updated successfully." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationTokenKeepsHigherRole(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "viewer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		setProjectMemberRoleFn: func(context.Context, string, string, string) error {
			t.Fatal("role should not change for an owner redeeming a viewer link")
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1")
	if err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if payload["message"] != "Your current role in the project is already of higher privilege." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestAcceptInvitationTokenNeverDemotesSoleOwner(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	writerInv := store.Invitation{ID: "inv_writer", ProjectID: "prj_1", Role: "writer", InvitedUserEmail: "ada@example.com"}
	var deleted []string
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "viewer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		listInvitationsForUserFn: func(context.Context, string, string) ([]store.Invitation, error) {
			return []store.Invitation{writerInv}, nil
		},
		countProjectOwnersFn: func(context.Context, string) (int, error) {
			return 1, nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, _, role string) error {
			members["usr_1"] = role
			return nil
		},
		deleteInvitationFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1")
	if err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if members["usr_1"] != "owner" {
		t.Fatalf("sole owner was demoted to %q by redeeming a viewer link", members["usr_1"])
	}
	if payload["message"] != "Your current role in the project is already of higher privilege." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
	if len(deleted) != 1 || deleted[0] != "inv_writer" {
		t.Fatalf("expected the stale writer invitation discarded, got %v", deleted)
	}
}

func TestAcceptInvitationTokenSameRole(t *testing.T) {
	members := map[string]string{"usr_1": "viewer"}
	fs := &fakeStore{
		getInvitationTokenByTokenFn: func(context.Context, string) (store.InvitationToken, error) {
			return store.InvitationToken{ID: "ivt_1", ProjectID: "prj_1", Role: "viewer", Token: "itk_1"}, nil
		},
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "ada@example.com"}

	payload, err := svc.AcceptInvitationToken(context.Background(), session, "itk_1")
	if err != nil {
		t.Fatalf("AcceptInvitationToken() error = %v", err)
	}
	if payload["message"] != "You already have this role in the project." {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestInviteUserRequiresOwner(t *testing.T) {
	members := map[string]string{"usr_1": "writer"}
	fs := &fakeStore{
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", UserName: "Ada"}

	_, err := svc.InviteUser(context.Background(), session, "prj_1", "grace@example.com", "Grace", "viewer", "")
	assertDomainError(t, err, http.StatusForbidden, "FORBIDDEN")
}

func TestInviteUserDerivedIDStable(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	var ids []string
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1", Title: "Field Notes"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		upsertInvitationFn: func(_ context.Context, invitation store.Invitation) error {
			ids = append(ids, invitation.ID)
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", UserName: "Ada"}

	if _, err := svc.InviteUser(context.Background(), session, "prj_1", "Grace@Example.com", "Grace", "viewer", "hi"); err != nil {
		t.Fatalf("InviteUser() error = %v", err)
	}
	if _, err := svc.InviteUser(context.Background(), session, "prj_1", "grace@example.com", "Grace", "writer", "again"); err != nil {
		t.Fatalf("InviteUser() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != ids[1] {
		t.Fatalf("expected stable invitation ID for same inviter/email/project, got %v", ids)
	}
}
