package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"scriptorium/api/internal/store"
)

func memberRoleFn(members map[string]string) func(context.Context, string, string) (string, error) {
	return func(_ context.Context, _ string, userID string) (string, error) {
		role, ok := members[userID]
		if !ok {
			return "", sql.ErrNoRows
		}
		return role, nil
	}
}

func assertDomainError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Status != status || domainErr.Code != code {
		t.Fatalf("expected %d %s, got %d %s", status, code, domainErr.Status, domainErr.Code)
	}
}

func TestUpdateProjectUserRoleSoleOwnerProtected(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1", Title: "Field Notes"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		countProjectOwnersFn: func(context.Context, string) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1", Email: "owner@example.com"}

	_, err := svc.UpdateProjectUserRole(context.Background(), session, "prj_1", "usr_1", "viewer")
	assertDomainError(t, err, http.StatusConflict, "ROLE_CONFLICT")

	_, err = svc.RemoveProjectUserRole(context.Background(), session, "prj_1", "usr_1")
	assertDomainError(t, err, http.StatusConflict, "ROLE_CONFLICT")
}

func TestUpdateProjectUserRoleDemoteWithCoOwner(t *testing.T) {
	members := map[string]string{"usr_1": "owner", "usr_2": "owner"}
	var gotUserID, gotRole string
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
		countProjectOwnersFn: func(context.Context, string) (int, error) {
			return 2, nil
		},
		setProjectMemberRoleFn: func(_ context.Context, _, userID, role string) error {
			gotUserID, gotRole = userID, role
			return nil
		},
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1"}

	if _, err := svc.UpdateProjectUserRole(context.Background(), session, "prj_1", "usr_2", "writer"); err != nil {
		t.Fatalf("UpdateProjectUserRole() error = %v", err)
	}
	if gotUserID != "usr_2" || gotRole != "writer" {
		t.Fatalf("expected usr_2 demoted to writer, got %s=%s", gotUserID, gotRole)
	}
}

func TestUpdateProjectUserRoleWildcardViewerOnly(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1"}

	for _, role := range []string{"owner", "writer", "editor"} {
		_, err := svc.UpdateProjectUserRole(context.Background(), session, "prj_1", "*", role)
		assertDomainError(t, err, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	}

	if _, err := svc.UpdateProjectUserRole(context.Background(), session, "prj_1", "*", "viewer"); err != nil {
		t.Fatalf("wildcard viewer should be allowed, got %v", err)
	}
}

func TestUpdateProjectUserRoleRejectsUnknownRole(t *testing.T) {
	members := map[string]string{"usr_1": "owner"}
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{ID: "prj_1"}, nil
		},
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1"}

	_, err := svc.UpdateProjectUserRole(context.Background(), session, "prj_1", "usr_2", "superuser")
	assertDomainError(t, err, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestUpdateProjectUserRoleRequiresOwner(t *testing.T) {
	members := map[string]string{"usr_1": "writer"}
	fs := &fakeStore{
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)
	session := Session{UserID: "usr_1"}

	_, err := svc.UpdateProjectUserRole(context.Background(), session, "prj_1", "usr_2", "viewer")
	assertDomainError(t, err, http.StatusForbidden, "FORBIDDEN")
}

func TestGetUserRoleWildcardFallback(t *testing.T) {
	members := map[string]string{"*": "viewer", "usr_2": "writer"}
	fs := &fakeStore{
		getProjectMemberRoleFn: memberRoleFn(members),
	}
	svc := newTestService(fs)

	role, err := svc.GetUserRole(context.Background(), "prj_1", "usr_stranger")
	if err != nil {
		t.Fatalf("GetUserRole() error = %v", err)
	}
	if string(role) != "viewer" {
		t.Fatalf("expected wildcard viewer fallback, got %q", role)
	}

	// An individual membership wins over the wildcard
	role, err = svc.GetUserRole(context.Background(), "prj_1", "usr_2")
	if err != nil {
		t.Fatalf("GetUserRole() error = %v", err)
	}
	if string(role) != "writer" {
		t.Fatalf("expected writer, got %q", role)
	}
}

func TestRoleListsPayloadOmitsEmptySideLists(t *testing.T) {
	fs := &fakeStore{
		listProjectMembersFn: func(context.Context, string) ([]store.ProjectMember, error) {
			return []store.ProjectMember{
				{ProjectID: "prj_1", UserID: "usr_1", Role: "owner"},
				{ProjectID: "prj_1", UserID: "usr_2", Role: "editor"},
			}, nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.roleListsPayload(context.Background(), "prj_1")
	if err != nil {
		t.Fatalf("roleListsPayload() error = %v", err)
	}

	for _, key := range []string{"owners", "writers", "viewers"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("expected %s list to always be present", key)
		}
	}
	if _, ok := payload["editors"]; !ok {
		t.Error("expected editors list for a project with an editor")
	}
	if _, ok := payload["annotators"]; ok {
		t.Error("annotators list should be omitted when empty")
	}
	if _, ok := payload["proofers"]; ok {
		t.Error("proofers list should be omitted when empty")
	}

	writers, ok := payload["writers"].([]string)
	if !ok || len(writers) != 0 {
		t.Fatalf("expected empty writers slice, got %#v", payload["writers"])
	}
}
