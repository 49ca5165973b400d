package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"scriptorium/api/internal/auth"
	"scriptorium/api/internal/authpw"
	"scriptorium/api/internal/config"
	"scriptorium/api/internal/convert"
	"scriptorium/api/internal/email"
	"scriptorium/api/internal/roles"
	"scriptorium/api/internal/search"
	"scriptorium/api/internal/snapshot"
	"scriptorium/api/internal/store"
	"scriptorium/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	Ping(ctx context.Context) error

	GetUserByID(context.Context, string) (store.User, error)
	GetUserByEmail(context.Context, string) (store.User, error)
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	InsertProject(context.Context, store.Project) error
	GetProject(context.Context, string) (store.Project, error)
	ListProjectsForUser(context.Context, string) ([]store.Project, error)
	UpdateProject(context.Context, string, string, string) error
	DeleteProject(context.Context, string) error

	ListProjectMembers(context.Context, string) ([]store.ProjectMember, error)
	GetProjectMemberRole(context.Context, string, string) (string, error)
	SetProjectMemberRole(context.Context, string, string, string) error
	RemoveProjectMember(context.Context, string, string) error
	CountProjectOwners(context.Context, string) (int, error)

	UpsertInvitation(context.Context, store.Invitation) error
	GetInvitation(context.Context, string) (store.Invitation, error)
	ListInvitationsForUser(context.Context, string, string) ([]store.Invitation, error)
	ListProjectInvitations(context.Context, string) ([]store.Invitation, error)
	MarkInvitationAccepted(context.Context, string, time.Time) error
	DeleteInvitation(context.Context, string) error
	DeleteProjectInvitations(context.Context, string) error

	UpsertInvitationToken(context.Context, store.InvitationToken) error
	GetInvitationToken(context.Context, string) (store.InvitationToken, error)
	GetInvitationTokenByToken(context.Context, string) (store.InvitationToken, error)
	TouchInvitationToken(context.Context, string, time.Time) error

	InsertManuscript(context.Context, store.Manuscript) error
	GetManuscript(context.Context, string) (store.Manuscript, error)
	ListManuscripts(context.Context, string) ([]store.Manuscript, error)
	UpdateManuscript(context.Context, string, string, string, string) error
	DeleteManuscript(context.Context, string) error

	InsertSnapshot(context.Context, store.Snapshot) error
	ListSnapshots(context.Context, string) ([]store.Snapshot, error)
}

// sessionStore holds refresh sessions. Redis when configured, Postgres
// otherwise; both backends satisfy this interface.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type snapshotter interface {
	EnsureProjectRepo(projectID string, initial snapshot.Content, author string) error
	CommitSnapshot(projectID string, content snapshot.Content, author, message string) (snapshot.CommitInfo, error)
	History(projectID string, limit int) ([]snapshot.CommitInfo, error)
	GetContentByHash(projectID, hash string) (snapshot.Content, error)
	CreateTag(projectID, hash, name string) error
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  sessionStore
	authpw    *authpw.Service
	email     *email.Service
	search    *search.Service
	convert   *convert.Service
	snapshots snapshotter
	archive   *snapshot.ArchiveStore
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions sessionStore, authSvc *authpw.Service, emailSvc *email.Service, searchSvc *search.Service, snapshots *snapshot.Service, archive *snapshot.ArchiveStore) *Service {
	svc := &Service{
		cfg:       cfg,
		store:     dataStore,
		sessions:  sessions,
		authpw:    authSvc,
		email:     emailSvc,
		search:    searchSvc,
		snapshots: snapshots,
		archive:   archive,
	}
	svc.convert = convert.NewService(&convertStoreAdapter{store: dataStore})
	return svc
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

func (s *Service) SMTPConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

// NotifySignUp sends the verification email. Best-effort; account creation
// never depends on delivery.
func (s *Service) NotifySignUp(to, userName, verificationToken string) {
	if !s.SMTPConfigured() {
		return
	}
	url := s.cfg.BaseURL + "/verify-email?token=" + verificationToken
	go func() {
		if err := s.email.SendVerificationEmail(to, userName, url); err != nil {
			log.Printf("email: send verification to %s: %v", to, err)
		}
	}()
}

// NotifyPasswordReset sends the reset email. Best-effort.
func (s *Service) NotifyPasswordReset(to, userName, resetToken string) {
	if !s.SMTPConfigured() || resetToken == "" {
		return
	}
	url := s.cfg.BaseURL + "/reset-password?token=" + resetToken
	go func() {
		if err := s.email.SendPasswordResetEmail(to, userName, url); err != nil {
			log.Printf("email: send password reset to %s: %v", to, err)
		}
	}()
}

// Sessions

func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	ref, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	// The Redis session backend only records the user ID; reload the full
	// record so the new token carries current name and email claims.
	user, err := s.store.GetUserByID(ctx, ref.ID)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:   user.ID,
		Name:  user.DisplayName,
		Email: user.Email,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Email:     user.Email,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// Projects

func (s *Service) CreateProject(ctx context.Context, session Session, title, description string) (map[string]any, error) {
	projectTitle := strings.TrimSpace(title)
	if projectTitle == "" {
		projectTitle = "Untitled Project"
	}

	project := store.Project{
		ID:          util.NewID("prj"),
		Title:       projectTitle,
		Description: strings.TrimSpace(description),
		CreatedBy:   session.UserID,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		return nil, err
	}
	if err := s.store.SetProjectMemberRole(ctx, project.ID, session.UserID, string(roles.RoleOwner)); err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.EnsureProjectRepo(project.ID, snapshot.Content{
			Title:       project.Title,
			Description: project.Description,
		}, session.UserName); err != nil {
			log.Printf("snapshot: ensure repo for %s: %v", project.ID, err)
		}
	}
	if s.search != nil {
		s.search.IndexProject(search.ProjectRecord{
			ID:          project.ID,
			Title:       project.Title,
			Description: project.Description,
		})
	}

	return s.GetProjectPayload(ctx, session, project.ID)
}

func (s *Service) ListProjects(ctx context.Context, session Session) ([]map[string]any, error) {
	projects, err := s.store.ListProjectsForUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(projects))
	for _, project := range projects {
		role, err := s.memberRole(ctx, project.ID, session.UserID)
		if err != nil {
			return nil, err
		}
		items = append(items, map[string]any{
			"id":          project.ID,
			"title":       project.Title,
			"description": project.Description,
			"role":        string(role),
			"updatedAt":   project.UpdatedAt,
		})
	}
	return items, nil
}

func (s *Service) GetProjectPayload(ctx context.Context, session Session, projectID string) (map[string]any, error) {
	role, err := s.requireProjectRole(ctx, projectID, session.UserID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	lists, err := s.roleListsPayload(ctx, projectID)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"id":          project.ID,
		"title":       project.Title,
		"description": project.Description,
		"createdBy":   project.CreatedBy,
		"createdAt":   project.CreatedAt,
		"updatedAt":   project.UpdatedAt,
		"role":        string(role),
		"roles":       lists,
	}

	if role == roles.RoleOwner {
		invitations, err := s.store.ListProjectInvitations(ctx, projectID)
		if err != nil {
			return nil, err
		}
		payload["invitations"] = invitationListPayload(invitations)
	}
	return payload, nil
}

func (s *Service) UpdateProject(ctx context.Context, session Session, projectID, title, description string) (map[string]any, error) {
	if err := s.requireWriteRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	nextTitle := firstNonBlank(strings.TrimSpace(title), project.Title)
	nextDescription := strings.TrimSpace(description)
	if err := s.store.UpdateProject(ctx, projectID, nextTitle, nextDescription); err != nil {
		return nil, err
	}
	if s.search != nil {
		s.search.IndexProject(search.ProjectRecord{ID: projectID, Title: nextTitle, Description: nextDescription})
	}
	return s.GetProjectPayload(ctx, session, projectID)
}

func (s *Service) DeleteProject(ctx context.Context, session Session, projectID string) error {
	if err := s.requireOwnerRole(ctx, projectID, session.UserID); err != nil {
		return err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return err
	}
	if err := s.store.DeleteProjectInvitations(ctx, projectID); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteProject(projectID)
	}
	return nil
}

// Manuscripts

func (s *Service) CreateManuscript(ctx context.Context, session Session, projectID, title, body string) (map[string]any, error) {
	if err := s.requireWriteRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	manuscriptTitle := strings.TrimSpace(title)
	if manuscriptTitle == "" {
		manuscriptTitle = "Untitled Manuscript"
	}
	manuscript := store.Manuscript{
		ID:        util.NewID("man"),
		ProjectID: projectID,
		Title:     manuscriptTitle,
		Body:      body,
		UpdatedBy: session.UserName,
	}
	if err := s.store.InsertManuscript(ctx, manuscript); err != nil {
		return nil, err
	}
	if s.search != nil {
		s.search.IndexManuscript(search.ManuscriptRecord{
			ID:        manuscript.ID,
			Title:     manuscript.Title,
			Body:      manuscript.Body,
			ProjectID: projectID,
		})
	}
	return manuscriptPayload(manuscript), nil
}

func (s *Service) ListManuscripts(ctx context.Context, session Session, projectID string) ([]map[string]any, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	manuscripts, err := s.store.ListManuscripts(ctx, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(manuscripts))
	for _, manuscript := range manuscripts {
		items = append(items, map[string]any{
			"id":        manuscript.ID,
			"projectId": manuscript.ProjectID,
			"title":     manuscript.Title,
			"updatedBy": manuscript.UpdatedBy,
			"updatedAt": manuscript.UpdatedAt,
		})
	}
	return items, nil
}

func (s *Service) GetManuscript(ctx context.Context, session Session, projectID, manuscriptID string) (map[string]any, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	manuscript, err := s.store.GetManuscript(ctx, manuscriptID)
	if err != nil {
		return nil, err
	}
	if manuscript.ProjectID != projectID {
		return nil, sql.ErrNoRows
	}
	return manuscriptPayload(manuscript), nil
}

func (s *Service) UpdateManuscript(ctx context.Context, session Session, projectID, manuscriptID, title, body string) (map[string]any, error) {
	if err := s.requireWriteRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	manuscript, err := s.store.GetManuscript(ctx, manuscriptID)
	if err != nil {
		return nil, err
	}
	if manuscript.ProjectID != projectID {
		return nil, sql.ErrNoRows
	}
	nextTitle := firstNonBlank(strings.TrimSpace(title), manuscript.Title)
	if err := s.store.UpdateManuscript(ctx, manuscriptID, nextTitle, body, session.UserName); err != nil {
		return nil, err
	}
	if s.search != nil {
		s.search.IndexManuscript(search.ManuscriptRecord{
			ID:        manuscriptID,
			Title:     nextTitle,
			Body:      body,
			ProjectID: projectID,
		})
	}
	updated, err := s.store.GetManuscript(ctx, manuscriptID)
	if err != nil {
		return nil, err
	}
	return manuscriptPayload(updated), nil
}

func (s *Service) DeleteManuscript(ctx context.Context, session Session, projectID, manuscriptID string) error {
	if err := s.requireWriteRole(ctx, projectID, session.UserID); err != nil {
		return err
	}
	manuscript, err := s.store.GetManuscript(ctx, manuscriptID)
	if err != nil {
		return err
	}
	if manuscript.ProjectID != projectID {
		return sql.ErrNoRows
	}
	if err := s.store.DeleteManuscript(ctx, manuscriptID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteManuscript(manuscriptID)
	}
	return nil
}

// ExportManuscript renders a manuscript as PDF or standalone HTML.
func (s *Service) ExportManuscript(ctx context.Context, session Session, projectID, manuscriptID, format string) (*convert.Result, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	manuscript, err := s.store.GetManuscript(ctx, manuscriptID)
	if err != nil {
		return nil, err
	}
	if manuscript.ProjectID != projectID {
		return nil, sql.ErrNoRows
	}
	switch convert.Format(format) {
	case convert.FormatPDF, convert.FormatHTML:
	default:
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be pdf or html", nil)
	}
	result, err := s.convert.Convert(ctx, convert.Request{ManuscriptID: manuscriptID, Format: convert.Format(format)})
	if err != nil {
		if errors.Is(err, convert.ErrPDFDependencyMissing) {
			return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF rendering is not available on this server", nil)
		}
		return nil, err
	}
	return result, nil
}

// Search

func (s *Service) Search(ctx context.Context, session Session, projectID, query, filterType string, limit, offset int) (search.Response, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return search.Response{}, err
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: query}, nil
	}
	resp := s.search.Search(search.Query{
		Text:            query,
		FilterType:      search.ResultType(filterType),
		FilterProjectID: projectID,
		Limit:           limit,
		Offset:          offset,
	})
	// The project index is not filterable per project, so scope hits here.
	scoped := make([]search.Result, 0, len(resp.Results))
	for _, result := range resp.Results {
		if result.ProjectID != projectID {
			continue
		}
		scoped = append(scoped, result)
	}
	resp.Results = scoped
	return resp, nil
}

// Snapshots

func (s *Service) CreateSnapshot(ctx context.Context, session Session, projectID, name string) (map[string]any, error) {
	if err := s.requireOwnerRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, domainError(http.StatusServiceUnavailable, "SNAPSHOTS_UNAVAILABLE", "Snapshot storage is not configured", nil)
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	manuscripts, err := s.store.ListManuscripts(ctx, projectID)
	if err != nil {
		return nil, err
	}

	content := snapshot.Content{
		Title:       project.Title,
		Description: project.Description,
	}
	for _, manuscript := range manuscripts {
		content.Manuscripts = append(content.Manuscripts, snapshot.ManuscriptContent{
			ID:    manuscript.ID,
			Title: manuscript.Title,
			Body:  manuscript.Body,
		})
	}

	if err := s.snapshots.EnsureProjectRepo(projectID, content, session.UserName); err != nil {
		return nil, err
	}
	snapshotName := strings.TrimSpace(name)
	message := "Snapshot"
	if snapshotName != "" {
		message = "Snapshot: " + snapshotName
	}
	commit, err := s.snapshots.CommitSnapshot(projectID, content, session.UserName, message)
	if err != nil {
		return nil, err
	}
	if snapshotName != "" {
		if err := s.snapshots.CreateTag(projectID, commit.Hash, snapshotName); err != nil {
			log.Printf("snapshot: tag %s on %s: %v", snapshotName, projectID, err)
		}
	}

	archiveKey := ""
	if s.archive != nil {
		data, err := snapshot.BuildArchive(content, commit.CreatedAt)
		if err != nil {
			log.Printf("snapshot: build archive for %s: %v", projectID, err)
		} else {
			key := fmt.Sprintf("%s/%s.tar.gz", projectID, commit.Hash)
			if err := s.archive.Upload(ctx, key, data); err != nil {
				log.Printf("snapshot: upload archive %s: %v", key, err)
			} else {
				archiveKey = key
			}
		}
	}

	row := store.Snapshot{
		ID:         util.NewID("snp"),
		ProjectID:  projectID,
		Name:       snapshotName,
		CommitHash: commit.Hash,
		ArchiveKey: archiveKey,
		CreatedBy:  session.UserID,
	}
	if err := s.store.InsertSnapshot(ctx, row); err != nil {
		return nil, err
	}

	return map[string]any{
		"id":         row.ID,
		"projectId":  projectID,
		"name":       row.Name,
		"commitHash": row.CommitHash,
		"archiveKey": row.ArchiveKey,
		"createdBy":  row.CreatedBy,
		"createdAt":  commit.CreatedAt,
	}, nil
}

func (s *Service) ListSnapshots(ctx context.Context, session Session, projectID string) ([]map[string]any, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	snapshots, err := s.store.ListSnapshots(ctx, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(snapshots))
	for _, row := range snapshots {
		items = append(items, map[string]any{
			"id":         row.ID,
			"projectId":  row.ProjectID,
			"name":       row.Name,
			"commitHash": row.CommitHash,
			"archiveKey": row.ArchiveKey,
			"createdBy":  row.CreatedBy,
			"createdAt":  row.CreatedAt,
		})
	}
	return items, nil
}

func (s *Service) SnapshotHistory(ctx context.Context, session Session, projectID string, limit int) ([]snapshot.CommitInfo, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return []snapshot.CommitInfo{}, nil
	}
	return s.snapshots.History(projectID, limit)
}

// GetSnapshotContent returns the project content recorded at a commit.
func (s *Service) GetSnapshotContent(ctx context.Context, session Session, projectID, hash string) (map[string]any, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, domainError(http.StatusServiceUnavailable, "SNAPSHOTS_UNAVAILABLE", "Snapshot storage is not configured", nil)
	}
	content, err := s.snapshots.GetContentByHash(projectID, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "SNAPSHOT_NOT_FOUND", "No snapshot found for this commit", nil)
	}

	manuscripts := make([]map[string]any, 0, len(content.Manuscripts))
	for _, manuscript := range content.Manuscripts {
		manuscripts = append(manuscripts, map[string]any{
			"id":    manuscript.ID,
			"title": manuscript.Title,
			"body":  manuscript.Body,
		})
	}
	return map[string]any{
		"projectId":   projectID,
		"commitHash":  hash,
		"title":       content.Title,
		"description": content.Description,
		"manuscripts": manuscripts,
	}, nil
}

// DownloadSnapshotArchive fetches the tar.gz archive stored for a commit.
func (s *Service) DownloadSnapshotArchive(ctx context.Context, session Session, projectID, hash string) ([]byte, string, error) {
	if _, err := s.requireProjectRole(ctx, projectID, session.UserID); err != nil {
		return nil, "", err
	}
	if s.archive == nil {
		return nil, "", domainError(http.StatusServiceUnavailable, "ARCHIVES_UNAVAILABLE", "Archive storage is not configured", nil)
	}
	key := fmt.Sprintf("%s/%s.tar.gz", projectID, hash)
	data, err := s.archive.Download(ctx, key)
	if err != nil {
		return nil, "", domainError(http.StatusNotFound, "ARCHIVE_NOT_FOUND", "No archive stored for this commit", nil)
	}
	return data, hash + ".tar.gz", nil
}

// Helpers

func manuscriptPayload(manuscript store.Manuscript) map[string]any {
	return map[string]any{
		"id":        manuscript.ID,
		"projectId": manuscript.ProjectID,
		"title":     manuscript.Title,
		"body":      manuscript.Body,
		"updatedBy": manuscript.UpdatedBy,
		"createdAt": manuscript.CreatedAt,
		"updatedAt": manuscript.UpdatedAt,
	}
}

func invitationListPayload(invitations []store.Invitation) []map[string]any {
	items := make([]map[string]any, 0, len(invitations))
	for _, invitation := range invitations {
		items = append(items, map[string]any{
			"id":               invitation.ID,
			"projectId":        invitation.ProjectID,
			"role":             invitation.Role,
			"invitedUserEmail": invitation.InvitedUserEmail,
			"invitedUserName":  invitation.InvitedUserName,
			"message":          invitation.Message,
			"createdAt":        invitation.CreatedAt,
		})
	}
	return items
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// convertStoreAdapter bridges the data store to the convert package.
type convertStoreAdapter struct {
	store dataStore
}

func (a *convertStoreAdapter) GetManuscript(ctx context.Context, id string) (convert.ManuscriptInfo, error) {
	manuscript, err := a.store.GetManuscript(ctx, id)
	if err != nil {
		return convert.ManuscriptInfo{}, err
	}
	return convert.ManuscriptInfo{
		ID:        manuscript.ID,
		Title:     manuscript.Title,
		Body:      manuscript.Body,
		ProjectID: manuscript.ProjectID,
		UpdatedBy: manuscript.UpdatedBy,
		UpdatedAt: manuscript.UpdatedAt,
	}, nil
}

func (a *convertStoreAdapter) GetProject(ctx context.Context, id string) (convert.ProjectInfo, error) {
	project, err := a.store.GetProject(ctx, id)
	if err != nil {
		return convert.ProjectInfo{}, err
	}
	return convert.ProjectInfo{ID: project.ID, Title: project.Title}, nil
}
