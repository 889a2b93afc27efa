package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"joblisting/internal/account"
	"joblisting/internal/application"
	"joblisting/internal/auth"
	"joblisting/internal/contact"
	"joblisting/internal/database"
	"joblisting/internal/database/dbtest"
	"joblisting/internal/errcode"
	"joblisting/internal/job"
	"joblisting/internal/notification"
	"joblisting/internal/resume"
)

const adminPassword = "admin123"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestKeys(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	return privatePEM, publicPEM
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	_, err = database.EnsureAdmin(context.Background(), db, hash)
	require.NoError(t, err)

	privatePEM, publicPEM := newTestKeys(t)
	authService, err := auth.NewAuthService(privatePEM, publicPEM, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifications := notification.NewService(db, nil, logger)

	router := NewRouter(logger)
	RegisterRoutes(router, Deps{
		Accounts:      account.NewService(db, logger),
		Jobs:          job.NewService(db),
		Applications:  application.NewService(db, notifications, logger),
		Notifications: notifications,
		Resumes:       resume.NewService(db),
		Contact:       contact.NewService(db, notifications, logger),
		Auth:          authService,
		Logger:        logger,
	})
	return &testServer{router: router, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, username, password string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", gin.H{
		"username":         username,
		"password":         password,
		"confirm_password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "pw-alice")

	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", gin.H{
		"username": "alice", "password": "x", "confirm_password": "x",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errcode.UsernameTaken, decode[errorBody](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errcode.InvalidCredentials, decode[errorBody](t, rec).Code)

	token := s.login(t, "alice", "pw-alice")
	rec = s.do(t, http.MethodGet, "/v1/notifications", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/notifications", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterRejectsMismatchedConfirmation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", gin.H{
		"username": "bob", "password": "one", "confirm_password": "two",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errcode.InvalidInput, decode[errorBody](t, rec).Code)
}

func TestRepeatedLoginKeepsOneActiveSession(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "pw")

	first := s.login(t, "alice", "pw")
	second := s.login(t, "alice", "pw")

	var active int64
	require.NoError(t, s.db.Model(&database.Session{}).Where("username = ? AND is_active = ?", "alice", true).Count(&active).Error)
	assert.EqualValues(t, 1, active)

	// 令牌绑定签发时的会话，重新登录后旧令牌失效。
	rec := s.do(t, http.MethodGet, "/v1/resume/status", first, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errcode.InvalidCredentials, decode[errorBody](t, rec).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/resume/status", second, nil).Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "pw")
	customer := s.login(t, "alice", "pw")

	rec := s.do(t, http.MethodGet, "/v1/admin/stats", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := s.login(t, database.AdminUsername, adminPassword)
	rec = s.do(t, http.MethodGet, "/v1/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]int64](t, rec)
	assert.EqualValues(t, 2, stats["active_users"])
	assert.Zero(t, stats["jobs"])
}

func TestJobCRUD(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, database.AdminUsername, adminPassword)

	payload := gin.H{
		"title": "Engineer", "company": "Acme", "location": "Remote",
		"salary": "100k", "description": "<b>Build</b> things",
	}
	rec := s.do(t, http.MethodPost, "/v1/jobs", admin, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]uint](t, rec)["id"]
	require.NotZero(t, id)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/v1/jobs/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[database.Job](t, rec)
	assert.Equal(t, "Build things", got.Description)

	payload["salary"] = "  "
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/jobs/%d", id), admin, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload["salary"] = "120k"
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/jobs/%d", id), admin, payload)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPut, "/v1/jobs/9999", admin, payload)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/jobs/%d", id), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/jobs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string][]database.Job](t, rec)["jobs"])
}

func TestApplicationFlowNotifiesBothSides(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, database.AdminUsername, adminPassword)
	s.register(t, "alice", "pw")
	alice := s.login(t, "alice", "pw")

	rec := s.do(t, http.MethodPost, "/v1/jobs", admin, gin.H{
		"title": "Engineer", "company": "Acme", "location": "Remote", "salary": "100k", "description": "d",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	jobID := decode[map[string]uint](t, rec)["id"]

	rec = s.do(t, http.MethodPost, "/v1/applications", alice, gin.H{"job_id": jobID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "name and email are required without a filled resume")

	rec = s.do(t, http.MethodPut, "/v1/resume", alice, gin.H{
		"full_name": "Alice A", "email": "a@x.com", "education": "BSc", "experience": "5y", "skills": "Go",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/v1/applications", alice, gin.H{"job_id": jobID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode[database.Application](t, rec)
	assert.Equal(t, "Alice A", app.ApplicantName)
	assert.Equal(t, "Engineer", app.JobTitle)
	assert.Equal(t, database.ApplicationPending, app.Status)

	rec = s.do(t, http.MethodGet, "/v1/notifications?unread=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	adminNotes := decode[map[string][]database.Notification](t, rec)["notifications"]
	require.Len(t, adminNotes, 1)
	assert.Equal(t, "New application from Alice A (alice) for job: Engineer", adminNotes[0].Message)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/applications/%d/approve", app.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, database.ApplicationApproved, decode[database.Application](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/v1/notifications/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]int64](t, rec)["unread"])

	rec = s.do(t, http.MethodGet, "/v1/notifications", alice, nil)
	aliceNotes := decode[map[string][]database.Notification](t, rec)["notifications"]
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, "Your application for 'Engineer' has been approved.", aliceNotes[0].Message)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/applications/%d/status", app.ID), admin, gin.H{"status": "Interview", "notify": false})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/applications/mine", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[map[string][]application.Summary](t, rec)["applications"]
	require.Len(t, mine, 1)
	assert.Equal(t, "Interview", mine[0].Status)

	rec = s.do(t, http.MethodGet, "/v1/notifications/unread-count", alice, nil)
	assert.EqualValues(t, 1, decode[map[string]int64](t, rec)["unread"])
}

func TestNotificationMarkReadIsOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, database.AdminUsername, adminPassword)
	s.register(t, "alice", "pw")
	alice := s.login(t, "alice", "pw")

	rec := s.do(t, http.MethodPost, "/v1/contact", alice, gin.H{"subject": "Help", "message": "Cannot apply"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/v1/notifications", admin, nil)
	notes := decode[map[string][]database.Notification](t, rec)["notifications"]
	require.Len(t, notes, 1)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/notifications/%d/read", notes[0].ID), alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/notifications/%d/read", notes[0].ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/notifications/unread-count", admin, nil)
	assert.EqualValues(t, 0, decode[map[string]int64](t, rec)["unread"])
}

func TestContactRespond(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, database.AdminUsername, adminPassword)
	s.register(t, "alice", "pw")
	alice := s.login(t, "alice", "pw")

	rec := s.do(t, http.MethodPost, "/v1/contact", alice, gin.H{"subject": "Help", "message": "Cannot apply"})
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode[database.ContactMessage](t, rec)

	rec = s.do(t, http.MethodGet, "/v1/admin/contact/unread-count", admin, nil)
	assert.EqualValues(t, 1, decode[map[string]int64](t, rec)["unread"])

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/contact/%d/respond", msg.ID), admin, gin.H{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/contact/%d/respond", msg.ID), admin, gin.H{"response": "Try again now"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[database.ContactMessage](t, rec)
	assert.Equal(t, database.ContactResolved, updated.Status)
	require.NotNil(t, updated.AdminResponse)
	assert.Equal(t, "Try again now", *updated.AdminResponse)

	rec = s.do(t, http.MethodGet, "/v1/notifications", alice, nil)
	notes := decode[map[string][]database.Notification](t, rec)["notifications"]
	require.Len(t, notes, 1)
	assert.Equal(t, "Admin responded to your contact message: Help", notes[0].Message)

	rec = s.do(t, http.MethodGet, "/v1/contact/mine", alice, nil)
	mine := decode[map[string][]contact.Summary](t, rec)["messages"]
	require.Len(t, mine, 1)
	assert.Equal(t, database.ContactResolved, mine[0].Status)
}

func TestAdminDeleteUsers(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, database.AdminUsername, adminPassword)
	s.register(t, "alice", "pw")
	s.register(t, "bob", "pw")

	var alice database.User
	require.NoError(t, s.db.Where("username = ?", "alice").First(&alice).Error)
	var adminUser database.User
	require.NoError(t, s.db.Where("username = ?", database.AdminUsername).First(&adminUser).Error)

	rec := s.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", alice.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d?username=admin", adminUser.ID), admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errcode.CannotDeleteAdmin, decode[errorBody](t, rec).Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d?username=bob", alice.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d?username=alice", alice.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bulk struct {
		Count   int              `json:"count"`
		Deleted []string         `json:"deleted"`
		Failed  []failedDeletion `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bulk))
	assert.Equal(t, 1, bulk.Count)
	assert.Equal(t, []string{"bob"}, bulk.Deleted)
	assert.Empty(t, bulk.Failed)

	rec = s.do(t, http.MethodGet, "/v1/admin/users", admin, nil)
	users := decode[map[string][]account.UserStatus](t, rec)["users"]
	require.Len(t, users, 1)
	assert.Equal(t, database.AdminUsername, users[0].Username)
	assert.Equal(t, account.StatusOnline, users[0].Status)
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/v1/jobs/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/jobs/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
