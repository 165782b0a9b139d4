package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"teamtask/configs"
	"teamtask/internal/api/v1/handlers"
	"teamtask/internal/cache"
	"teamtask/internal/config"
	"teamtask/internal/repository"
	"teamtask/pkg/crypto"
	"teamtask/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Message string            `json:"message"`
	Success bool              `json:"success"`
	Status  int               `json:"status"`
	Data    json.RawMessage   `json:"data"`
	Errors  []json.RawMessage `json:"errors"`
}

type testServer struct {
	t    *testing.T
	app  *fiber.App
	deps *config.Dependencies
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.CreateTableIfNotExists(context.Background(), db))

	cfg := configs.Config{
		AppEnv:           "test",
		JWTSecret:        "test-secret",
		JWTExpire:        time.Hour,
		CORSOrigins:      "http://localhost:3000",
		ResetTokenTTL:    10 * time.Minute,
		ExposeResetToken: true,
	}
	deps := config.NewDependencies(cfg, db, config.WithPasswordHasher(crypto.NewPasswordHasher(bcrypt.MinCost)))
	return &testServer{t: t, app: NewApp(deps), deps: deps}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(s.t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, Prefix+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

type taskData struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	CreatedBy  int64  `json:"createdBy"`
	AssignedTo *int64 `json:"assignedTo"`
}

type pageData struct {
	Tasks      []taskData `json:"tasks"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

func (s *testServer) register(name, email string) authData {
	s.t.Helper()
	status, env := s.do("POST", "/auth/register", "", fiber.Map{"name": name, "email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusCreated, status, env.Message)
	var a authData
	decodeData(s.t, env, &a)
	return a
}

func (s *testServer) createTask(token string, body fiber.Map) taskData {
	s.t.Helper()
	status, env := s.do("POST", "/tasks", token, body)
	require.Equal(s.t, http.StatusCreated, status, env.Message)
	var task taskData
	decodeData(s.t, env, &task)
	return task
}

func (s *testServer) makeAdmin(email string) string {
	s.t.Helper()
	ctx := context.Background()
	admin, err := s.deps.Store.Repos().Users.UpsertAdmin(ctx, "Admin User", email, "admin123")
	require.NoError(s.t, err)
	token, err := s.deps.Tokens.Generate(admin)
	require.NoError(s.t, err)
	return token
}

func TestScenarioRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	alice := s.register("Alice", "alice@x.com")
	assert.NotEmpty(t, alice.Token)
	assert.Equal(t, "user", alice.User.Role)

	status, env := s.do("POST", "/auth/login", "", fiber.Map{"email": "alice@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
	var login authData
	decodeData(t, env, &login)
	assert.Equal(t, alice.User.ID, login.User.ID)

	wrongStatus, wrong := s.do("POST", "/auth/login", "", fiber.Map{"email": "alice@x.com", "password": "nope"})
	unknownStatus, unknown := s.do("POST", "/auth/login", "", fiber.Map{"email": "ghost@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, http.StatusUnauthorized, unknownStatus)
	assert.Equal(t, unknown.Message, wrong.Message)

	status, env = s.do("POST", "/auth/register", "", fiber.Map{"name": "Alice", "email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", env.Message)

	status, env = s.do("GET", "/auth/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var me authData
	require.NoError(t, json.Unmarshal(env.Data, &me.User))
	assert.Equal(t, "alice@x.com", me.User.Email)

	status, _ = s.do("GET", "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do("POST", "/auth/register", "", fiber.Map{"name": " ", "email": "nope", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation error", env.Message)
	assert.Len(t, env.Errors, 3)

	status, env = s.do("POST", "/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Bad request", env.Message)
}

func TestScenarioDeleteOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	bob := s.register("Bob", "bob@x.com")

	task := s.createTask(alice.Token, fiber.Map{"title": "Write report", "priority": "High"})
	assert.Equal(t, "Todo", task.Status)
	assert.Equal(t, "High", task.Priority)
	assert.Equal(t, alice.User.ID, task.CreatedBy)

	status, env := s.do("DELETE", "/tasks/"+itoa(task.ID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to delete this task", env.Message)

	status, _ = s.do("DELETE", "/tasks/"+itoa(task.ID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do("GET", "/tasks/"+itoa(task.ID), alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestScenarioComments(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	bob := s.register("Bob", "bob@x.com")
	task := s.createTask(alice.Token, fiber.Map{"title": "Plan sprint"})

	status, env := s.do("POST", "/comments", bob.Token, fiber.Map{"taskId": task.ID, "content": "I can help"})
	require.Equal(t, http.StatusCreated, status)
	var comment struct {
		ID       int64  `json:"id"`
		UserName string `json:"userName"`
	}
	decodeData(t, env, &comment)
	assert.Equal(t, "Bob", comment.UserName)

	status, _ = s.do("PUT", "/comments/"+itoa(comment.ID), bob.Token, fiber.Map{"content": "I can help tomorrow"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do("PUT", "/comments/"+itoa(comment.ID), alice.Token, fiber.Map{"content": "no"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do("POST", "/comments", bob.Token, fiber.Map{"taskId": 999, "content": "lost"})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.do("POST", "/comments", bob.Token, fiber.Map{"taskId": task.ID, "content": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, env.Errors, 1)

	status, env = s.do("GET", "/comments/task/"+itoa(task.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var comments []struct {
		Content string `json:"content"`
	}
	decodeData(t, env, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "I can help tomorrow", comments[0].Content)

	status, _ = s.do("DELETE", "/comments/"+itoa(comment.ID), alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do("DELETE", "/comments/"+itoa(comment.ID), bob.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do("DELETE", "/comments/"+itoa(comment.ID), bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestScenarioPagination(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	older := s.createTask(alice.Token, fiber.Map{"title": "First"})
	s.createTask(alice.Token, fiber.Map{"title": "Second"})

	status, env := s.do("GET", "/tasks/my?page=2&limit=1", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var p pageData
	decodeData(t, env, &p)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, older.ID, p.Tasks[0].ID)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 2, p.Total)

	status, env = s.do("GET", "/tasks/my", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &p)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)

	for _, q := range []string{"?page=0", "?limit=-1", "?page=abc"} {
		status, _ = s.do("GET", "/tasks/my"+q, alice.Token, nil)
		assert.Equal(t, http.StatusBadRequest, status, q)
	}

	status, env = s.do("GET", "/tasks/my?limit=1000", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &p)
	assert.Equal(t, 100, p.Limit)
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	bob := s.register("Bob", "bob@x.com")
	carol := s.register("Carol", "carol@x.com")
	task := s.createTask(alice.Token, fiber.Map{"title": "Ship it", "assignedTo": bob.User.ID})
	require.NotNil(t, task.AssignedTo)
	path := "/tasks/" + itoa(task.ID)

	status, _ := s.do("PUT", path, carol.Token, fiber.Map{"status": "Done"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := s.do("PUT", path, bob.Token, fiber.Map{"status": "In Progress"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task updated successfully", env.Message)
	assert.Empty(t, env.Data)

	status, env = s.do("PUT", path, bob.Token, fiber.Map{"status": "Finished", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, env.Errors, 2)

	status, _ = s.do("PUT", path, bob.Token, fiber.Map{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do("PUT", path, alice.Token, fiber.Map{"assignedTo": 999})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do("PUT", "/tasks/999", alice.Token, fiber.Map{"status": "Done"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do("PUT", path, alice.Token, `{"assignedTo": null}`)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do("GET", path, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var got taskData
	decodeData(t, env, &got)
	assert.Equal(t, "In Progress", got.Status)
	assert.Equal(t, "Ship it", got.Title)
	assert.Nil(t, got.AssignedTo)

	// Bob is no longer assigned.
	status, _ = s.do("PUT", path, bob.Token, fiber.Map{"status": "Done"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")

	status, env := s.do("POST", "/tasks", alice.Token, fiber.Map{"title": "", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, status)
	var errs []handlers.FieldError
	for _, raw := range env.Errors {
		var fe handlers.FieldError
		require.NoError(t, json.Unmarshal(raw, &fe))
		errs = append(errs, fe)
	}
	assert.ElementsMatch(t, []handlers.FieldError{
		{Field: "title", Message: "Title is required"},
		{Field: "priority", Message: "Invalid priority"},
	}, errs)

	status, env = s.do("POST", "/tasks", alice.Token, fiber.Map{"title": "x", "assignedTo": 999})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Assigned user does not exist", env.Message)

	status, _ = s.do("GET", "/tasks/abc", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestActivitiesFeedIsPublic(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	task := s.createTask(alice.Token, fiber.Map{"title": "Visible"})
	s.do("PUT", "/tasks/"+itoa(task.ID), alice.Token, fiber.Map{"status": "Done"})
	s.do("DELETE", "/tasks/"+itoa(task.ID), alice.Token, nil)

	status, env := s.do("GET", "/activities", "", nil)
	require.Equal(t, http.StatusOK, status)
	var acts []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		UserName    string `json:"userName"`
		TaskID      *int64 `json:"taskId"`
	}
	decodeData(t, env, &acts)
	require.Len(t, acts, 3)
	assert.Equal(t, "task_deleted", acts[0].Type)
	assert.Equal(t, `Alice deleted task "Visible"`, acts[0].Description)
	assert.Equal(t, "task_updated", acts[1].Type)
	assert.Equal(t, "task_created", acts[2].Type)
	assert.Equal(t, "Alice", acts[2].UserName)
	for _, a := range acts {
		assert.Nil(t, a.TaskID)
	}
}

func TestAssignableUsers(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	s.register("Bob", "bob@x.com")

	status, env := s.do("GET", "/tasks/users", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]interface{}
	decodeData(t, env, &users)
	require.Len(t, users, 2)
	assert.ElementsMatch(t, []string{"id", "name", "email"}, keys(users[0]))
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@x.com")
	bob := s.register("Bob", "bob@x.com")
	admin := s.makeAdmin("admin@example.com")
	task := s.createTask(alice.Token, fiber.Map{"title": "Audit me"})
	s.do("POST", "/comments", bob.Token, fiber.Map{"taskId": task.ID, "content": "hi"})

	for _, path := range []string{"/admin/tasks", "/admin/users", "/admin/comments", "/admin/stats"} {
		status, _ := s.do("GET", path, alice.Token, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		status, _ = s.do("GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	status, env := s.do("GET", "/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var stats map[string]int
	decodeData(t, env, &stats)
	assert.Equal(t, map[string]int{"totalUsers": 3, "totalTasks": 1, "totalComments": 1}, stats)

	status, env = s.do("GET", "/admin/tasks?limit=5", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var p pageData
	decodeData(t, env, &p)
	assert.Equal(t, 1, p.Total)

	status, env = s.do("GET", "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "password")

	status, env = s.do("GET", "/admin/comments", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var comments []struct {
		UserName  string `json:"userName"`
		TaskTitle string `json:"taskTitle"`
	}
	decodeData(t, env, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Audit me", comments[0].TaskTitle)

	rolePath := "/admin/users/" + itoa(bob.User.ID) + "/role"
	status, _ = s.do("PUT", rolePath, admin, fiber.Map{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do("PUT", "/admin/users/999/role", admin, fiber.Map{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do("PUT", rolePath, admin, fiber.Map{"role": "admin"})
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do("GET", "/admin/stats", bob.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@x.com")

	status, env := s.do("POST", "/auth/forgot-password", "", fiber.Map{"email": "ghost@x.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, env.Data)
	unknownMessage := env.Message

	status, env = s.do("POST", "/auth/forgot-password", "", fiber.Map{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, unknownMessage, env.Message)
	var reset struct {
		ResetToken string `json:"resetToken"`
	}
	decodeData(t, env, &reset)
	require.NotEmpty(t, reset.ResetToken)

	status, _ = s.do("PUT", "/auth/reset-password/deadbeef", "", fiber.Map{"password": "newpass1"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do("PUT", "/auth/reset-password/"+reset.ResetToken, "", fiber.Map{"password": "newpass1"})
	require.Equal(t, http.StatusOK, status)

	// tokens are single use
	status, _ = s.do("PUT", "/auth/reset-password/"+reset.ResetToken, "", fiber.Map{"password": "again12"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do("POST", "/auth/login", "", fiber.Map{"email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.do("POST", "/auth/login", "", fiber.Map{"email": "alice@x.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, status)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var health handlers.HealthStatus
	decodeData(t, env, &health)
	assert.Equal(t, "ok", health.Database)
	assert.Equal(t, "disabled", health.Cache)
	assert.Nil(t, health.CacheStats)
}

type countingCache struct {
	cache.NopTaskCache
	stats cache.Stats
}

func (c countingCache) Stats() cache.Stats { return c.stats }

func TestHealthReportsCacheStats(t *testing.T) {
	s := newTestServer(t)
	s.deps.TaskCache = countingCache{stats: cache.Stats{Hits: 7, Misses: 2}}

	status, env := s.do("GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, status)

	var health handlers.HealthStatus
	decodeData(t, env, &health)
	assert.Equal(t, "enabled", health.Cache)
	require.NotNil(t, health.CacheStats)
	assert.EqualValues(t, 7, health.CacheStats.Hits)
	assert.EqualValues(t, 2, health.CacheStats.Misses)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
