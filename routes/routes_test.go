package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"practicetests/handlers"
	"practicetests/models"
	"practicetests/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "routes-secret"

type testEnv struct {
	router     *gin.Engine
	db         *gorm.DB
	hub        *services.Hub
	admin      *models.User
	adminToken string
	userToken  string
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	authService := services.NewAuthService(db, testSecret, time.Hour)
	questionService := services.NewQuestionService(db, nil, 0)
	hub := services.NewHub()
	go hub.Run()

	router := gin.New()
	SetupRoutes(router, handlers.NewAuthHandler(authService), handlers.NewQuestionHandler(questionService, hub), hub, testSecret)

	ctx := context.Background()
	admin, err := authService.EnsureAdmin(ctx, "admin@example.com", "admin-pw", "Admin")
	require.NoError(t, err)
	adminToken, err := authService.GenerateToken(admin)
	require.NoError(t, err)

	user, err := authService.Register(ctx, &services.RegisterRequest{Email: "user@example.com", Password: "user-pw", Name: "User"})
	require.NoError(t, err)

	return &testEnv{
		router:     router,
		db:         db,
		hub:        hub,
		admin:      admin,
		adminToken: adminToken,
		userToken:  user.Token,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func questionBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "What is the term for a group of kittens?",
		"description": "",
		"category":    "Cats",
		"difficulty":  "easy",
		"options": []map[string]string{
			{"text": "Clowder", "value": "A"},
			{"text": "Litter", "value": "B"},
			{"text": "Kindle", "value": "C"},
			{"text": "Pack", "value": "D"},
		},
		"correctAnswerValue": "B",
		"explanation":        "A clowder is a group of adult cats.",
	}
}

func decodeQuestion(t *testing.T, env envelope) models.Question {
	t.Helper()
	var q models.Question
	require.NoError(t, json.Unmarshal(env.Data, &q))
	return q
}

func TestQuestionRoutes_WriteRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodPost, "/api/questions", "", questionBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Unauthorized - No token provided", env.Error)

	rec, env = e.do(t, http.MethodPost, "/api/questions", "garbage", questionBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized - Invalid token", env.Error)

	rec, env = e.do(t, http.MethodPost, "/api/questions", e.userToken, questionBody())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden - Admin access required", env.Error)

	rec, _ = e.do(t, http.MethodPut, "/api/questions/1", e.userToken, questionBody())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.do(t, http.MethodDelete, "/api/questions/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var count int64
	require.NoError(t, e.db.Model(&models.Question{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestQuestionRoutes_Lifecycle(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodPost, "/api/questions", e.adminToken, questionBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	created := decodeQuestion(t, env)
	assert.Equal(t, e.admin.ID, created.CreatedBy)
	require.Len(t, created.Options, 4)
	assert.Equal(t, fmt.Sprint(created.Options[1].ID), created.CorrectAnswerID)
	assert.True(t, created.Options[1].IsCorrect)

	path := fmt.Sprintf("/api/questions/%d", created.ID)

	rec, env = e.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeQuestion(t, env)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Options[0].ID, fetched.Options[0].ID)

	rec, env = e.do(t, http.MethodGet, "/api/questions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Question
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	// a second question keeps the option id sequence above the replaced rows
	rec, _ = e.do(t, http.MethodPost, "/api/questions", e.adminToken, questionBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	update := questionBody()
	update["title"] = "Updated title"
	update["options"] = []map[string]string{{"text": "Litter", "value": "A"}, {"text": "Clowder", "value": "B"}}
	update["correctAnswerValue"] = "A"
	rec, env = e.do(t, http.MethodPut, path, e.adminToken, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeQuestion(t, env)
	assert.Equal(t, "Updated title", updated.Title)
	require.Len(t, updated.Options, 2)
	assert.True(t, updated.Options[0].IsCorrect)
	for _, opt := range updated.Options {
		for _, old := range created.Options {
			assert.NotEqual(t, old.ID, opt.ID)
		}
	}

	rec, env = e.do(t, http.MethodDelete, path, e.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d}`, created.ID), string(env.Data))

	rec, env = e.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "question not found", env.Error)

	rec, _ = e.do(t, http.MethodDelete, path, e.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuestionRoutes_Errors(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodGet, "/api/questions/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid question ID", env.Error)

	for _, id := range []string{"4294967296", "9223372036854775808"} {
		rec, env = e.do(t, http.MethodGet, "/api/questions/"+id, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "question not found", env.Error)
	}

	rec, _ = e.do(t, http.MethodPut, "/api/questions/999", e.adminToken, questionBody())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = e.do(t, http.MethodPost, "/api/questions", e.adminToken, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", env.Error)

	body := questionBody()
	delete(body, "difficulty")
	rec, env = e.do(t, http.MethodPost, "/api/questions", e.adminToken, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "difficulty is required")

	rec, env = e.do(t, http.MethodGet, "/api/questions?difficulty=impossible", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, env = e.do(t, http.MethodGet, "/api/questions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestQuestionRoutes_FilterByCategory(t *testing.T) {
	e := newTestEnv(t)

	for _, category := range []string{"Cats", "Dogs", "Cats"} {
		body := questionBody()
		body["category"] = category
		rec, _ := e.do(t, http.MethodPost, "/api/questions", e.adminToken, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, env := e.do(t, http.MethodGet, "/api/questions?category=Dogs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Question
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Dogs", list[0].Category)
}

func TestAuthRoutes(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "new@example.com", "password": "pw", "name": "New"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, models.RoleUser, registered.User.Role)
	assert.NotContains(t, string(env.Data), "password")

	rec, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "new@example.com", "password": "pw", "name": "New"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user already exists", env.Error)

	rec, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", env.Error)

	rec, env = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "new@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", env.Error)

	rec, env = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "new@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	rec, env = e.do(t, http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.User
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "new@example.com", profile.Email)

	rec, _ = e.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQuestionEventsWebSocket(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/questions"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+e.userToken, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+e.adminToken, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return e.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec, env := e.do(t, http.MethodPost, "/api/questions", e.adminToken, questionBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeQuestion(t, env)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string          `json:"type"`
		Payload models.Question `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.EventQuestionCreated, msg.Type)
	assert.Equal(t, created.ID, msg.Payload.ID)
}
