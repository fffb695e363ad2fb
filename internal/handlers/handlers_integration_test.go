package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"blogapi/internal/handlers"
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/repositories"
	"blogapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services. Each call gets its own database.
func setupApp() (*fiber.App, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Article{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	articleRepo := repositories.NewGORMArticleRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	articleService := services.NewArticleService(articleRepo, nil) // nil RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService)
	articleHandler := handlers.NewArticleHandler(articleService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	articleHandler.RegisterPublicRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	articleHandler.RegisterProtectedRoutes(protectedRoutes)

	return app, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func signupUser(t *testing.T, app *fiber.App, username, email, password string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	payload := decodeBody(t, resp)
	token, _ := payload["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestSignupLoginAndMe(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	// Signup
	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "User created successfully", payload["message"])
	assert.NotEmpty(t, payload["token"])
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	_, hasPassword := user["Password"]
	assert.False(t, hasPassword)

	// Login
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeBody(t, resp)
	token, _ := payload["token"].(string)
	assert.NotEmpty(t, token)

	// Me with a valid token
	resp = doRequest(t, app, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeBody(t, resp)
	user = payload["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	// Me with the token truncated by one character
	resp = doRequest(t, app, http.MethodGet, "/api/v1/auth/me", token[:len(token)-1], nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Me with no token at all
	resp = doRequest(t, app, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupValidationAndDuplicates(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	// Password under 6 characters
	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	signupUser(t, app, "alice", "a@x.com", "secret1")

	// Same email
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice2",
		"email":    "a@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "user with this email or username already exists", payload["error"])

	// Same username
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "other@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginDoesNotRevealAccounts(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	signupUser(t, app, "alice", "a@x.com", "secret1")

	wrongPass := doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "wrongpass",
	})
	noUser := doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "secret1",
	})

	// Status and body are indistinguishable between the two failures.
	assert.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, noUser.StatusCode)
	wrongPassBody, err := io.ReadAll(wrongPass.Body)
	assert.NoError(t, err)
	noUserBody, err := io.ReadAll(noUser.Body)
	assert.NoError(t, err)
	assert.Equal(t, string(wrongPassBody), string(noUserBody))
}

func TestArticleOwnership(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	aliceToken := signupUser(t, app, "alice", "a@x.com", "secret1")
	bobToken := signupUser(t, app, "bob", "b@x.com", "secret2")

	// Unauthenticated creation is rejected by the guard.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/articles", "", map[string]interface{}{
		"title":   "Nope",
		"content": "no token",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Alice creates an article.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/articles", aliceToken, map[string]interface{}{
		"title":   "Hello",
		"content": "First post",
		"tags":    []string{"intro", "go"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	article := decodeBody(t, resp)
	articleID := article["id"].(string)
	assert.Equal(t, "alice", article["author"])

	// Anyone can read it.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/articles/"+articleID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Bob cannot update it.
	resp = doRequest(t, app, http.MethodPut, "/api/v1/articles/"+articleID, bobToken, map[string]interface{}{
		"title":   "Hijacked",
		"content": "mine now",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "you can only edit your own articles", payload["error"])

	// Bob cannot delete it.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/articles/"+articleID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	payload = decodeBody(t, resp)
	assert.Equal(t, "you can only delete your own articles", payload["error"])

	// Alice can update it; the creator reference survives.
	resp = doRequest(t, app, http.MethodPut, "/api/v1/articles/"+articleID, aliceToken, map[string]interface{}{
		"title":   "Hello v2",
		"content": "Edited post",
		"author":  "alice",
		"tags":    []string{"intro"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeBody(t, resp)
	assert.Equal(t, "Hello v2", payload["title"])

	// Deleting a nonexistent article is 404, never 403, even authenticated.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/articles/no-such-id", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Alice deletes her article.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/articles/"+articleID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/articles/"+articleID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestArticleListingAndFilters(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	aliceToken := signupUser(t, app, "alice", "a@x.com", "secret1")

	for _, a := range []map[string]interface{}{
		{"title": "Tech post", "content": "x", "tags": []string{"tech"}},
		{"title": "Life post", "content": "y", "tags": []string{"life"}},
	} {
		resp := doRequest(t, app, http.MethodPost, "/api/v1/articles", aliceToken, a)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// Listing is public.
	resp := doRequest(t, app, http.MethodGet, "/api/v1/articles", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var articles []map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&articles))
	assert.Len(t, articles, 2)

	// Tag filter narrows the result.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/articles?tag=tech", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	articles = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&articles))
	assert.Len(t, articles, 1)
	assert.Equal(t, "Tech post", articles[0]["title"])

	// A malformed date filter is a validation error.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/articles?date=not-a-date", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
