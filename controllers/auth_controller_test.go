package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/intrafeed/intrafeed/config"
	"github.com/intrafeed/intrafeed/graph"
	"github.com/intrafeed/intrafeed/middleware"
	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{
		JWTSecret:         "test-secret",
		AzureClientID:     "client-id",
		AzureClientSecret: "client-secret",
		FrontendURL:       "https://intranet.example",
	})
	utils.SetRedis(nil)
	os.Exit(m.Run())
}

func setupControllerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:controllers-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// fakeMicrosoft serves the token endpoint and the Graph profile.
func fakeMicrosoft(t *testing.T, profile map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "auth-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"graph-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer graph-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("/me/photo/$value", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAuthRouter(t *testing.T, gdb *gorm.DB, ms *httptest.Server) *gin.Engine {
	t.Helper()
	gc := graph.NewClient(ms.URL)
	t.Cleanup(func() { _ = gc.Close() })
	ac := NewAuthController(services.NewUserService(gdb, nil), gc)
	ac.endpoint = oauth2.Endpoint{AuthURL: ms.URL + "/authorize", TokenURL: ms.URL + "/token"}

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.GET("/login", ac.OAuthRedirect)
	r.GET("/callback", ac.OAuthCallback)
	r.GET("/me", middleware.AuthRequired(gdb), ac.Me)
	r.POST("/logout", middleware.AuthRequired(gdb), ac.Logout)
	return r
}

func startLogin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var env struct {
		Data struct {
			AuthorizationURL string `json:"authorization_url"`
			State            string `json:"state"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if env.Data.State == "" || !strings.Contains(env.Data.AuthorizationURL, "state="+env.Data.State) {
		t.Fatalf("unexpected login payload %s", w.Body.String())
	}
	return env.Data.State
}

func TestOAuthCallbackCreatesUserAndSession(t *testing.T) {
	gdb := setupControllerDB(t)
	ms := fakeMicrosoft(t, map[string]string{
		"id":                "abc",
		"givenName":         "Grace",
		"surname":           "Hopper",
		"userPrincipalName": "Grace.Hopper@Corp.Example",
		"department":        "Ressources Humaines",
		"jobTitle":          "Chargée de recrutement",
	})
	r := newAuthRouter(t, gdb, ms)

	state := startLogin(t, r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state="+url.QueryEscape(state), nil))
	if w.Code != http.StatusFound {
		t.Fatalf("callback: %d %s", w.Code, w.Body.String())
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://intranet.example/auth/callback#token=") {
		t.Fatalf("unexpected redirect %q", loc)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var user models.User
	if err := gdb.Where("email = ?", "grace.hopper@corp.example").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if !user.IsOAuthUser || user.Service != models.ServiceRH {
		t.Fatalf("unexpected user %+v", user)
	}

	// The session cookie alone authenticates browser calls.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("me via session: %d %s", w.Code, w.Body.String())
	}

	// A state is single use.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state="+url.QueryEscape(state), nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("replayed state must fail, got %d", w.Code)
	}
}

func TestOAuthCallbackFailures(t *testing.T) {
	gdb := setupControllerDB(t)
	ms := fakeMicrosoft(t, map[string]string{"mail": "x@corp.example", "givenName": "X"})
	r := newAuthRouter(t, gdb, ms)

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"denied", "error=access_denied", http.StatusBadRequest},
		{"missing code", "state=abc", http.StatusBadRequest},
		{"unknown state", "code=auth-code&state=never-issued", http.StatusBadRequest},
		{"bad code", "code=wrong&state=" + startLogin(t, r), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?"+tc.query, nil))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestOAuthCallbackRefusesLocalAccount(t *testing.T) {
	gdb := setupControllerDB(t)
	users := services.NewUserService(gdb, nil)
	if _, err := users.Register(context.Background(), services.RegisterInput{
		FirstName: "Local", LastName: "User", Email: "local@corp.example", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	ms := fakeMicrosoft(t, map[string]string{"mail": "local@corp.example", "givenName": "Local"})
	r := newAuthRouter(t, gdb, ms)

	state := startLogin(t, r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state="+state, nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
}

func TestLogoutClearsSession(t *testing.T) {
	gdb := setupControllerDB(t)
	ms := fakeMicrosoft(t, map[string]string{"mail": "s@corp.example", "givenName": "S"})
	r := newAuthRouter(t, gdb, ms)

	state := startLogin(t, r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state="+state, nil))
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}

	// The old cookie still carries the revoked token.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked session token, got %d", w.Code)
	}
}
