package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/models/dto"
	sqliteRepos "github.com/yigit/unistud/internal/app/repositories/sqlite"
	"github.com/yigit/unistud/internal/config"
	"github.com/yigit/unistud/internal/db"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	deps   *Dependencies
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:     config.ServerConfig{Mode: "test"},
		Database:   config.DatabaseConfig{Driver: config.DriverSQLite},
		JWT:        config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiration: "1h", Issuer: "unistud-test"},
		Enrollment: config.EnrollmentConfig{DefaultMaxCapacity: 50},
	}

	ctx := context.Background()
	handle, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := sqliteRepos.EnsureSchema(ctx, handle); err != nil {
		t.Fatalf("schema: %v", err)
	}
	store := NewSQLiteStore(handle)
	t.Cleanup(store.Close)

	deps, err := BuildDependencies(cfg, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	return &apiClient{t: t, router: SetupRouter(cfg, deps, zerolog.Nop()), deps: deps}
}

func (a *apiClient) do(method, path, authHeader string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func (a *apiClient) register(email string) (token string, id int64) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		FirstName: "Test", LastName: "Student", Email: email, Password: "secret123",
	})
	if code != http.StatusCreated {
		a.t.Fatalf("register %s: status %d, error %+v", email, code, env.Error)
	}
	var auth dto.AuthResponse
	decode(a.t, env, &auth)

	bearer := "Bearer " + auth.Token
	code, env = a.do(http.MethodGet, "/api/v1/me", bearer, nil)
	if code != http.StatusOK {
		a.t.Fatalf("me %s: status %d", email, code)
	}
	var me dto.StudentResponse
	decode(a.t, env, &me)
	return bearer, me.ID
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestEnrollmentFlow(t *testing.T) {
	api := newAPI(t)

	alice, aliceID := api.register("alice@uni.example.org")
	_, bobID := api.register("bob@uni.example.org")
	_, carolID := api.register("carol@uni.example.org")

	code, env := api.do(http.MethodPost, "/api/v1/courses", alice, map[string]interface{}{"title": "Algorithms", "maxCapacity": 2})
	if code != http.StatusCreated {
		t.Fatalf("create course: status %d, error %+v", code, env.Error)
	}
	var course dto.CourseResponse
	decode(t, env, &course)

	enroll := func(studentID int64) (int, envelope) {
		return api.do(http.MethodPost, "/api/v1/students/enroll", alice, dto.EnrollmentRequest{StudentID: studentID, CourseID: course.ID})
	}

	for _, id := range []int64{aliceID, bobID} {
		if code, env := enroll(id); code != http.StatusOK {
			t.Fatalf("enroll %d: status %d, error %+v", id, code, env.Error)
		}
	}

	code, env = enroll(carolID)
	if code != http.StatusConflict || env.Error == nil || env.Error.Code != dto.ErrorCodeCapacityExceeded {
		t.Fatalf("expected capacity exceeded, got %d %+v", code, env.Error)
	}

	code, env = enroll(aliceID)
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.ErrorCodeInvalidRelation {
		t.Fatalf("expected invalid relation, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/courses/%d", course.ID), alice, nil)
	if code != http.StatusOK {
		t.Fatalf("get course: status %d", code)
	}
	decode(t, env, &course)
	if course.CurrentEnrollment != 2 || !course.IsFull || course.AvailableSpots != 0 || len(course.Students) != 2 {
		t.Fatalf("unexpected course view: %+v", course)
	}

	code, env = api.do(http.MethodPost, "/api/v1/students/unenroll", alice, dto.EnrollmentRequest{StudentID: bobID, CourseID: course.ID})
	if code != http.StatusOK {
		t.Fatalf("unenroll: status %d, error %+v", code, env.Error)
	}
	var bob dto.StudentResponse
	decode(t, env, &bob)
	if len(bob.Courses) != 0 {
		t.Fatalf("bob should have no courses, got %+v", bob.Courses)
	}

	if code, env := enroll(carolID); code != http.StatusOK {
		t.Fatalf("enroll carol after unenroll: status %d, error %+v", code, env.Error)
	}

	code, env = enroll(9999)
	if code != http.StatusNotFound || env.Error.Code != dto.ErrorCodeResourceNotFound {
		t.Fatalf("expected not found, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodGet, "/api/v1/courses/search?title=ALGO", alice, nil)
	if code != http.StatusOK {
		t.Fatalf("search: status %d", code)
	}
	var found dto.CourseListResponse
	decode(t, env, &found)
	if len(found.Courses) != 1 || found.Courses[0].Title != "Algorithms" {
		t.Fatalf("unexpected search result: %+v", found.Courses)
	}

	code, env = api.do(http.MethodGet, "/api/v1/students/with-courses", alice, nil)
	if code != http.StatusOK {
		t.Fatalf("students with courses: status %d", code)
	}
	var students dto.StudentListResponse
	decode(t, env, &students)
	enrolled := 0
	for _, s := range students.Students {
		enrolled += len(s.Courses)
	}
	if students.Pagination.TotalItems != 3 || enrolled != 2 {
		t.Fatalf("expected 3 students with 2 enrollments, got %d students and %d enrollments",
			students.Pagination.TotalItems, enrolled)
	}
}

func TestAccessGate(t *testing.T) {
	api := newAPI(t)
	bearer, _ := api.register("gate@uni.example.org")

	expired, _, err := api.deps.JWTService.IssueTokenWithTTL("gate@uni.example.org", -time.Minute)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	tests := map[string]struct {
		path     string
		header   string
		wantCode int
		wantErr  dto.ErrorCode
	}{
		"no header":       {path: "/api/v1/students", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		"wrong scheme":    {path: "/api/v1/students", header: "Token abc", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		"lowercase":       {path: "/api/v1/students", header: strings.Replace(bearer, "Bearer", "bearer", 1), wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		"garbage token":   {path: "/api/v1/students", header: "Bearer not.a.jwt", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeInvalidToken},
		"expired token":   {path: "/api/v1/students", header: "Bearer " + expired, wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeExpiredToken},
		"valid token":     {path: "/api/v1/students", header: bearer, wantCode: http.StatusOK},
		"public health":   {path: "/api/v1/health", wantCode: http.StatusOK},
		"bad id":          {path: "/api/v1/courses/abc", header: bearer, wantCode: http.StatusBadRequest, wantErr: dto.ErrorCodeValidationFailed},
		"missing student": {path: "/api/v1/students/4242", header: bearer, wantCode: http.StatusNotFound, wantErr: dto.ErrorCodeResourceNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			code, env := api.do(http.MethodGet, tc.path, tc.header, nil)
			if code != tc.wantCode {
				t.Fatalf("expected status %d, got %d (%+v)", tc.wantCode, code, env.Error)
			}
			if tc.wantErr == "" {
				return
			}
			if env.Error == nil || env.Error.Code != tc.wantErr {
				t.Fatalf("expected error code %s, got %+v", tc.wantErr, env.Error)
			}
		})
	}
}

func TestRegisterAndLoginErrors(t *testing.T) {
	api := newAPI(t)
	api.register("dup@uni.example.org")

	code, env := api.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		FirstName: "Dup", LastName: "Licate", Email: "dup@uni.example.org", Password: "secret123",
	})
	if code != http.StatusConflict || env.Error.Code != dto.ErrorCodeResourceAlreadyExists {
		t.Fatalf("expected duplicate email conflict, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "dup@uni.example.org", Password: "wrong-password"})
	if code != http.StatusUnauthorized || env.Error.Code != dto.ErrorCodeInvalidCredentials {
		t.Fatalf("expected bad credentials, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "nobody@uni.example.org", Password: "secret123"})
	if code != http.StatusUnauthorized || env.Error.Code != dto.ErrorCodeInvalidCredentials {
		t.Fatalf("unknown email should look like a bad password, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email"})
	if code != http.StatusBadRequest || env.Error.Code != dto.ErrorCodeValidationFailed {
		t.Fatalf("expected validation failure, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		FirstName: "Local", LastName: "Host", Email: "student@localhost", Password: "secret123",
	})
	if code != http.StatusBadRequest || env.Error.Code != dto.ErrorCodeValidationFailed || env.Error.Field != "email" {
		t.Fatalf("expected email shape rejection, got %d %+v", code, env.Error)
	}

	code, env = api.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "dup@uni.example.org", Password: "secret123"})
	if code != http.StatusOK {
		t.Fatalf("login: status %d, error %+v", code, env.Error)
	}
	var auth dto.AuthResponse
	decode(t, env, &auth)
	if auth.TokenType != "Bearer" || auth.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("unexpected auth response: %+v", auth)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	api := newAPI(t)
	api.register("metrics@uni.example.org")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`unistud_auth_attempts_total{action="register",outcome="success"} 1`,
		"unistud_http_request_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
