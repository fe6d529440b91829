package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/config"
	"github.com/yigit/unistud/internal/pkg/apperrors"
	"github.com/yigit/unistud/internal/pkg/auth"
	"github.com/yigit/unistud/internal/pkg/metrics"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var publicPaths = []string{"/api/v1/auth/", "/api/v1/health", "/metrics", "/swagger/"}

func init() {
	gin.SetMode(gin.TestMode)
}

func newGate(now time.Time) (*AuthMiddleware, *auth.JWTService) {
	svc := auth.NewJWTService(auth.JWTConfig{SecretKey: testSecret, AccessTokenExp: time.Hour}).
		WithClock(func() time.Time { return now })
	return NewAuthMiddleware(svc, publicPaths...), svc
}

func TestAuthenticate(t *testing.T) {
	now := time.Now()
	gate, svc := newGate(now)

	valid, _, err := svc.IssueToken("ada@uni.example.org")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expired, _, err := svc.IssueTokenWithTTL("ada@uni.example.org", -time.Minute)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	tests := map[string]struct {
		path      string
		header    string
		wantEmail string
		wantErr   error
	}{
		"public login":     {path: "/api/v1/auth/login"},
		"public health":    {path: "/api/v1/health"},
		"public swagger":   {path: "/swagger/index.html"},
		"prefix lookalike": {path: "/api/v1/healthcheck", wantErr: apperrors.ErrAuthRequired},
		"missing header":   {path: "/api/v1/courses", wantErr: apperrors.ErrAuthRequired},
		"no scheme":        {path: "/api/v1/courses", header: valid, wantErr: apperrors.ErrInvalidFormat},
		"lowercase scheme": {path: "/api/v1/courses", header: "bearer " + valid, wantErr: apperrors.ErrInvalidFormat},
		"empty token":      {path: "/api/v1/courses", header: "Bearer ", wantErr: apperrors.ErrInvalidFormat},
		"garbage token":    {path: "/api/v1/courses", header: "Bearer abc.def.ghi", wantErr: apperrors.ErrTokenInvalid},
		"expired token":    {path: "/api/v1/courses", header: "Bearer " + expired, wantErr: apperrors.ErrTokenExpired},
		"valid token":      {path: "/api/v1/courses", header: "Bearer " + valid, wantEmail: "ada@uni.example.org"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			email, err := gate.Authenticate(tt.path, tt.header)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if apperrors.KindOf(err) != apperrors.KindAuthentication {
					t.Fatalf("expected authentication kind, got %s", apperrors.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if email != tt.wantEmail {
				t.Fatalf("expected email %q, got %q", tt.wantEmail, email)
			}
		})
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	gate, svc := newGate(time.Now())
	token, _, _ := svc.IssueToken("ada@uni.example.org")

	router := gin.New()
	router.Use(gate.JWTAuth())
	router.GET("/api/v1/me", func(c *gin.Context) {
		email, _ := CallerEmail(c)
		c.String(http.StatusOK, email)
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		if _, ok := CallerEmail(c); ok {
			t.Errorf("public route must not carry a caller")
		}
		c.Status(http.StatusOK)
	})

	tests := map[string]struct {
		path     string
		header   string
		wantCode int
		wantBody string
		wantErr  dto.ErrorCode
	}{
		"authorized":    {path: "/api/v1/me", header: "Bearer " + token, wantCode: http.StatusOK, wantBody: "ada@uni.example.org"},
		"missing":       {path: "/api/v1/me", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		"invalid token": {path: "/api/v1/me", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeInvalidToken},
		"public":        {path: "/api/v1/health", wantCode: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Fatalf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
			if tt.wantErr != "" {
				var resp dto.ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Success || resp.Error.Code != tt.wantErr {
					t.Fatalf("unexpected error body: %s", rec.Body.String())
				}
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := map[string]struct {
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		"not found": {
			err:         apperrors.NewCustomError(apperrors.ErrCourseNotFound, "course not found with id: 9"),
			wantStatus:  http.StatusNotFound,
			wantCode:    dto.ErrorCodeResourceNotFound,
			wantMessage: "course not found with id: 9",
		},
		"duplicate email": {
			err:        apperrors.ErrEmailAlreadyExists,
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrorCodeResourceAlreadyExists,
		},
		"already enrolled": {
			err:        apperrors.ErrAlreadyEnrolled,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeInvalidRelation,
		},
		"course full": {
			err:         apperrors.NewCustomError(apperrors.ErrCourseFull, "course 'Algorithms' has reached its maximum capacity of 2 students"),
			wantStatus:  http.StatusConflict,
			wantCode:    dto.ErrorCodeCapacityExceeded,
			wantMessage: "course 'Algorithms' has reached its maximum capacity of 2 students",
		},
		"bad credentials": {
			err:        apperrors.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrorCodeInvalidCredentials,
		},
		"validation": {
			err:        apperrors.NewValidationError("title query parameter is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidationFailed,
		},
		"internal hides cause": {
			err:         fmt.Errorf("error querying courses: %w", errors.New("pq: password authentication failed")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrorCodeInternalServer,
			wantMessage: "Internal server error",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)

			HandleAPIError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, resp.Error.Code)
			}
			if tt.wantMessage != "" && resp.Error.Message != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, resp.Error.Message)
			}
			if strings.Contains(rec.Body.String(), "pq:") {
				t.Fatalf("internal detail leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	const callerRID = "6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f"
	buf := &bytes.Buffer{}
	base := zerolog.New(buf)

	router := gin.New()
	router.Use(RequestID(), RequestLogger(base))
	router.GET("/ping", func(c *gin.Context) {
		c.Set(ContextKeyEmail, "ada@uni.example.org")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, callerRID)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get(HeaderRequestID) != callerRID {
		t.Fatalf("expected request id to be echoed, got %q", rec.Header().Get(HeaderRequestID))
	}
	out := buf.String()
	for _, want := range []string{`"requestID":"` + callerRID + `"`, `"status":204`, `"caller":"ada@uni.example.org"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log line, got %s", want, out)
		}
	}
	if strings.Contains(out, "secret-token") {
		t.Fatalf("token leaked into logs: %s", out)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("expected a generated request id")
	}

	for name, supplied := range map[string]string{
		"free text":    "rid-123",
		"oversized":    strings.Repeat("a", 4096),
		"log spoofing": "abc\n{\"level\":\"error\"}",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(HeaderRequestID, supplied)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if got == supplied {
				t.Fatalf("expected %q to be replaced", supplied)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected a generated UUID, got %q", got)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}))
	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second client should not be limited, got %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1, Burst: 1}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d limited while disabled", i)
		}
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/api/v1/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/students/1", "/api/v1/students/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `unistud_http_request_duration_seconds_count{method="GET",route="/api/v1/students/:id",status="200"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected %s in metrics output", want)
	}
}

func TestRegisterValidators(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register: %v", err)
	}

	router := gin.New()
	router.POST("/courses", func(c *gin.Context) {
		var req dto.CreateCourseRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusCreated)
	})

	tests := map[string]struct {
		body      string
		wantCode  int
		wantField string
	}{
		"valid":          {body: `{"title":"Algorithms","maxCapacity":2}`, wantCode: http.StatusCreated},
		"unlimited":      {body: `{"title":"Open","maxCapacity":0}`, wantCode: http.StatusCreated},
		"blank title":    {body: `{"title":"   "}`, wantCode: http.StatusBadRequest, wantField: "title"},
		"capacity range": {body: `{"title":"Big","maxCapacity":900}`, wantCode: http.StatusBadRequest, wantField: "maxCapacity"},
		"malformed":      {body: `{"title":`, wantCode: http.StatusBadRequest},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantField != "" {
				var resp dto.ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Error.Field != tt.wantField {
					t.Fatalf("expected field %s, got %+v", tt.wantField, resp.Error)
				}
			}
		})
	}
}
