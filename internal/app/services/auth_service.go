package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/apperrors"
	"github.com/yigit/unistud/internal/pkg/auth"
	"github.com/yigit/unistud/internal/pkg/metrics"
)

const (
	actionLogin    = "login"
	actionRegister = "register"
	tokenType      = "Bearer"
)

// errBadCredentials is returned for every login failure so callers cannot
// tell an unknown email from a wrong password.
func errBadCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid email or password")
}

// AuthService handles authentication operations
type AuthService struct {
	students   repositories.StudentStore
	jwtService *auth.JWTService
	hasher     *auth.PasswordHasher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	students repositories.StudentStore,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		students:   students,
		jwtService: jwtService,
		hasher:     hasher,
		metrics:    m,
		logger:     logger,
	}
}

// Register creates a student with credentials and returns a token for them.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (resp *dto.AuthResponse, err error) {
	defer func() { s.metrics.ObserveAuth(actionRegister, outcomeOf(err)) }()

	email := strings.TrimSpace(req.Email)

	exists, err := s.students.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, repositories.EmailInUseError(email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: &hash,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Str("email", email).Msg("Student registered")
	return s.tokenResponse(student, "Registration successful")
}

// Login verifies the password and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (resp *dto.AuthResponse, err error) {
	defer func() { s.metrics.ObserveAuth(actionLogin, outcomeOf(err)) }()

	student, err := s.students.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			s.logger.Debug().Str("email", req.Email).Msg("Login for unknown email")
			return nil, errBadCredentials()
		}
		return nil, err
	}

	if !student.HasPassword() || !s.hasher.Check(*student.PasswordHash, req.Password) {
		s.logger.Debug().Int64("studentID", student.ID).Msg("Login with wrong password")
		return nil, errBadCredentials()
	}

	return s.tokenResponse(student, "Login successful")
}

func (s *AuthService) tokenResponse(student *models.Student, message string) (*dto.AuthResponse, error) {
	token, _, err := s.jwtService.IssueToken(student.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     token,
		TokenType: tokenType,
		ExpiresIn: int64(s.jwtService.TokenTTL().Seconds()),
		Email:     student.Email,
		FullName:  student.FullName(),
		Message:   message,
	}, nil
}

// outcomeOf labels an operation result for metrics.
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(string(apperrors.KindOf(err)))
}
