package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/auth"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	employees  repository.EmployeeRepo
	sessions   repository.SessionRepo
	sessionTTL time.Duration
}

// NewAuthService wires login, logout and per-request identity resolution.
func NewAuthService(employees repository.EmployeeRepo, sessions repository.SessionRepo, sessionTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &authService{employees: employees, sessions: sessions, sessionTTL: sessionTTL}
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.Session, *auth.Identity, error) {
	emp, err := s.employees.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same error as a bad password: do not reveal which part failed.
			return nil, nil, fmt.Errorf("invalid credentials: %w", auth.ErrUnauthenticated)
		}
		return nil, nil, err
	}
	if !emp.Active {
		return nil, nil, fmt.Errorf("account disabled: %w", auth.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials: %w", auth.ErrUnauthenticated)
	}

	token, err := auth.NewToken()
	if err != nil {
		return nil, nil, err
	}
	csrfToken, err := auth.NewToken()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		Token:      token,
		EmployeeID: emp.ID,
		CSRFToken:  csrfToken,
		ExpiresAt:  now.Add(s.sessionTTL),
		CreatedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	return session, identityFor(emp, csrfToken), nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *authService) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, auth.ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown session: %w", auth.ErrUnauthenticated)
		}
		return nil, err
	}
	now := time.Now().UTC()
	if session.Expired(now) {
		_ = s.sessions.Delete(ctx, session.Token)
		return nil, fmt.Errorf("session expired: %w", auth.ErrUnauthenticated)
	}

	// Trust-on-read: the role always comes from the employees table, not
	// from anything stored in or derived from the session.
	emp, err := s.employees.GetByID(ctx, session.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("employee no longer exists: %w", auth.ErrUnauthenticated)
		}
		return nil, err
	}
	if !emp.Active {
		return nil, fmt.Errorf("account disabled: %w", auth.ErrUnauthenticated)
	}

	return identityFor(emp, session.CSRFToken), nil
}

func (s *authService) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.employees.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}
	now := time.Now().UTC()
	return s.employees.Create(ctx, &domain.Employee{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     "Bootstrap Administrator",
		Role:         domain.RoleSuperAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func identityFor(emp *domain.Employee, csrfToken string) *auth.Identity {
	return &auth.Identity{
		EmployeeID: emp.ID,
		Username:   emp.Username,
		FullName:   emp.FullName,
		Role:       emp.Role,
		CSRFToken:  csrfToken,
	}
}
