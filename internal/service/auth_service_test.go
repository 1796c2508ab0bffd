package service

import (
	"context"
	"testing"
	"time"

	"github.com/avelardo/infratrack/internal/auth"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/avelardo/infratrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	employees *repository.SQLiteEmployeeRepo
	sessions  *repository.SQLiteSessionRepo
	svc       AuthService
}

func setupAuth(t *testing.T, ttl time.Duration) *authFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	employees := repository.NewSQLiteEmployeeRepo(database)
	sessions := repository.NewSQLiteSessionRepo(database)
	return &authFixture{
		employees: employees,
		sessions:  sessions,
		svc:       NewAuthService(employees, sessions, ttl),
	}
}

func (f *authFixture) createEmployee(t *testing.T, role domain.Role, password string) *domain.Employee {
	t.Helper()
	emp := testutil.NewTestEmployee(role)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	emp.PasswordHash = string(hash)
	require.NoError(t, f.employees.Create(context.Background(), emp))
	return emp
}

func TestLogin_Success(t *testing.T) {
	f := setupAuth(t, time.Hour)
	ctx := context.Background()
	emp := f.createEmployee(t, domain.RoleDepartmentHead, "s3cret")

	session, identity, err := f.svc.Login(ctx, emp.Username, "s3cret")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, identity)

	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.CSRFToken)
	assert.NotEqual(t, session.Token, session.CSRFToken)
	assert.Equal(t, emp.ID, identity.EmployeeID)
	assert.Equal(t, domain.RoleDepartmentHead, identity.Role)
	assert.Equal(t, session.CSRFToken, identity.CSRFToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupAuth(t, time.Hour)
	emp := f.createEmployee(t, domain.RoleEmployee, "s3cret")

	_, _, err := f.svc.Login(context.Background(), emp.Username, "wrong")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := setupAuth(t, time.Hour)

	_, _, err := f.svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := setupAuth(t, time.Hour)
	ctx := context.Background()

	emp := testutil.NewTestEmployee(domain.RoleEmployee)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	emp.PasswordHash = string(hash)
	emp.Active = false
	require.NoError(t, f.employees.Create(ctx, emp))

	_, _, err = f.svc.Login(ctx, emp.Username, "s3cret")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestResolve_RereadsRoleFromDatabase(t *testing.T) {
	f := setupAuth(t, time.Hour)
	ctx := context.Background()
	emp := f.createEmployee(t, domain.RoleEmployee, "s3cret")

	session, _, err := f.svc.Login(ctx, emp.Username, "s3cret")
	require.NoError(t, err)

	// Promote the employee after login. The next resolve must see the new
	// role, not the one in effect when the session was created.
	emp.Role = domain.RoleDepartmentHead
	require.NoError(t, f.employees.Update(ctx, emp))

	identity, err := f.svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDepartmentHead, identity.Role)
}

func TestResolve_EmptyToken(t *testing.T) {
	f := setupAuth(t, time.Hour)

	_, err := f.svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestResolve_UnknownToken(t *testing.T) {
	f := setupAuth(t, time.Hour)

	_, err := f.svc.Resolve(context.Background(), "not-a-session")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestResolve_ExpiredSession(t *testing.T) {
	f := setupAuth(t, -time.Minute) // sessions born expired
	ctx := context.Background()
	emp := f.createEmployee(t, domain.RoleEmployee, "s3cret")

	session, _, err := f.svc.Login(ctx, emp.Username, "s3cret")
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	// The expired session was also cleaned up.
	_, err = f.sessions.Get(ctx, session.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	f := setupAuth(t, time.Hour)
	ctx := context.Background()
	emp := f.createEmployee(t, domain.RoleEmployee, "s3cret")

	session, _, err := f.svc.Login(ctx, emp.Username, "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session.Token))

	_, err = f.svc.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	f := setupAuth(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureBootstrapAdmin(ctx, "admin", "change-me"))

	emp, err := f.employees.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, emp.Role)
	assert.True(t, emp.Active)

	// Idempotent: a second call does not fail or duplicate.
	require.NoError(t, f.svc.EnsureBootstrapAdmin(ctx, "admin", "change-me"))

	// Empty credentials are a no-op.
	require.NoError(t, f.svc.EnsureBootstrapAdmin(ctx, "", ""))

	_, _, err = f.svc.Login(ctx, "admin", "change-me")
	assert.NoError(t, err)
}
