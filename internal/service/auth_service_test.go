package service

import (
	"context"
	"testing"

	"novacrm/internal/config"
	"novacrm/internal/dto"
	"novacrm/internal/middleware"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errStubNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context, tenantID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errStubNotFound
	}
	u.Active = false
	return nil
}

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo, uuid.UUID) {
	t.Helper()
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
	}
	tenantID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2-hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &model.User{
		TenantID:     tenantID,
		Email:        "casey@acme.test",
		Name:         "Casey",
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
	}))
	return NewAuthService(repo, cfg), repo, tenantID
}

func TestLoginIssuesTenantScopedToken(t *testing.T) {
	svc, _, tenantID := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "casey@acme.test",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "admin", resp.User.Role)

	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "casey@acme.test", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "casey@acme.test",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@acme.test",
		Password: "hunter2-hunter2",
	})
	require.Error(t, err)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "casey@acme.test",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "casey@acme.test",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)

	for id := range repo.users {
		require.NoError(t, repo.Deactivate(context.Background(), id))
	}

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo, tenantID := newAuthFixture(t)

	resp, err := svc.CreateUser(context.Background(), tenantID, dto.CreateUserRequest{
		Email:    "riley@acme.test",
		Name:     "Riley",
		Password: "correct-horse-battery",
		Role:     "agent",
	})
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), resp.TenantID)

	user, err := repo.FindByEmail(context.Background(), "riley@acme.test")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse-battery")))
}
