package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[string]*model.User // keyed by id
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	cp.PasswordHash = ""
	return &cp, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmailWithSecret(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return nil, gorm.ErrRecordNotFound
}

func addUser(repo *stubUserRepo, active bool, roles ...string) *model.User {
	user := &model.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		FullName: "Test User",
		Active:   active,
	}
	for i, name := range roles {
		user.Roles = append(user.Roles, model.Role{ID: uint(i + 1), Name: name})
	}
	repo.users[user.ID.String()] = user
	return user
}

func newTestRouter(repo *stubUserRepo, tokens *token.Manager, required ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mw := NewAuthMiddleware(repo, tokens)

	router := gin.New()
	router.GET("/resource", mw.RequireAuth(), mw.RequireRoles(required...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func doRequest(router *gin.Engine, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	tokens := token.NewManager("test-secret", time.Hour)
	repo := &stubUserRepo{users: make(map[string]*model.User)}
	user := addUser(repo, true, model.RoleUser)

	signed, _, err := tokens.Issue(user.ID, user.Email)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(newTestRouter(repo, tokens), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(newTestRouter(repo, tokens), "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := token.NewManager("rotated-secret", time.Hour)
		stale, _, err := other.Issue(user.ID, user.Email)
		require.NoError(t, err)

		rec := doRequest(newTestRouter(repo, tokens), stale)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := doRequest(newTestRouter(repo, tokens), signed)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("account deleted after issuance", func(t *testing.T) {
		ghost := uuid.New()
		stale, _, err := tokens.Issue(ghost, "gone@example.com")
		require.NoError(t, err)

		rec := doRequest(newTestRouter(repo, tokens), stale)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("account deactivated after issuance", func(t *testing.T) {
		inactive := addUser(repo, false, model.RoleUser)
		stale, _, err := tokens.Issue(inactive.ID, inactive.Email)
		require.NoError(t, err)

		rec := doRequest(newTestRouter(repo, tokens), stale)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	tokens := token.NewManager("test-secret", time.Hour)

	tests := []struct {
		name     string
		roles    []string
		required []string
		want     int
	}{
		{name: "role missing from permitted set", roles: []string{model.RoleTeacher}, required: []string{model.RoleAdmin}, want: http.StatusForbidden},
		{name: "one role intersects", roles: []string{model.RoleTeacher, model.RoleAdmin}, required: []string{model.RoleAdmin}, want: http.StatusOK},
		{name: "empty permitted set always passes", roles: []string{model.RoleUser}, required: nil, want: http.StatusOK},
		{name: "no roles at all", roles: nil, required: []string{model.RoleAdmin}, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubUserRepo{users: make(map[string]*model.User)}
			user := addUser(repo, true, tt.roles...)

			signed, _, err := tokens.Issue(user.ID, user.Email)
			require.NoError(t, err)

			rec := doRequest(newTestRouter(repo, tokens, tt.required...), signed)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
