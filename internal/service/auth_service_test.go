package service

import (
	"context"
	"testing"
	"time"

	"acadia.dev/studentrecords/internal/dto"
	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/pkg/apperror"
	"acadia.dev/studentrecords/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(repo *fakeUserRepo) (AuthService, *token.Manager) {
	tokens := token.NewManager("test-secret", time.Hour)
	return NewAuthService(repo, tokens, model.RoleUser), tokens
}

func TestAuthService_Register(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newAuthService(repo)

	resp, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "Alice@Example.com ",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Empty(t, resp.User.PasswordHash, "password hash must never leave the service")
	assert.Equal(t, "alice@example.com", resp.User.Email, "email is normalized before persistence")
	assert.True(t, resp.User.Active)
	require.Len(t, resp.User.Roles, 1)
	assert.Equal(t, model.RoleUser, resp.User.Roles[0].Name)

	claims, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.Subject)

	// The stored account keeps its hash even though the response dropped it.
	stored, err := repo.FindByEmailWithSecret(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newAuthService(repo)

	_, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	// Same address modulo normalization.
	_, err = svc.Register(context.Background(), dto.RegisterInput{
		Email:    "  ALICE@example.com",
		FullName: "Alice Again",
		Password: "secret456",
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicateEmail)
	assert.Len(t, repo.users, 1, "no duplicate account persisted")
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newAuthService(repo)

	registered, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "correct credentials", email: "alice@example.com", password: "secret123"},
		{name: "wrong password", email: "alice@example.com", password: "wrong", wantErr: apperror.ErrUnauthorized},
		{name: "unknown email", email: "nobody@example.com", password: "secret123", wantErr: apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), dto.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, resp.User.PasswordHash)

			claims, err := tokens.Verify(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, registered.User.ID.String(), claims.Subject)
		})
	}
}
