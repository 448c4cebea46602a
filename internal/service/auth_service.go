package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"acadia.dev/studentrecords/internal/dto"
	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/internal/repository"
	"acadia.dev/studentrecords/pkg/apperror"
	"acadia.dev/studentrecords/pkg/crypto"
	"acadia.dev/studentrecords/pkg/token"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo        repository.UserRepository
	tokens      *token.Manager
	defaultRole string
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, defaultRole string) AuthService {
	return &authService{
		repo:        repo,
		tokens:      tokens,
		defaultRole: defaultRole,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	role, err := s.repo.FindRoleByName(ctx, s.defaultRole)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("role %s not found", s.defaultRole)
		}
		return nil, err
	}

	hashedPassword, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hashedPassword,
		Active:       true,
		Roles:        []model.Role{*role},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			log.Printf("[auth] register rejected, email already taken: %s", user.Email)
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmailWithSecret(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, apperror.ErrUnauthorized
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	// The hash never leaves this package in a result object.
	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        user,
	}, nil
}
