package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// UserInfoService maintains the username cache of authenticated users.
type UserInfoService struct {
	users repo.UserInfoRepo
}

// NewUserInfoService constructs a UserInfoService backed by the provided repo.
func NewUserInfoService(users repo.UserInfoRepo) *UserInfoService {
	return &UserInfoService{users: users}
}

// Save stores the username of userID.
func (s *UserInfoService) Save(ctx context.Context, userID, username string) (domain.UserInfo, error) {
	if err := requireUser(userID); err != nil {
		return domain.UserInfo{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.UserInfo{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	info, err := s.users.Upsert(ctx, domain.UserInfo{UserID: userID, Username: username})
	if err != nil {
		return domain.UserInfo{}, fmt.Errorf("service.UserInfoService.Save: %w", err)
	}
	return info, nil
}

// Get returns the profile of userID.
func (s *UserInfoService) Get(ctx context.Context, userID string) (domain.UserInfo, error) {
	if err := requireUser(userID); err != nil {
		return domain.UserInfo{}, err
	}
	info, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return domain.UserInfo{}, fmt.Errorf("service.UserInfoService.Get: %w", err)
	}
	return info, nil
}

// UserService resolves users by username.
type UserService struct {
	users repo.UserInfoRepo
}

// NewUserService constructs a UserService backed by the provided repo.
func NewUserService(users repo.UserInfoRepo) *UserService {
	return &UserService{users: users}
}

// ResolveID returns the user id registered under username.
func (s *UserService) ResolveID(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	info, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("service.UserService.ResolveID: %w", err)
	}
	return info.UserID, nil
}
