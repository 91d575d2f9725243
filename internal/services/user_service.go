package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{repo: repo, logger: logger, validator: validator}
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, role string, approved *bool, page, size int) (*UserListResponse, error) {
	filters := repositories.UserFilters{
		Approved: approved,
		Limit:    size,
		Offset:   pageOffset(page, size),
	}
	if role != "" {
		r := models.UserRole(role)
		if !r.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
		}
		filters.Role = &r
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{Users: users, Total: total, Page: page, Size: size}, nil
}

func (s *userService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", user.ID)

	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.User().GetByID(ctx, id); err != nil {
		return fmt.Errorf("%w: user not found", ErrNotFound)
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id)

	return nil
}

// pageOffset converts a 1-based page number into a row offset.
func pageOffset(page, size int) int {
	if page <= 1 || size <= 0 {
		return 0
	}
	return (page - 1) * size
}
