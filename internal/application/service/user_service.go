package service

import (
	"context"
	"fmt"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
)

// UserService resolves actors and lists disposition recipients
type UserService interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

type userServiceImpl struct {
	userRepo port.UserRepository
	logger   Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", port.ErrNotFound, id)
	}
	return user, nil
}

func (s *userServiceImpl) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", "error", err)
		return nil, storeErr(err)
	}
	return users, nil
}
