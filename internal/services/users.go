package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/domain/model"
)

// UserService — административное управление пользователями
// (операции библиотекаря/администратора).
type UserService struct {
	gw     *api.Client
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(gw *api.Client, logger *slog.Logger) *UserService {
	return &UserService{
		gw:     gw,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает всех пользователей.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.gw.GetJSON(ctx, "/api/users/", &users); err != nil {
		return nil, fmt.Errorf("список пользователей: %w", err)
	}
	return users, nil
}

// Create создаёт пользователя с заданной ролью.
// Клиентская валидация — та же, что при самостоятельной регистрации.
func (s *UserService) Create(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := ValidateFullName(req.FullName); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.gw.PostJSON(ctx, "/api/users/", req, &user); err != nil {
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}
	s.logger.Info("пользователь создан",
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	return &user, nil
}

// Delete удаляет пользователя.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.gw.DeleteJSON(ctx, fmt.Sprintf("/api/users/%d", id), nil); err != nil {
		return fmt.Errorf("удаление пользователя %d: %w", id, err)
	}
	return nil
}
