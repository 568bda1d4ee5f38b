package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/domain/model"
	"github.com/bigkaa/lms-client/internal/session"
)

// AuthService — аутентификация и управление сессией.
type AuthService struct {
	gw     *api.Client
	store  session.Store
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(gw *api.Client, store session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		gw:     gw,
		store:  store,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// RegisterRequest — данные регистрации нового пользователя.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// Login выполняет вход: получает bearer-токен, сохраняет его в сессию
// под именем пользователя, загружает профиль и активирует cookie-канал
// для потока уведомлений.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	var tokenResp struct {
		AccessToken string      `json:"access_token"`
		TokenType   string      `json:"token_type"`
		User        *model.User `json:"user"`
	}
	err := s.gw.PostAnonJSON(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &tokenResp)
	if err != nil {
		return nil, fmt.Errorf("вход: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("вход: сервер не вернул токен")
	}

	// Токен кладётся в TokenMap под явным username — до загрузки профиля
	// активного пользователя ещё нет
	s.store.SetToken(tokenResp.AccessToken, username)

	// Профиль приходит вместе с токеном; старые серверы без поля user
	// обслуживаются запросом /api/auth/me
	user := tokenResp.User
	if user == nil {
		if user, err = s.Me(ctx); err != nil {
			return nil, fmt.Errorf("загрузка профиля после входа: %w", err)
		}
	}
	s.store.SaveUser(user)

	// Cookie-канал — best effort: REST работает и без него,
	// страдает только поток уведомлений
	cookieReq := map[string]string{"token": tokenResp.AccessToken}
	if _, err := s.gw.FetchWithAuth(ctx, http.MethodPost, "/api/auth/set-cookie", cookieReq); err != nil {
		s.logger.Debug("не удалось установить cookie потока уведомлений",
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("вход выполнен",
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	return user, nil
}

// Register регистрирует нового пользователя.
// Клиентская валидация выполняется до обращения к серверу.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
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
	if err := s.gw.PostAnonJSON(ctx, "/api/auth/register", req, &user); err != nil {
		return nil, fmt.Errorf("регистрация: %w", err)
	}
	return &user, nil
}

// Me возвращает профиль текущего пользователя по токену сессии.
func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := s.gw.GetJSON(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout завершает сессию. С username — адресный выход (токен и запись
// known_users только этого пользователя); без — выход активного
// пользователя. Серверного вызова нет: bearer-токен stateless,
// завершение сессии — чисто клиентская операция.
func (s *AuthService) Logout(username string) {
	s.store.Logout(username)
	s.logger.Info("выход выполнен", slog.String("username", username))
}
