package mockapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// tokenTTL — срок жизни выдаваемого токена.
const tokenTTL = 24 * time.Hour

// cookieName — cookie параллельного канала аутентификации
// (для SSE-потока, где заголовок Authorization недоступен).
const cookieName = "access_token"

type contextKey string

const userContextKey contextKey = "user"

// issueToken выдаёт HS256 JWT с sub = username.
func (h *Handler) issueToken(u *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.Username,
		"uid":  u.ID,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtKey)
}

// parseToken валидирует JWT и возвращает пользователя.
func (h *Handler) parseToken(tokenStr string) (*model.User, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, false
	}
	return h.store.UserByUsername(sub)
}

// authMiddleware аутентифицирует запрос по Bearer-токену или cookie.
// Неаутентифицированный запрос получает 401 с detail-сообщением.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		} else if c, err := r.Cookie(cookieName); err == nil {
			tokenStr = c.Value
		}

		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, ok := h.parseToken(tokenStr)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireLibrarian пропускает только библиотекарей и администраторов.
func (h *Handler) requireLibrarian(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r).IsLibrarian() {
			writeError(w, http.StatusForbidden, "Librarian privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFrom возвращает аутентифицированного пользователя запроса.
// Вызывается только за authMiddleware.
func userFrom(r *http.Request) *model.User {
	u, _ := r.Context().Value(userContextKey).(*model.User)
	return u
}

// --- Обработчики аутентификации ---

// handleLogin — POST /api/auth/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, ok := h.store.Authenticate(req.Username, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// handleRegister — POST /api/auth/register.
// Самостоятельная регистрация всегда создаёт читателя.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.store.CreateUser(req.Username, req.Password, req.FullName, model.RoleStudent)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleMe — GET /api/auth/me.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

// handleSetCookie — POST /api/auth/set-cookie, тело {"token": "..."}.
// Дублирует bearer-токен в cookie для потокового канала.
func (h *Handler) handleSetCookie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token required")
		return
	}
	if _, ok := h.parseToken(req.Token); !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    req.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(tokenTTL / time.Second),
	})
	w.WriteHeader(http.StatusNoContent)
}
