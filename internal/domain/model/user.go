// Пакет model — доменные модели LMS Client.
// Структуры повторяют JSON-контракт REST backend (FastAPI LMS).
package model

// Роли пользователей LMS.
const (
	RoleStudent   = "student"
	RoleFaculty   = "faculty"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// User — профиль пользователя LMS.
// Минимальный контракт: username и role; остальные поля опциональны.
type User struct {
	// ID — идентификатор пользователя (присваивается сервером)
	ID int64 `json:"id,omitempty"`
	// Username — уникальное имя пользователя (ключ TokenMap и known_users)
	Username string `json:"username"`
	// FullName — полное имя (опционально)
	FullName string `json:"full_name,omitempty"`
	// Role — роль: student, faculty, librarian, admin
	Role string `json:"role,omitempty"`
	// AvatarURL — URL аватара (опционально)
	AvatarURL string `json:"avatar_url,omitempty"`
	// IsActive — активен ли аккаунт
	IsActive bool `json:"is_active,omitempty"`
}

// IsLibrarian сообщает, имеет ли пользователь библиотекарские привилегии.
func (u *User) IsLibrarian() bool {
	return u != nil && (u.Role == RoleLibrarian || u.Role == RoleAdmin)
}
