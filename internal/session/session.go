// Пакет session — хранилище учётных данных и идентичности активного
// пользователя. Двухуровневая модель хранения:
//
//   - tab scope: состояние процесса (один процесс клиента ≈ одна вкладка
//     браузера) — активный пользователь и его токен, исчезают с процессом;
//   - browser scope: JSON-файл состояния, общий для всех процессов —
//     TokenMap (username → token) и known_users, что позволяет держать
//     несколько залогиненных аккаунтов одновременно, не затирая токены
//     друг друга.
//
// Все ошибки хранилища (недоступный файл, битый JSON, quota) глотаются:
// методы деградируют до nil/no-op вместо паники, вызывающий код обязан
// переносить пустой токен и nil-пользователя в любой момент.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// fallbackKey — ключ TokenMap, когда имя пользователя неизвестно
// (SetToken без username при отсутствующем активном пользователе).
const fallbackKey = "default"

// Store — инжектируемый интерфейс хранилища сессии.
// Абстракция над browser storage, чтобы её можно было подменить в тестах.
type Store interface {
	// SetToken записывает токен в tab-scoped слот и дополнительно
	// регистрирует его в browser-scoped TokenMap под username
	// (или именем активного пользователя, или "default").
	SetToken(token, username string)
	// GetToken возвращает токен в порядке убывания специфичности:
	// TokenMap[активный пользователь] → tab-scoped токен →
	// legacy browser-scoped токен → "".
	GetToken() string
	// SaveUser делает пользователя активным для вкладки и добавляет
	// его в browser-scoped каталог known_users.
	SaveUser(u *model.User)
	// GetUser возвращает активного пользователя вкладки (или nil).
	GetUser() *model.User
	// Logout с username удаляет только токен и known_users-запись этого
	// пользователя; без username — завершает сессию активного пользователя
	// вкладки целиком.
	Logout(username string)
}

// browserState — сериализуемое browser-scoped состояние.
type browserState struct {
	// AccessToken — legacy одиночный слот токена (общий для вкладок)
	AccessToken string `json:"access_token,omitempty"`
	// AccessTokens — TokenMap: username → bearer token
	AccessTokens map[string]string `json:"access_tokens,omitempty"`
	// KnownUsers — каталог аккаунтов, виденных в этом браузере
	KnownUsers map[string]*model.User `json:"known_users,omitempty"`
}

// FileStore — реализация Store поверх JSON-файла состояния.
type FileStore struct {
	mu sync.Mutex

	// tab scope (в памяти процесса)
	activeToken string
	activeUser  *model.User

	// browser scope (файл)
	path string
}

var _ Store = (*FileStore)(nil)

// New создаёт хранилище сессии с browser-scoped состоянием в файле path.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// SetToken — см. Store.
// Побочный эффект: мутация двух независимых хранилищ (tab и browser).
func (s *FileStore) SetToken(token, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeToken = token

	key := username
	if key == "" && s.activeUser != nil {
		key = s.activeUser.Username
	}
	if key == "" {
		// Последняя попытка — вытащить sub из самого токена
		key = UsernameFromToken(token)
	}
	if key == "" {
		key = fallbackKey
	}

	s.mutate(func(st *browserState) {
		if st.AccessTokens == nil {
			st.AccessTokens = map[string]string{}
		}
		st.AccessTokens[key] = token
	})
}

// GetToken — см. Store.
// Порядок от наиболее специфичного к наименее специфичному гарантирует,
// что вкладка всегда предпочитает токен своего логически активного
// аккаунта устаревшему tab-scoped токену.
func (s *FileStore) GetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeUser != nil && s.activeUser.Username != "" {
		st := s.read()
		if tok, ok := st.AccessTokens[s.activeUser.Username]; ok && tok != "" {
			return tok
		}
	}

	if s.activeToken != "" {
		return s.activeToken
	}

	// legacy слот, общий для вкладок
	return s.read().AccessToken
}

// SaveUser — см. Store.
func (s *FileStore) SaveUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeUser = u

	if u == nil || u.Username == "" {
		return
	}
	s.mutate(func(st *browserState) {
		if st.KnownUsers == nil {
			st.KnownUsers = map[string]*model.User{}
		}
		st.KnownUsers[u.Username] = u
	})
}

// GetUser — см. Store. Читает только tab scope.
func (s *FileStore) GetUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeUser
}

// Logout — см. Store.
// Адресный logout("alice") при активном "bob" не трогает сессию вкладки;
// logout("") — полная очистка активной сессии (разный blast radius).
func (s *FileStore) Logout(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if username != "" {
		s.mutate(func(st *browserState) {
			delete(st.AccessTokens, username)
			delete(st.KnownUsers, username)
		})
		// Активная сессия вкладки задевается, только если вышли из неё же
		if s.activeUser != nil && s.activeUser.Username == username {
			s.activeUser = nil
			s.activeToken = ""
		}
		return
	}

	active := ""
	if s.activeUser != nil {
		active = s.activeUser.Username
	}
	s.mutate(func(st *browserState) {
		if active != "" {
			delete(st.AccessTokens, active)
			delete(st.KnownUsers, active)
		}
		st.AccessToken = ""
	})
	s.activeUser = nil
	s.activeToken = ""
}

// KnownUsers возвращает каталог аккаунтов, виденных в этом браузере
// (best effort; для переключателя аккаунтов в CLI).
func (s *FileStore) KnownUsers() map[string]*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().KnownUsers
}

// --- Файловое состояние ---

// read загружает browser-scoped состояние. Любая ошибка — пустое состояние.
func (s *FileStore) read() *browserState {
	st := &browserState{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, st); err != nil {
		return &browserState{}
	}
	return st
}

// mutate выполняет read-merge-write мутацию состояния.
// Мутации ключуются по username (merge, а не замена всей карты), поэтому
// конкурентные записи разных процессов теряют не больше одной записи.
// Ошибки записи глотаются — хранилище best effort.
func (s *FileStore) mutate(fn func(*browserState)) {
	st := s.read()
	fn(st)

	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}

// UsernameFromToken извлекает sub-claim из JWT без проверки подписи.
// Валидация токена — дело сервера; клиенту claim нужен только как ключ
// TokenMap. Возвращает "" для не-JWT токенов.
func UsernameFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
