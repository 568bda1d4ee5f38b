package session

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "state.json"))
}

// Токены разных пользователей не затирают друг друга в TokenMap.
func TestTokenMapIsolation(t *testing.T) {
	s := newStore(t)

	s.SetToken("tok-alice", "alice")
	s.SetToken("tok-bob", "bob")

	s.SaveUser(&model.User{Username: "alice"})
	if got := s.GetToken(); got != "tok-alice" {
		t.Errorf("ожидался токен alice, получен %q", got)
	}

	s.SaveUser(&model.User{Username: "bob"})
	if got := s.GetToken(); got != "tok-bob" {
		t.Errorf("ожидался токен bob, получен %q", got)
	}
}

// Порядок разрешения токена: TokenMap активного пользователя
// важнее tab-scoped токена.
func TestGetTokenPrecedence(t *testing.T) {
	s := newStore(t)

	s.SetToken("tab-token", "")
	if got := s.GetToken(); got != "tab-token" {
		t.Fatalf("ожидался tab-токен, получен %q", got)
	}

	// Активный пользователь с записью в TokenMap перекрывает tab-слот
	s.SetToken("map-token", "alice")
	s.SaveUser(&model.User{Username: "alice"})
	if got := s.GetToken(); got != "map-token" {
		t.Errorf("ожидался токен из TokenMap, получен %q", got)
	}
}

// Legacy browser-scoped слот используется, когда больше ничего нет.
func TestGetTokenLegacyFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	// Состояние от старой версии клиента: только одиночный слот
	writeState(t, path, &browserState{AccessToken: "legacy-token"})

	s := New(path)
	if got := s.GetToken(); got != "legacy-token" {
		t.Errorf("ожидался legacy-токен, получен %q", got)
	}
}

// Адресный logout другого пользователя не трогает сессию вкладки.
func TestLogoutTargeted(t *testing.T) {
	s := newStore(t)

	s.SetToken("tok-alice", "alice")
	s.SetToken("tok-bob", "bob")
	s.SaveUser(&model.User{Username: "bob"})

	s.Logout("alice")

	if u := s.GetUser(); u == nil || u.Username != "bob" {
		t.Fatalf("адресный выход alice затронул активную сессию bob: %+v", u)
	}
	if got := s.GetToken(); got != "tok-bob" {
		t.Errorf("ожидался токен bob, получен %q", got)
	}

	// Токен alice удалён из TokenMap
	s.SaveUser(&model.User{Username: "alice"})
	s.activeToken = ""
	if got := s.GetToken(); got != "" {
		t.Errorf("токен alice должен быть удалён, получен %q", got)
	}
}

// Logout без username завершает активную сессию целиком.
func TestLogoutActive(t *testing.T) {
	s := newStore(t)

	s.SetToken("tok-alice", "alice")
	s.SaveUser(&model.User{Username: "alice"})

	s.Logout("")

	if u := s.GetUser(); u != nil {
		t.Errorf("активный пользователь должен быть сброшен, получен %+v", u)
	}
	if got := s.GetToken(); got != "" {
		t.Errorf("токен должен быть пуст, получен %q", got)
	}
}

// Выход из своей же сессии адресным logout очищает вкладку.
func TestLogoutTargetedSelf(t *testing.T) {
	s := newStore(t)

	s.SetToken("tok-alice", "alice")
	s.SaveUser(&model.User{Username: "alice"})

	s.Logout("alice")

	if u := s.GetUser(); u != nil {
		t.Errorf("активный пользователь должен быть сброшен, получен %+v", u)
	}
	if got := s.GetToken(); got != "" {
		t.Errorf("токен должен быть пуст, получен %q", got)
	}
}

// TokenMap переживает перезапуск процесса (browser scope — файл).
func TestBrowserScopeSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s1 := New(path)
	s1.SetToken("tok-alice", "alice")
	s1.SaveUser(&model.User{Username: "alice", FullName: "Alice A."})

	// Новый процесс: tab scope пуст, browser scope загружается из файла
	s2 := New(path)
	if u := s2.GetUser(); u != nil {
		t.Errorf("tab scope не должен переживать перезапуск, получен %+v", u)
	}
	s2.SaveUser(&model.User{Username: "alice"})
	if got := s2.GetToken(); got != "tok-alice" {
		t.Errorf("TokenMap должен переживать перезапуск, получен %q", got)
	}

	known := s2.KnownUsers()
	if known["alice"] == nil || known["alice"].FullName != "Alice A." {
		t.Errorf("known_users должен переживать перезапуск, получено %+v", known)
	}
}

// Битый файл состояния деградирует до пустого состояния, не до паники.
func TestCorruptStateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	writeFile(t, path, []byte("{not json"))

	s := New(path)
	if got := s.GetToken(); got != "" {
		t.Errorf("ожидался пустой токен, получен %q", got)
	}

	// Запись поверх битого файла восстанавливает состояние
	s.SetToken("tok", "alice")
	s.SaveUser(&model.User{Username: "alice"})
	if got := s.GetToken(); got != "tok" {
		t.Errorf("ожидался токен tok, получен %q", got)
	}
}

func TestUsernameFromToken(t *testing.T) {
	t.Run("валидный JWT", func(t *testing.T) {
		token := unsignedJWT(t, map[string]any{"sub": "alice"})
		if got := UsernameFromToken(token); got != "alice" {
			t.Errorf("ожидался alice, получен %q", got)
		}
	})

	t.Run("не JWT", func(t *testing.T) {
		if got := UsernameFromToken("opaque-token"); got != "" {
			t.Errorf("ожидалась пустая строка, получено %q", got)
		}
	})

	t.Run("пустой токен", func(t *testing.T) {
		if got := UsernameFromToken(""); got != "" {
			t.Errorf("ожидалась пустая строка, получено %q", got)
		}
	})
}

// --- Вспомогательные функции ---

func writeState(t *testing.T, path string, st *browserState) {
	t.Helper()
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("сериализация состояния: %v", err)
	}
	writeFile(t, path, data)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("запись файла: %v", err)
	}
}

// unsignedJWT собирает JWT с alg none (для ParseUnverified подпись не нужна).
func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("сериализация claims: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}
