package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type staticToken string

func (t staticToken) GetToken() string { return string(t) }

func newClient(t *testing.T, srv *httptest.Server, tokens TokenSource) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(srv.URL, 5*time.Second, tokens, logger)
	if err != nil {
		t.Fatalf("не удалось создать клиент: %v", err)
	}
	return c
}

// Авторизованный запрос несёт Bearer-токен, анонимный — нет.
func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("t1"))

	ctx := context.Background()
	if _, err := c.FetchWithAuth(ctx, http.MethodGet, "/x", nil); err != nil {
		t.Fatalf("FetchWithAuth: %v", err)
	}
	if gotAuth != "Bearer t1" {
		t.Errorf("ожидался Bearer t1, получен %q", gotAuth)
	}

	if _, err := c.Request(ctx, http.MethodGet, "/x", nil); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("анонимный запрос не должен нести Authorization, получен %q", gotAuth)
	}
}

// Токен резолвится на каждый запрос: смена токена в источнике
// немедленно видна следующему запросу.
func TestTokenResolvedPerRequest(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	token := "first"
	source := tokenFunc(func() string { return token })
	c := newClient(t, srv, source)

	ctx := context.Background()
	c.FetchWithAuth(ctx, http.MethodGet, "/x", nil)
	if gotAuth != "Bearer first" {
		t.Fatalf("ожидался Bearer first, получен %q", gotAuth)
	}

	token = "second"
	c.FetchWithAuth(ctx, http.MethodGet, "/x", nil)
	if gotAuth != "Bearer second" {
		t.Errorf("ожидался Bearer second, получен %q", gotAuth)
	}
}

type tokenFunc func() string

func (f tokenFunc) GetToken() string { return f() }

// Cookie, выставленная сервером, возвращается в последующих
// авторизованных и потоковых запросах (credentials include).
func TestCookiePersistence(t *testing.T) {
	var streamCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil {
			streamCookie = c.Value
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv, staticToken("t1"))
	ctx := context.Background()

	if _, err := c.FetchWithAuth(ctx, http.MethodPost, "/set", nil); err != nil {
		t.Fatalf("set: %v", err)
	}
	resp, err := c.OpenStream(ctx, "/stream")
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	resp.Body.Close()

	if streamCookie != "abc" {
		t.Errorf("поток должен нести cookie sid=abc, получено %q", streamCookie)
	}
}

// Нормализация ошибок: detail → message → сырой JSON → статусная строка.
func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail", 404, `{"detail":"Book not found"}`, "Book not found"},
		{"message", 400, `{"message":"Bad input"}`, "Bad input"},
		{"сырой JSON", 422, `{"loc":["body"]}`, `{"loc":["body"]}`},
		{"не JSON", 502, "<html>bad gateway</html>", "Bad Gateway"},
		{"пустое тело", 403, "", "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newClient(t, srv, nil)
			_, err := c.Request(context.Background(), http.MethodGet, "/x", nil)
			if err == nil {
				t.Fatal("ожидалась ошибка, получен nil")
			}

			reqErr, ok := AsRequestError(err)
			if !ok {
				t.Fatalf("ожидался *RequestError, получен %T: %v", err, err)
			}
			if reqErr.Status != tt.status {
				t.Errorf("ожидался статус %d, получен %d", tt.status, reqErr.Status)
			}
			if reqErr.Message != tt.wantMsg {
				t.Errorf("ожидалось сообщение %q, получено %q", tt.wantMsg, reqErr.Message)
			}
		})
	}
}

// Успешный ответ с пустым телом — null-результат, не ошибка.
func TestEmptyBodySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClient(t, srv, nil)
	raw, err := c.Request(context.Background(), http.MethodPost, "/x", nil)
	if err != nil {
		t.Fatalf("ожидался успех, получена ошибка: %v", err)
	}
	if raw != nil {
		t.Errorf("ожидался nil-результат, получено %q", string(raw))
	}
}

// GetJSON с пустым телом оставляет out нетронутым.
func TestGetJSONEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newClient(t, srv, nil)
	out := map[string]string{"preset": "value"}
	if err := c.GetJSON(context.Background(), "/x", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out["preset"] != "value" {
		t.Errorf("out не должен изменяться при пустом теле, получено %v", out)
	}
}

// JSON-тело запроса сериализуется с правильным Content-Type,
// multipart — со своим.
func TestRequestBodies(t *testing.T) {
	var gotCT, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	c := newClient(t, srv, nil)
	ctx := context.Background()

	c.Request(ctx, http.MethodPost, "/x", map[string]int{"book_id": 7})
	if gotCT != "application/json" {
		t.Errorf("ожидался application/json, получен %q", gotCT)
	}
	if gotBody != `{"book_id":7}` {
		t.Errorf("неожиданное тело: %q", gotBody)
	}

	m, err := NewMultipart("file", "cover.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("NewMultipart: %v", err)
	}
	c.Request(ctx, http.MethodPost, "/x", m)
	if !strings.HasPrefix(gotCT, "multipart/form-data") {
		t.Errorf("ожидался multipart/form-data, получен %q", gotCT)
	}
	if !strings.Contains(gotBody, "png-bytes") {
		t.Error("multipart-тело не содержит содержимого файла")
	}
}

// Каждый запрос несёт уникальный X-Request-ID.
func TestRequestID(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
	}))
	defer srv.Close()

	c := newClient(t, srv, nil)
	ctx := context.Background()
	c.Request(ctx, http.MethodGet, "/x", nil)
	c.Request(ctx, http.MethodGet, "/x", nil)

	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("ожидались два разных непустых id, получено %v", ids)
	}
}

func TestOpenStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"Not authenticated"}`)
	}))
	defer srv.Close()

	c := newClient(t, srv, nil)
	_, err := c.OpenStream(context.Background(), "/stream")
	if err == nil {
		t.Fatal("ожидалась ошибка, получен nil")
	}
	reqErr, ok := AsRequestError(err)
	if !ok || reqErr.Status != http.StatusUnauthorized {
		t.Errorf("ожидался RequestError 401, получено %v", err)
	}
}
