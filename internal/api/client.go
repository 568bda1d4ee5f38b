// Пакет api — HTTP-шлюз LMS Client: единая точка доступа к REST backend
// с присоединением авторизации и нормализацией ошибок.
//
// Два канала аутентификации из одного клиента:
//   - Bearer token в заголовке Authorization (обычные REST-запросы);
//   - cookie (устанавливается через POST /api/auth/set-cookie), которой
//     аутентифицируется потоковый канал уведомлений — EventSource-аналог
//     не умеет ставить заголовки, поэтому поток ходит только с cookie.
//
// Анонимный Request и авторизованный FetchWithAuth разделены: публичные
// endpoints (просмотр каталога) не тратятся на резолюцию токена.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource — источник bearer-токена для авторизованных запросов.
// Обычно это session.Store: порядок разрешения токена (TokenMap активного
// пользователя → tab-scoped токен) инкапсулирован там.
type TokenSource interface {
	GetToken() string
}

// Client — HTTP-шлюз к REST backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	logger  *slog.Logger

	// anon — клиент без cookie jar (анонимные запросы)
	anon *http.Client
	// cred — клиент с cookie jar (credentials include)
	cred *http.Client
	// stream — клиент с тем же jar, но без таймаута (долгоживущий SSE)
	stream *http.Client
}

// New создаёт шлюз к backend по адресу baseURL.
// timeout — таймаут обычных (не потоковых) запросов.
// tokens — источник токена (может быть nil: все запросы анонимны).
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("создание cookie jar: %w", err)
	}

	transport := &http.Transport{
		// Пул idle-соединений для переиспользования
		MaxIdleConnsPerHost: 10,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger.With(slog.String("component", "api_client")),
		anon:    &http.Client{Timeout: timeout, Transport: transport},
		cred:    &http.Client{Timeout: timeout, Transport: transport, Jar: jar},
		stream:  &http.Client{Transport: transport, Jar: jar},
	}, nil
}

// BaseURL возвращает базовый URL backend (для AbsoluteURL).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Multipart — multipart/form-data тело запроса (загрузка обложек).
// Собирается через NewMultipart.
type Multipart struct {
	buf         bytes.Buffer
	contentType string
}

// NewMultipart собирает multipart-тело с одним файловым полем.
func NewMultipart(field, filename string, r io.Reader) (*Multipart, error) {
	m := &Multipart{}
	w := multipart.NewWriter(&m.buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("создание multipart-поля %s: %w", field, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("копирование содержимого файла: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("закрытие multipart writer: %w", err)
	}
	m.contentType = w.FormDataContentType()
	return m, nil
}

// Request выполняет анонимный запрос к backend.
// Возвращает сырое JSON-тело ответа; успешный ответ с пустым или
// нераспарсиваемым телом — (nil, nil): "нет тела" — валидная форма успеха
// (204-подобные действия). Не-2xx → *RequestError. Ровно один сетевой
// round trip, без retry.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, c.anon, false, method, path, body)
}

// FetchWithAuth — то же, что Request, но:
//   - резолвит bearer-токен через TokenSource и ставит Authorization,
//     когда токен есть;
//   - всегда ходит с cookie jar, чтобы параллельный cookie-канал
//     (поток уведомлений) оставался аутентифицированным.
func (c *Client) FetchWithAuth(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, c.cred, true, method, path, body)
}

// do — общий путь выполнения запроса.
func (c *Client) do(ctx context.Context, httpClient *http.Client, withAuth bool, method, path string, body any) (json.RawMessage, error) {
	reqBody, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s %s: %w", method, path, err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if withAuth && c.tokens != nil {
		if token := c.tokens.GetToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		observeRequest(method, path, 0, started)
		return nil, fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	observeRequest(method, path, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := newRequestError(resp.StatusCode, respBody)
		c.logger.Debug("backend вернул ошибку",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", reqErr.Message),
		)
		return nil, reqErr
	}

	// Пустое или не-JSON тело при успехе — валидный null-результат
	var raw json.RawMessage
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, nil
	}
	return raw, nil
}

// encodeBody сериализует тело запроса.
// nil → без тела; *Multipart → как есть; остальное → JSON.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return http.NoBody, "", nil
	case *Multipart:
		return bytes.NewReader(b.buf.Bytes()), b.contentType, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("сериализация тела запроса: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// --- Типизированные обёртки ---

// GetJSON выполняет авторизованный GET и декодирует ответ в out.
// Пустой ответ оставляет out нетронутым.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	raw, err := c.FetchWithAuth(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeRaw(raw, out)
}

// PostJSON выполняет авторизованный POST с JSON-телом.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	raw, err := c.FetchWithAuth(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeRaw(raw, out)
}

// PutJSON выполняет авторизованный PUT с JSON-телом.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	raw, err := c.FetchWithAuth(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	return decodeRaw(raw, out)
}

// DeleteJSON выполняет авторизованный DELETE.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	raw, err := c.FetchWithAuth(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return decodeRaw(raw, out)
}

// PostAnonJSON выполняет анонимный POST (login, register).
func (c *Client) PostAnonJSON(ctx context.Context, path string, body, out any) error {
	raw, err := c.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeRaw(raw, out)
}

// decodeRaw декодирует сырое JSON-тело в out (nil-тело — no-op).
func decodeRaw(raw json.RawMessage, out any) error {
	if raw == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("декодирование ответа backend: %w", err)
	}
	return nil
}

// OpenStream открывает долгоживущее потоковое соединение (SSE).
// Аутентификация — только cookie (EventSource-семантика: заголовок
// Authorization потоку недоступен). Вызывающий код ОБЯЗАН закрыть
// resp.Body.
func (c *Client) OpenStream(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание потокового запроса %s: %w", path, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("открытие потока %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, newRequestError(resp.StatusCode, body)
	}

	return resp, nil
}
