package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RequestError — нормализованная ошибка HTTP-запроса к backend.
// Единственная форма, в которой транспортные ошибки не-2xx доходят до
// вызывающего кода: человекочитаемое сообщение + числовой статус.
type RequestError struct {
	// Message — best-effort сообщение: detail из JSON-тела → message →
	// сырой JSON → текст статусной строки.
	Message string
	// Status — HTTP-статус ответа.
	Status int
}

// Error реализует error.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// AsRequestError извлекает *RequestError из цепочки ошибок.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	ok := errors.As(err, &re)
	return re, ok
}

// newRequestError строит RequestError из статуса и тела ответа.
// Порядок разрешения сообщения повторяет контракт §7:
// detail → message → сырой JSON → статусная строка.
func newRequestError(status int, body []byte) *RequestError {
	msg := requestErrMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "Request failed"
	}
	return &RequestError{Message: msg, Status: status}
}

// requestErrMessage вытаскивает сообщение из JSON-тела ошибки.
// Возвращает "", если тело пустое или не JSON.
func requestErrMessage(body []byte) string {
	if len(strings.TrimSpace(string(body))) == 0 {
		return ""
	}

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	// Не распарсилось в известную форму — отдаём сырой JSON как есть
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err == nil {
		return string(raw)
	}
	return ""
}
