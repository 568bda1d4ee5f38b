package api

import "testing"

func TestAbsoluteURL(t *testing.T) {
	const base = "http://api.example.com"

	tests := []struct {
		name string
		path string
		want string
	}{
		{"пустой путь", "", ""},
		{"уже абсолютный http", "http://cdn.example.com/c.jpg", "http://cdn.example.com/c.jpg"},
		{"уже абсолютный https", "https://cdn.example.com/c.jpg", "https://cdn.example.com/c.jpg"},
		{"статика", "/static/covers/1.jpg", base + "/static/covers/1.jpg"},
		{"относительный без слэша", "covers/1.jpg", base + "/covers/1.jpg"},
		{"относительный со слэшем", "/covers/1.jpg", base + "/covers/1.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AbsoluteURL(base, tt.path); got != tt.want {
				t.Errorf("ожидалось %q, получено %q", tt.want, got)
			}
		})
	}
}

// Повторное применение не меняет результат.
func TestAbsoluteURLIdempotent(t *testing.T) {
	const base = "http://api.example.com"

	for _, path := range []string{"", "/static/covers/1.jpg", "covers/1.jpg", "https://x/y.jpg"} {
		once := AbsoluteURL(base, path)
		twice := AbsoluteURL(base, once)
		if once != twice {
			t.Errorf("не идемпотентна для %q: %q != %q", path, once, twice)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/books/", "/api/books/"},
		{"/api/books/42", "/api/books/{id}"},
		{"/api/borrows/7/return", "/api/borrows/{id}/return"},
		{"/api/books/?q=dune", "/api/books/"},
		{"/api/payments/pay/42", "/api/payments/pay/{id}"},
		{"/api/borrows/my?history=true", "/api/borrows/my"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q): ожидалось %q, получено %q", tt.path, tt.want, got)
		}
	}
}
