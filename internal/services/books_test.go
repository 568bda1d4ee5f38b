package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

func bookFilterNone() model.BookFilter { return model.BookFilter{} }

func bookTitled(title string) model.Book { return model.Book{Title: title} }

func TestBookListRewritesCovers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":1,"title":"Dune","cover_url":"/static/covers/1.jpg"},
			{"id":2,"title":"Solaris","cover_url":"https://cdn.example.com/2.jpg"},
			{"id":3,"title":"Neuromancer"}
		]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	list, err := books.List(context.Background(), bookFilterNone())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ожидалось 3 книги, получено %d", len(list))
	}
	if list[0].CoverURL != srv.URL+"/static/covers/1.jpg" {
		t.Errorf("относительная обложка не переписана: %q", list[0].CoverURL)
	}
	if list[1].CoverURL != "https://cdn.example.com/2.jpg" {
		t.Errorf("абсолютная обложка изменена: %q", list[1].CoverURL)
	}
	if list[2].CoverURL != "" {
		t.Errorf("пустая обложка должна остаться пустой: %q", list[2].CoverURL)
	}
}

func TestBookListFilters(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	f := bookFilterNone()
	f.Q = "dune"
	f.Category = "fiction"
	f.PublicationYear = 1965
	if _, err := books.List(context.Background(), f); err != nil {
		t.Fatalf("List: %v", err)
	}

	for _, part := range []string{"q=dune", "category=fiction", "publication_year=1965"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query string %q не содержит %q", gotQuery, part)
		}
	}
	if strings.Contains(gotQuery, "shelf") {
		t.Errorf("пустой фильтр попал в query string: %q", gotQuery)
	}
}

func TestBookGetUsesCache(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/7", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"id":7,"title":"Dune"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache := NewBookCache(16, time.Minute)
	books := NewBookService(testGateway(t, srv, nil), cache, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b, err := books.Get(ctx, 7)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if b.Title != "Dune" {
			t.Fatalf("неожиданная книга: %+v", b)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("ожидался 1 запрос к серверу, получено %d", got)
	}

	// Мутация инвалидирует кэш
	mux.HandleFunc("PUT /api/books/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":7,"title":"Dune (2nd ed.)"}`)
	})
	if _, err := books.Update(ctx, 7, bookTitled("Dune (2nd ed.)")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := books.Get(ctx, 7); err != nil {
		t.Fatalf("Get после Update: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("после инвалидации ожидалось 2 запроса, получено %d", got)
	}
}

func TestBookCreateNormalizesISBN(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/books/", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		fmt.Fprint(w, `{"id":1}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	book := bookTitled("Dune")
	book.ISBN = "978-0-441-01359-3"
	if _, err := books.Create(context.Background(), book); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.Contains(gotBody, `"isbn":"9780441013593"`) {
		t.Errorf("ISBN не нормализован: %s", gotBody)
	}

	book.ISBN = "12345"
	if _, err := books.Create(context.Background(), book); err == nil {
		t.Error("ожидалась ошибка валидации ISBN, получен nil")
	}
}

func TestUploadCoverValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("сервер не должен вызываться при невалидном файле")
	}))
	defer srv.Close()

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	ctx := context.Background()
	dir := t.TempDir()

	// Недопустимое расширение
	gif := filepath.Join(dir, "cover.gif")
	os.WriteFile(gif, []byte("gif"), 0o600)
	if _, err := books.UploadCover(ctx, 1, gif); err == nil {
		t.Error("ожидалась ошибка типа файла, получен nil")
	}

	// Слишком большой файл
	big := filepath.Join(dir, "cover.png")
	os.WriteFile(big, make([]byte, maxCoverSize+1), 0o600)
	if _, err := books.UploadCover(ctx, 1, big); err == nil {
		t.Error("ожидалась ошибка размера файла, получен nil")
	}
}

func TestUploadCover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/books/1/cover", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxCoverSize); err != nil {
			t.Errorf("не multipart: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("поле file отсутствует: %v", err)
		}
		f.Close()
		if header.Filename != "cover.png" {
			t.Errorf("неожиданное имя файла: %q", header.Filename)
		}
		fmt.Fprint(w, `{"id":1,"cover_url":"/static/covers/1.png"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cover.png")
	os.WriteFile(path, []byte("png-bytes"), 0o600)

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	book, err := books.UploadCover(context.Background(), 1, path)
	if err != nil {
		t.Fatalf("UploadCover: %v", err)
	}
	if book.CoverURL != srv.URL+"/static/covers/1.png" {
		t.Errorf("обложка не переписана в абсолютный URL: %q", book.CoverURL)
	}
}

// Удаление строит путь по нормализованному ISBN: дефисы и пробелы
// вычищаются до обращения к серверу.
func TestBookDeleteByISBN(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/books/{isbn}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	if err := books.Delete(context.Background(), "978-0-441-01359-3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotPath != "/api/books/9780441013593" {
		t.Errorf("ожидался путь /api/books/9780441013593, получен %q", gotPath)
	}
}

// Невалидный ISBN отклоняется до обращения к серверу.
func TestBookDeleteInvalidISBN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("сервер не должен вызываться при невалидном ISBN")
	}))
	defer srv.Close()

	books := NewBookService(testGateway(t, srv, nil), nil, testLogger())
	if err := books.Delete(context.Background(), "12345"); err == nil {
		t.Error("ожидалась ошибка валидации, получен nil")
	}
}
