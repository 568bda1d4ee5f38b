package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/domain/model"
)

// maxCoverSize — лимит размера файла обложки (проверяется локально,
// до передачи на сервер).
const maxCoverSize = 3 << 20

// BookService — операции каталога книг.
type BookService struct {
	gw     *api.Client
	cache  *BookCache
	logger *slog.Logger
}

// NewBookService создаёт сервис каталога.
// cache может быть nil — тогда каждый Get идёт на сервер.
func NewBookService(gw *api.Client, cache *BookCache, logger *slog.Logger) *BookService {
	return &BookService{
		gw:     gw,
		cache:  cache,
		logger: logger.With(slog.String("component", "book_service")),
	}
}

// List возвращает книги каталога с учётом фильтров.
// URL обложек переписываются в абсолютные.
func (s *BookService) List(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	path := "/api/books/"
	if qs := filterQuery(filter); qs != "" {
		path += "?" + qs
	}

	var books []model.Book
	if err := s.gw.GetJSON(ctx, path, &books); err != nil {
		return nil, fmt.Errorf("список книг: %w", err)
	}
	for i := range books {
		books[i].CoverURL = api.AbsoluteURL(s.gw.BaseURL(), books[i].CoverURL)
	}
	return books, nil
}

// Get возвращает карточку книги (из кэша или с сервера).
func (s *BookService) Get(ctx context.Context, id int64) (*model.Book, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(id); ok {
			return &b, nil
		}
	}

	var book model.Book
	if err := s.gw.GetJSON(ctx, fmt.Sprintf("/api/books/%d", id), &book); err != nil {
		return nil, fmt.Errorf("книга %d: %w", id, err)
	}
	book.CoverURL = api.AbsoluteURL(s.gw.BaseURL(), book.CoverURL)

	if s.cache != nil {
		s.cache.Add(book)
	}
	return &book, nil
}

// Create добавляет книгу в каталог (операция библиотекаря).
// ISBN нормализуется и валидируется на клиенте.
func (s *BookService) Create(ctx context.Context, book model.Book) (*model.Book, error) {
	if book.ISBN != "" {
		if err := ValidateISBN(book.ISBN); err != nil {
			return nil, err
		}
		book.ISBN = NormalizeISBN(book.ISBN)
	}

	var created model.Book
	if err := s.gw.PostJSON(ctx, "/api/books/", book, &created); err != nil {
		return nil, fmt.Errorf("создание книги: %w", err)
	}
	return &created, nil
}

// Update изменяет карточку книги и инвалидирует кэш.
func (s *BookService) Update(ctx context.Context, id int64, book model.Book) (*model.Book, error) {
	if book.ISBN != "" {
		if err := ValidateISBN(book.ISBN); err != nil {
			return nil, err
		}
		book.ISBN = NormalizeISBN(book.ISBN)
	}

	var updated model.Book
	if err := s.gw.PutJSON(ctx, fmt.Sprintf("/api/books/%d", id), book, &updated); err != nil {
		return nil, fmt.Errorf("изменение книги %d: %w", id, err)
	}
	if s.cache != nil {
		s.cache.Remove(id)
	}
	return &updated, nil
}

// Delete удаляет книгу из каталога по ISBN и инвалидирует кэш.
// ISBN нормализуется (остаются цифры и X) до построения пути.
func (s *BookService) Delete(ctx context.Context, isbn string) error {
	if err := ValidateISBN(isbn); err != nil {
		return err
	}
	normalized := NormalizeISBN(isbn)
	if err := s.gw.DeleteJSON(ctx, "/api/books/"+normalized, nil); err != nil {
		return fmt.Errorf("удаление книги %s: %w", normalized, err)
	}
	// id удалённой книги неизвестен — кэш сбрасывается целиком
	if s.cache != nil {
		s.cache.Purge()
	}
	return nil
}

// Categories возвращает дерево категорий каталога
// (категория → подкатегории).
func (s *BookService) Categories(ctx context.Context) (map[string][]string, error) {
	var categories map[string][]string
	if err := s.gw.GetJSON(ctx, "/api/books/categories", &categories); err != nil {
		return nil, fmt.Errorf("категории каталога: %w", err)
	}
	return categories, nil
}

// UploadCover загружает обложку книги из локального файла.
// Тип (.jpg/.jpeg/.png) и размер (до 3 МБ) проверяются до передачи.
// Возвращает книгу с обновлённым cover_url.
func (s *BookService) UploadCover(ctx context.Context, id int64, path string) (*model.Book, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, fmt.Errorf("недопустимый тип обложки %q: допустимы .jpg, .jpeg, .png", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("файл обложки: %w", err)
	}
	if info.Size() > maxCoverSize {
		return nil, fmt.Errorf("файл обложки больше 3 МБ (%d байт)", info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("файл обложки: %w", err)
	}
	defer f.Close()

	body, err := api.NewMultipart("file", filepath.Base(path), f)
	if err != nil {
		return nil, err
	}

	var book model.Book
	if err := s.gw.PostJSON(ctx, fmt.Sprintf("/api/books/%d/cover", id), body, &book); err != nil {
		return nil, fmt.Errorf("загрузка обложки книги %d: %w", id, err)
	}
	book.CoverURL = api.AbsoluteURL(s.gw.BaseURL(), book.CoverURL)

	if s.cache != nil {
		s.cache.Remove(id)
	}
	return &book, nil
}

// filterQuery собирает query string из непустых полей фильтра.
func filterQuery(f model.BookFilter) string {
	q := url.Values{}
	if f.Q != "" {
		q.Set("q", f.Q)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Subcategory != "" {
		q.Set("subcategory", f.Subcategory)
	}
	if f.BookFormat != "" {
		q.Set("book_format", f.BookFormat)
	}
	if f.PublicationYear != 0 {
		q.Set("publication_year", strconv.Itoa(f.PublicationYear))
	}
	if f.Shelf != "" {
		q.Set("shelf", f.Shelf)
	}
	return q.Encode()
}
