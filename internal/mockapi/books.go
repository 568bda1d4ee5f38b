package mockapi

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// maxCoverUpload — серверный лимит размера обложки.
const maxCoverUpload = 3 << 20

// handleBooksList — GET /api/books/ с фильтрами в query string.
func (h *Handler) handleBooksList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.BookFilter{
		Q:           q.Get("q"),
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		BookFormat:  q.Get("book_format"),
		Shelf:       q.Get("shelf"),
	}
	if y := q.Get("publication_year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid publication_year")
			return
		}
		f.PublicationYear = year
	}

	writeJSON(w, http.StatusOK, h.store.Books(f))
}

// handleBookGet — GET /api/books/{id}.
func (h *Handler) handleBookGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	book, ok := h.store.Book(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// handleCategories — GET /api/books/categories.
func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Categories())
}

// handleBookCreate — POST /api/books/ (библиотекарь).
func (h *Handler) handleBookCreate(w http.ResponseWriter, r *http.Request) {
	var book model.Book
	if !decodeBody(w, r, &book) {
		return
	}
	if book.Title == "" || book.Author == "" {
		writeError(w, http.StatusUnprocessableEntity, "Title and author are required")
		return
	}
	writeJSON(w, http.StatusCreated, h.store.CreateBook(book))
}

// handleBookUpdate — PUT /api/books/{id} (библиотекарь).
func (h *Handler) handleBookUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var book model.Book
	if !decodeBody(w, r, &book) {
		return
	}
	updated, ok := h.store.UpdateBook(id, book)
	if !ok {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleBookDelete — DELETE /api/books/{isbn} (библиотекарь).
func (h *Handler) handleBookDelete(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteBook(chi.URLParam(r, "isbn")) {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBookCover — POST /api/books/{id}/cover (библиотекарь).
// Принимает multipart-поле file, сохраняет под uuid-именем и отдаёт
// книгу с относительным cover_url (/static/covers/...).
func (h *Handler) handleBookCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := h.store.Book(id); !ok {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	if err := r.ParseMultipartForm(maxCoverUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		writeError(w, http.StatusUnprocessableEntity, "Only .jpg, .jpeg and .png covers are allowed")
		return
	}
	if header.Size > maxCoverUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "Cover file exceeds 3 MB")
		return
	}

	name := uuid.NewString() + ext
	if err := h.saveCover(name, file); err != nil {
		h.logger.Error("не удалось сохранить обложку", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Cover upload failed")
		return
	}

	book, _ := h.store.SetBookCover(id, "/static/covers/"+name)
	writeJSON(w, http.StatusOK, book)
}

// saveCover записывает файл обложки в coverDir.
func (h *Handler) saveCover(name string, src io.Reader) error {
	if h.coverDir == "" {
		return fmt.Errorf("каталог обложек не настроен")
	}
	if err := os.MkdirAll(h.coverDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.coverDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}
