// Пакет mockapi — локальный in-memory backend LMS для разработки и
// интеграционных тестов клиента. Реализует тот же REST-контракт, что и
// боевой сервер: аутентификация (bearer + cookie), каталог, выдачи,
// резервирования, платежи, уведомления с SSE-потоком.
package mockapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// borrowPeriod — срок выдачи, назначаемый сервером.
const borrowPeriod = 14 * 24 * time.Hour

// Штрафные ставки сервера (источник истины для fee_applied).
const (
	baseFee    = 5.0
	hourlyRate = 1.0
)

// account — пользователь с учётными данными.
type account struct {
	model.User
	passwordHash []byte
}

// borrowRecord — запись выдачи с платёжными полями.
type borrowRecord struct {
	model.Borrow
	paymentStatus string
	paidAt        *time.Time
}

// notificationRecord — уведомление с флагом прочтения.
type notificationRecord struct {
	model.Notification
	read bool
}

// Store — всё состояние mock-сервера. Потокобезопасен.
type Store struct {
	mu sync.Mutex

	users         map[int64]*account
	books         map[int64]*model.Book
	borrows       map[int64]*borrowRecord
	reservations  []*model.Reservation
	notifications map[int64]*notificationRecord

	nextUserID         int64
	nextBookID         int64
	nextBorrowID       int64
	nextReservationID  int64
	nextNotificationID int64

	// now — источник времени, подменяется в тестах
	now func() time.Time
}

// NewStore создаёт пустое состояние.
func NewStore() *Store {
	return &Store{
		users:         map[int64]*account{},
		books:         map[int64]*model.Book{},
		borrows:       map[int64]*borrowRecord{},
		notifications: map[int64]*notificationRecord{},
		now:           time.Now,
	}
}

// Seed наполняет состояние демонстрационными данными:
// библиотекарь, читатель и несколько книг.
func (s *Store) Seed() error {
	if _, err := s.CreateUser("librarian", "Librarian-Pass1!", "Head Librarian", model.RoleLibrarian); err != nil {
		return err
	}
	if _, err := s.CreateUser("student", "Student-Pass1!", "Demo Student", model.RoleStudent); err != nil {
		return err
	}

	books := []model.Book{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Category: "fiction", Subcategory: "sci-fi", PublicationYear: 1965, BookFormat: "paperback", Shelf: "A1", TotalCopies: 2, AvailableCopies: 2},
		{Title: "Solaris", Author: "Stanislaw Lem", ISBN: "9780156027601", Category: "fiction", Subcategory: "sci-fi", PublicationYear: 1961, BookFormat: "hardcover", Shelf: "A2", TotalCopies: 1, AvailableCopies: 1},
		{Title: "The C Programming Language", Author: "Kernighan, Ritchie", ISBN: "9780131103627", Category: "tech", Subcategory: "programming", PublicationYear: 1978, BookFormat: "paperback", Shelf: "B1", TotalCopies: 3, AvailableCopies: 3},
	}
	for _, b := range books {
		s.CreateBook(b)
	}
	return nil
}

// --- Пользователи ---

// CreateUser регистрирует пользователя с bcrypt-хэшем пароля.
func (s *Store) CreateUser(username, password, fullName, role string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if a.Username == username {
			return nil, fmt.Errorf("пользователь %s уже существует", username)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	s.nextUserID++
	a := &account{
		User: model.User{
			ID:       s.nextUserID,
			Username: username,
			FullName: fullName,
			Role:     role,
			IsActive: true,
		},
		passwordHash: hash,
	}
	s.users[a.ID] = a
	u := a.User
	return &u, nil
}

// Authenticate проверяет учётные данные.
func (s *Store) Authenticate(username, password string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if a.Username == username && a.IsActive {
			if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil {
				u := a.User
				return &u, true
			}
			return nil, false
		}
	}
	return nil, false
}

// UserByUsername возвращает пользователя по имени.
func (s *Store) UserByUsername(username string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.users {
		if a.Username == username {
			u := a.User
			return &u, true
		}
	}
	return nil, false
}

// userByID возвращает пользователя по id (zero value, если не найден).
func (s *Store) userByID(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return model.User{}, false
	}
	return a.User, true
}

// Users возвращает всех пользователей (по возрастанию id).
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for id := int64(1); id <= s.nextUserID; id++ {
		if a, ok := s.users[id]; ok {
			out = append(out, a.User)
		}
	}
	return out
}

// DeleteUser удаляет пользователя.
func (s *Store) DeleteUser(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

// --- Каталог ---

// CreateBook добавляет книгу, присваивая id.
func (s *Store) CreateBook(b model.Book) *model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookID++
	b.ID = s.nextBookID
	if b.TotalCopies == 0 {
		b.TotalCopies = 1
		b.AvailableCopies = 1
	}
	s.books[b.ID] = &b
	out := b
	return &out
}

// Book возвращает книгу по id.
func (s *Store) Book(id int64) (*model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, false
	}
	out := *b
	return &out, true
}

// Books возвращает книги, проходящие фильтр (по возрастанию id).
func (s *Store) Books(f model.BookFilter) []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Book{}
	for id := int64(1); id <= s.nextBookID; id++ {
		b, ok := s.books[id]
		if !ok || !matchesFilter(b, f) {
			continue
		}
		out = append(out, *b)
	}
	return out
}

// UpdateBook заменяет карточку книги, сохраняя id.
func (s *Store) UpdateBook(id int64, b model.Book) (*model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.books[id]
	if !ok {
		return nil, false
	}
	b.ID = id
	if b.CoverURL == "" {
		b.CoverURL = existing.CoverURL
	}
	s.books[id] = &b
	out := b
	return &out, true
}

// SetBookCover обновляет URL обложки.
func (s *Store) SetBookCover(id int64, coverURL string) (*model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, false
	}
	b.CoverURL = coverURL
	out := *b
	return &out, true
}

// DeleteBook удаляет книгу по ISBN. Сравнение — по нормализованной
// форме, поэтому дефисы и пробелы в запросе не мешают.
func (s *Store) DeleteBook(isbn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := normalizeISBN(isbn)
	if normalized == "" {
		return false
	}
	for id, b := range s.books {
		if normalizeISBN(b.ISBN) == normalized {
			delete(s.books, id)
			return true
		}
	}
	return false
}

// normalizeISBN оставляет в ISBN цифры и контрольный символ X.
func normalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(isbn) {
		if r >= '0' && r <= '9' || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Categories возвращает дерево категория → подкатегории.
func (s *Store) Categories() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string][]string{}
	for _, b := range s.books {
		if b.Category == "" {
			continue
		}
		subs := out[b.Category]
		if b.Subcategory != "" && !contains(subs, b.Subcategory) {
			subs = append(subs, b.Subcategory)
		}
		out[b.Category] = subs
	}
	return out
}

func matchesFilter(b *model.Book, f model.BookFilter) bool {
	if f.Q != "" && !containsFold(b.Title, f.Q) && !containsFold(b.Author, f.Q) && !containsFold(b.ISBN, f.Q) {
		return false
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && b.Subcategory != f.Subcategory {
		return false
	}
	if f.BookFormat != "" && b.BookFormat != f.BookFormat {
		return false
	}
	if f.PublicationYear != 0 && b.PublicationYear != f.PublicationYear {
		return false
	}
	if f.Shelf != "" && b.Shelf != f.Shelf {
		return false
	}
	return true
}
