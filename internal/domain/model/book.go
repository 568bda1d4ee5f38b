package model

// Book — запись книги в каталоге.
type Book struct {
	// ID — идентификатор книги (присваивается сервером)
	ID int64 `json:"id"`
	// Title — название книги
	Title string `json:"title"`
	// Author — автор
	Author string `json:"author"`
	// ISBN — ISBN (цифры и дефисы)
	ISBN string `json:"isbn,omitempty"`
	// Category — категория каталога
	Category string `json:"category,omitempty"`
	// Subcategory — подкатегория
	Subcategory string `json:"subcategory,omitempty"`
	// Description — аннотация
	Description string `json:"description,omitempty"`
	// PublicationYear — год издания
	PublicationYear int `json:"publication_year,omitempty"`
	// BookFormat — формат издания (hardcover, paperback, ebook...)
	BookFormat string `json:"book_format,omitempty"`
	// Shelf — полка хранения
	Shelf string `json:"shelf,omitempty"`
	// CoverURL — URL обложки. Сервер отдаёт относительный путь (/static/...),
	// клиент переписывает в абсолютный через api.AbsoluteURL.
	CoverURL string `json:"cover_url,omitempty"`
	// TotalCopies — всего экземпляров
	TotalCopies int `json:"total_copies,omitempty"`
	// AvailableCopies — доступно экземпляров (0 — книга резервируется, не выдаётся)
	AvailableCopies int `json:"available_copies,omitempty"`
}

// BookFilter — фильтры списка книг (GET /api/books).
// Пустые поля не попадают в query string.
type BookFilter struct {
	// Q — полнотекстовый поиск по названию/автору/ISBN
	Q string
	// Category — точное совпадение категории
	Category string
	// Subcategory — точное совпадение подкатегории
	Subcategory string
	// BookFormat — формат издания
	BookFormat string
	// PublicationYear — год издания (0 — не фильтровать)
	PublicationYear int
	// Shelf — полка
	Shelf string
}
