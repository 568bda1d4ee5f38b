package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// BookCache — LRU-кэш карточек книг с TTL.
// Снимает повторные запросы карточки при навигации по каталогу;
// мутация книги (update, delete, загрузка обложки) инвалидирует запись.
type BookCache struct {
	lru *expirable.LRU[int64, model.Book]
}

// NewBookCache создаёт кэш на size записей с временем жизни ttl.
func NewBookCache(size int, ttl time.Duration) *BookCache {
	return &BookCache{
		lru: expirable.NewLRU[int64, model.Book](size, nil, ttl),
	}
}

// Get возвращает книгу из кэша.
func (c *BookCache) Get(id int64) (model.Book, bool) {
	return c.lru.Get(id)
}

// Add кладёт книгу в кэш.
func (c *BookCache) Add(b model.Book) {
	c.lru.Add(b.ID, b)
}

// Remove инвалидирует запись.
func (c *BookCache) Remove(id int64) {
	c.lru.Remove(id)
}

// Purge очищает кэш целиком.
func (c *BookCache) Purge() {
	c.lru.Purge()
}
