package api

import "strings"

// AbsoluteURL переписывает относительный путь статики (обложки книг)
// в абсолютный URL относительно base. Идемпотентна: уже абсолютные
// URL возвращаются без изменений, поэтому повторное применение безопасно.
//
//	""                  → ""
//	"https://x/y.jpg"   → "https://x/y.jpg"
//	"/static/c/1.jpg"   → base + "/static/c/1.jpg"
//	"covers/1.jpg"      → base + "/covers/1.jpg"
func AbsoluteURL(base, path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base = strings.TrimRight(base, "/")

	// Статика сервится по /static/...
	if strings.HasPrefix(path, "/static/") {
		return base + path
	}

	return base + "/" + strings.TrimLeft(path, "/")
}
