package aggregate

import (
	"slices"
	"strings"

	"github.com/iziplay/freebooks-api/pkg/book"
	"golang.org/x/text/cases"
)

// normalize case-folds and trims s.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Similar reports whether a and b look like the same book: their normalized
// titles are equal, or one contains the other and they share an author.
// The relation is symmetric but not transitive.
func Similar(a, b book.Book) bool {
	ta, tb := normalize(a.Title), normalize(b.Title)
	if ta == tb {
		return true
	}
	if !strings.Contains(ta, tb) && !strings.Contains(tb, ta) {
		return false
	}

	authors := make(map[string]struct{}, len(a.Authors))
	for _, name := range a.Authors {
		authors[normalize(name)] = struct{}{}
	}
	for _, name := range b.Authors {
		if _, ok := authors[normalize(name)]; ok {
			return true
		}
	}
	return false
}

type dedupKey struct {
	title  string
	author string
}

// Deduplicate drops every book whose (title, first author) pair, once
// normalized, was already seen. The first occurrence wins and order is kept.
func Deduplicate(books []book.Book) []book.Book {
	seen := make(map[dedupKey]struct{}, len(books))
	out := make([]book.Book, 0, len(books))
	for _, b := range books {
		k := dedupKey{title: normalize(b.Title), author: normalize(b.FirstAuthor())}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, b)
	}
	return out
}

// Rank orders unique by how many books of pool are Similar to each of them,
// most agreed upon first. Ties keep their order in unique.
func Rank(unique, pool []book.Book) []book.Book {
	type scored struct {
		book  book.Book
		score int
	}

	ranked := make([]scored, len(unique))
	for i, u := range unique {
		score := 0
		for _, p := range pool {
			if Similar(u, p) {
				score++
			}
		}
		ranked[i] = scored{book: u, score: score}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return b.score - a.score
	})

	out := make([]book.Book, len(ranked))
	for i, r := range ranked {
		out[i] = r.book
	}
	return out
}

// Paginate returns the page-th window of size limit. Pages past the end
// yield an empty, non-nil slice.
func Paginate(books []book.Book, page, limit int) []book.Book {
	if page < 1 || limit < 1 || page-1 > len(books)/limit {
		return []book.Book{}
	}
	start := (page - 1) * limit
	if start >= len(books) {
		return []book.Book{}
	}
	end := min(start+limit, len(books))
	return books[start:end]
}
