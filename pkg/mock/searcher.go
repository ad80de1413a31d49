package mock

import (
	"context"
	"sync/atomic"

	"github.com/iziplay/freebooks-api/pkg/book"
)

var _ book.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of book.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, page, limit int) (*book.Page, error)

	calls atomic.Int64
}

func (s *Searcher) Search(ctx context.Context, query string, page, limit int) (*book.Page, error) {
	s.calls.Add(1)
	return s.SearchFn(ctx, query, page, limit)
}

// Calls returns how many times Search was invoked.
func (s *Searcher) Calls() int {
	return int(s.calls.Load())
}

// Returning builds a Searcher that always answers with books, using
// len(books) as the upstream total.
func Returning(books ...book.Book) *Searcher {
	return &Searcher{
		SearchFn: func(context.Context, string, int, int) (*book.Page, error) {
			out := make([]book.Book, len(books))
			copy(out, books)
			return &book.Page{Books: out, Total: len(out)}, nil
		},
	}
}

// Failing builds a Searcher that always fails with err.
func Failing(err error) *Searcher {
	return &Searcher{
		SearchFn: func(context.Context, string, int, int) (*book.Page, error) {
			return nil, err
		},
	}
}
