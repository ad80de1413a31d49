package mock

import (
	"context"

	"github.com/iziplay/freebooks-api/pkg/book"
)

// OpenLibrary is a mock of the Open Library catalog.
type OpenLibrary struct {
	Searcher
	GetFn         func(ctx context.Context, id string) (*book.Book, error)
	SubjectFn     func(ctx context.Context, subject string, page, limit int) (*book.Page, error)
	AuthorWorksFn func(ctx context.Context, authorID string, page, limit int) (*book.Page, error)
}

func (m *OpenLibrary) Get(ctx context.Context, id string) (*book.Book, error) {
	return m.GetFn(ctx, id)
}

func (m *OpenLibrary) Subject(ctx context.Context, subject string, page, limit int) (*book.Page, error) {
	return m.SubjectFn(ctx, subject, page, limit)
}

func (m *OpenLibrary) AuthorWorks(ctx context.Context, authorID string, page, limit int) (*book.Page, error) {
	return m.AuthorWorksFn(ctx, authorID, page, limit)
}

// Gutenberg is a mock of the Gutendex catalog.
type Gutenberg struct {
	Searcher
	GetFn        func(ctx context.Context, id int) (*book.Book, error)
	PopularFn    func(ctx context.Context, page, limit int) (*book.Page, error)
	ByAuthorFn   func(ctx context.Context, name string, page, limit int) (*book.Page, error)
	BySubjectFn  func(ctx context.Context, topic string, page, limit int) (*book.Page, error)
	ByLanguageFn func(ctx context.Context, code string, page, limit int) (*book.Page, error)
}

func (m *Gutenberg) Get(ctx context.Context, id int) (*book.Book, error) {
	return m.GetFn(ctx, id)
}

func (m *Gutenberg) Popular(ctx context.Context, page, limit int) (*book.Page, error) {
	return m.PopularFn(ctx, page, limit)
}

func (m *Gutenberg) ByAuthor(ctx context.Context, name string, page, limit int) (*book.Page, error) {
	return m.ByAuthorFn(ctx, name, page, limit)
}

func (m *Gutenberg) BySubject(ctx context.Context, topic string, page, limit int) (*book.Page, error) {
	return m.BySubjectFn(ctx, topic, page, limit)
}

func (m *Gutenberg) ByLanguage(ctx context.Context, code string, page, limit int) (*book.Page, error) {
	return m.ByLanguageFn(ctx, code, page, limit)
}

// GoogleBooks is a mock of the Google Books catalog.
type GoogleBooks struct {
	Searcher
	GetFn         func(ctx context.Context, volumeID string) (*book.Book, error)
	ByISBNFn      func(ctx context.Context, code string) (*book.Book, error)
	ByAuthorFn    func(ctx context.Context, name string, page, limit int) (*book.Page, error)
	BySubjectFn   func(ctx context.Context, subject string, page, limit int) (*book.Page, error)
	FreeEbooksFn  func(ctx context.Context, page, limit int) (*book.Page, error)
	BestsellersFn func(ctx context.Context, category string, limit int) (*book.Page, error)
}

func (m *GoogleBooks) Get(ctx context.Context, volumeID string) (*book.Book, error) {
	return m.GetFn(ctx, volumeID)
}

func (m *GoogleBooks) ByISBN(ctx context.Context, code string) (*book.Book, error) {
	return m.ByISBNFn(ctx, code)
}

func (m *GoogleBooks) ByAuthor(ctx context.Context, name string, page, limit int) (*book.Page, error) {
	return m.ByAuthorFn(ctx, name, page, limit)
}

func (m *GoogleBooks) BySubject(ctx context.Context, subject string, page, limit int) (*book.Page, error) {
	return m.BySubjectFn(ctx, subject, page, limit)
}

func (m *GoogleBooks) FreeEbooks(ctx context.Context, page, limit int) (*book.Page, error) {
	return m.FreeEbooksFn(ctx, page, limit)
}

func (m *GoogleBooks) Bestsellers(ctx context.Context, category string, limit int) (*book.Page, error) {
	return m.BestsellersFn(ctx, category, limit)
}
