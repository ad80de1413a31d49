package routing

import (
	"context"
	"net/http"
	"regexp"

	"github.com/danielgtaylor/huma/v2"
	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/gutenberg"
	"github.com/iziplay/freebooks-api/pkg/isbn"
)

// OpenLibrary is the Open Library catalog as used by the passthrough routes.
type OpenLibrary interface {
	book.Searcher
	Get(ctx context.Context, id string) (*book.Book, error)
	Subject(ctx context.Context, subject string, page, limit int) (*book.Page, error)
	AuthorWorks(ctx context.Context, authorID string, page, limit int) (*book.Page, error)
}

type Gutenberg interface {
	book.Searcher
	Get(ctx context.Context, id int) (*book.Book, error)
	Popular(ctx context.Context, page, limit int) (*book.Page, error)
	ByAuthor(ctx context.Context, name string, page, limit int) (*book.Page, error)
	BySubject(ctx context.Context, topic string, page, limit int) (*book.Page, error)
	ByLanguage(ctx context.Context, code string, page, limit int) (*book.Page, error)
}

type GoogleBooks interface {
	book.Searcher
	Get(ctx context.Context, volumeID string) (*book.Book, error)
	ByISBN(ctx context.Context, code string) (*book.Book, error)
	ByAuthor(ctx context.Context, name string, page, limit int) (*book.Page, error)
	BySubject(ctx context.Context, subject string, page, limit int) (*book.Page, error)
	FreeEbooks(ctx context.Context, page, limit int) (*book.Page, error)
	Bestsellers(ctx context.Context, category string, limit int) (*book.Page, error)
}

type BookOutput struct {
	Body *book.Book
}

type PageOutput struct {
	Body struct {
		Total int         `json:"total"`
		Page  int         `json:"page"`
		Books []book.Book `json:"books"`
	}
}

type LanguagesOutput struct {
	Body struct {
		Languages []gutenberg.Language `json:"languages"`
	}
}

type CatalogSearchInput struct {
	Query string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Results per page"`
}

type PagingInput struct {
	Page  int `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Results per page"`
}

type NamedPagingInput struct {
	Name  string `path:"name" minLength:"1" doc:"Author, subject or language"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Results per page"`
}

// Google Books never returns more than 40 items per request.
type GoogleSearchInput struct {
	Query string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"40" doc:"Results per page"`
}

type GooglePagingInput struct {
	Page  int `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"40" doc:"Results per page"`
}

type GoogleNamedPagingInput struct {
	Name  string `path:"name" minLength:"1" doc:"Author, subject or category"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"40" doc:"Results per page"`
}

type BestsellersInput struct {
	Name  string `path:"name" minLength:"1" doc:"Category, e.g. fiction"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"40" doc:"Number of volumes"`
}

type IDInput struct {
	ID string `path:"id" minLength:"1" doc:"Catalog specific identifier"`
}

type GutenbergIDInput struct {
	ID int `path:"id" minimum:"1" doc:"Project Gutenberg book number"`
}

type ISBNInput struct {
	ISBN string `path:"isbn" minLength:"10" doc:"ISBN10 or ISBN13 code"`
}

func pageOutput(p *book.Page, page int) *PageOutput {
	resp := &PageOutput{}
	resp.Body.Page = page
	resp.Body.Books = []book.Book{}
	if p != nil {
		resp.Body.Total = p.Total
		if p.Books != nil {
			resp.Body.Books = p.Books
		}
	}
	return resp
}

var bareKey = regexp.MustCompile(`^OL\d+[WMA]$`)

// libraryPath expands a bare Open Library key: OL…W is a work, OL…M an
// edition and OL…A an author. Anything else is passed as is.
func libraryPath(id string) string {
	if !bareKey.MatchString(id) {
		return id
	}
	switch id[len(id)-1] {
	case 'W':
		return "works/" + id
	case 'M':
		return "books/" + id
	default:
		return "authors/" + id
	}
}

func setupOpenLibrary(api huma.API, ol OpenLibrary) {
	tags := []string{"Open Library"}

	huma.Register(api, huma.Operation{
		OperationID: "OpenLibrarySearch",
		Method:      http.MethodGet,
		Path:        "/v1/openlibrary/search",
		Summary:     "Search Open Library",
		Tags:        tags,
	}, func(ctx context.Context, input *CatalogSearchInput) (*PageOutput, error) {
		p, err := ol.Search(ctx, input.Query, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("open library is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "OpenLibraryGetBook",
		Method:      http.MethodGet,
		Path:        "/v1/openlibrary/books/{id}",
		Summary:     "Get an Open Library book",
		Description: "Get a work (OL…W), an edition (OL…M) or an ISBN",
		Tags:        tags,
	}, func(ctx context.Context, input *IDInput) (*BookOutput, error) {
		b, err := ol.Get(ctx, libraryPath(input.ID))
		if err != nil {
			return nil, toHTTPError("open library is unavailable", err)
		}
		return &BookOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "OpenLibrarySubject",
		Method:      http.MethodGet,
		Path:        "/v1/openlibrary/subjects/{name}",
		Summary:     "Browse an Open Library subject",
		Tags:        tags,
	}, func(ctx context.Context, input *NamedPagingInput) (*PageOutput, error) {
		p, err := ol.Subject(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("open library is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "OpenLibraryAuthorWorks",
		Method:      http.MethodGet,
		Path:        "/v1/openlibrary/authors/{name}",
		Summary:     "List the works of an Open Library author",
		Description: "name is the author key, e.g. OL23919A",
		Tags:        tags,
	}, func(ctx context.Context, input *NamedPagingInput) (*PageOutput, error) {
		p, err := ol.AuthorWorks(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("open library is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})
}

func setupGutenberg(api huma.API, g Gutenberg) {
	tags := []string{"Project Gutenberg"}

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergSearch",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/search",
		Summary:     "Search Project Gutenberg",
		Tags:        tags,
	}, func(ctx context.Context, input *CatalogSearchInput) (*PageOutput, error) {
		p, err := g.Search(ctx, input.Query, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("gutenberg is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergGetBook",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/books/{id}",
		Summary:     "Get a Project Gutenberg book",
		Tags:        tags,
	}, func(ctx context.Context, input *GutenbergIDInput) (*BookOutput, error) {
		b, err := g.Get(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError("gutenberg is unavailable", err)
		}
		return &BookOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergPopular",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/popular",
		Summary:     "Most downloaded Project Gutenberg books",
		Tags:        tags,
	}, func(ctx context.Context, input *PagingInput) (*PageOutput, error) {
		p, err := g.Popular(ctx, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("gutenberg is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergByAuthor",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/authors/{name}",
		Summary:     "Project Gutenberg books by author",
		Tags:        tags,
	}, func(ctx context.Context, input *NamedPagingInput) (*PageOutput, error) {
		p, err := g.ByAuthor(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("gutenberg is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergBySubject",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/subjects/{name}",
		Summary:     "Project Gutenberg books by subject",
		Tags:        tags,
	}, func(ctx context.Context, input *NamedPagingInput) (*PageOutput, error) {
		p, err := g.BySubject(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("gutenberg is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergLanguages",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/languages",
		Summary:     "Languages available on Project Gutenberg",
		Tags:        tags,
	}, func(ctx context.Context, input *struct{}) (*LanguagesOutput, error) {
		resp := &LanguagesOutput{}
		resp.Body.Languages = gutenberg.Languages()
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GutenbergByLanguage",
		Method:      http.MethodGet,
		Path:        "/v1/gutenberg/languages/{name}",
		Summary:     "Project Gutenberg books by language",
		Description: "name is a two letter language code, e.g. fr",
		Tags:        tags,
	}, func(ctx context.Context, input *NamedPagingInput) (*PageOutput, error) {
		p, err := g.ByLanguage(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("gutenberg is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})
}

func setupGoogleBooks(api huma.API, gb GoogleBooks) {
	tags := []string{"Google Books"}

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksSearch",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/search",
		Summary:     "Search Google Books",
		Tags:        tags,
	}, func(ctx context.Context, input *GoogleSearchInput) (*PageOutput, error) {
		p, err := gb.Search(ctx, input.Query, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksGetVolume",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/books/{id}",
		Summary:     "Get a Google Books volume",
		Tags:        tags,
	}, func(ctx context.Context, input *IDInput) (*BookOutput, error) {
		b, err := gb.Get(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return &BookOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksByISBN",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/isbn/{isbn}",
		Summary:     "Find a Google Books volume by ISBN",
		Tags:        tags,
	}, func(ctx context.Context, input *ISBNInput) (*BookOutput, error) {
		code := isbn.Normalize(input.ISBN)
		if !isbn.Valid(code) {
			return nil, huma.Error422UnprocessableEntity("invalid ISBN", &huma.ErrorDetail{
				Message:  "must be a valid ISBN10 or ISBN13",
				Location: "path.isbn",
				Value:    input.ISBN,
			})
		}
		b, err := gb.ByISBN(ctx, code)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return &BookOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksByAuthor",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/authors/{name}",
		Summary:     "Google Books volumes by author",
		Tags:        tags,
	}, func(ctx context.Context, input *GoogleNamedPagingInput) (*PageOutput, error) {
		p, err := gb.ByAuthor(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksBySubject",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/subjects/{name}",
		Summary:     "Google Books volumes by subject",
		Tags:        tags,
	}, func(ctx context.Context, input *GoogleNamedPagingInput) (*PageOutput, error) {
		p, err := gb.BySubject(ctx, input.Name, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksFreeEbooks",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/free-ebooks",
		Summary:     "Free e-books on Google Books",
		Tags:        tags,
	}, func(ctx context.Context, input *GooglePagingInput) (*PageOutput, error) {
		p, err := gb.FreeEbooks(ctx, input.Page, input.Limit)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return pageOutput(p, input.Page), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GoogleBooksBestsellers",
		Method:      http.MethodGet,
		Path:        "/v1/googlebooks/bestsellers/{name}",
		Summary:     "Most relevant Google Books volumes of a category",
		Tags:        tags,
	}, func(ctx context.Context, input *BestsellersInput) (*PageOutput, error) {
		p, err := gb.Bestsellers(ctx, input.Name, input.Limit)
		if err != nil {
			return nil, toHTTPError("google books is unavailable", err)
		}
		return pageOutput(p, 1), nil
	})
}
