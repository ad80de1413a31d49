package openlibrary

import "encoding/json"

// SearchResponse is the body of /search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Doc is a single work returned by /search.json
type Doc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	Subject             []string `json:"subject"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Language            []string `json:"language"`
	Publisher           []string `json:"publisher"`
	HasFulltext         bool     `json:"has_fulltext"`
	LendingEdition      string   `json:"lending_edition_s"`
	IA                  []string `json:"ia"`
}

// Work is the body of /works/<id>.json, /books/<id>.json and /isbn/<isbn>.json
type Work struct {
	Key           string          `json:"key"`
	Title         string          `json:"title"`
	Authors       []WorkAuthor    `json:"authors"`
	Covers        []int           `json:"covers"`
	Description   json.RawMessage `json:"description"`
	PublishDate   string          `json:"publish_date"`
	ISBN13        []string        `json:"isbn_13"`
	ISBN10        []string        `json:"isbn_10"`
	NumberOfPages int             `json:"number_of_pages"`
	Languages     []KeyRef        `json:"languages"`
	Publishers    []string        `json:"publishers"`
	Subjects      []string        `json:"subjects"`
}

// WorkAuthor appears either as {"author": {"key": ...}} on works or {"key": ...} on editions.
type WorkAuthor struct {
	Author *KeyRef `json:"author"`
	Key    string  `json:"key"`
}

type KeyRef struct {
	Key string `json:"key"`
}

// Author is the body of /authors/<id>.json
type Author struct {
	Name string `json:"name"`
}

// SubjectResponse is the body of /subjects/<subject>.json
type SubjectResponse struct {
	WorkCount int           `json:"work_count"`
	Works     []SubjectWork `json:"works"`
}

type SubjectWork struct {
	Key              string       `json:"key"`
	Title            string       `json:"title"`
	Authors          []NamedEntry `json:"authors"`
	CoverID          int          `json:"cover_id"`
	FirstPublishYear int          `json:"first_publish_year"`
	HasFulltext      bool         `json:"has_fulltext"`
	LendingEdition   string       `json:"lending_edition"`
}

type NamedEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// AuthorWorksResponse is the body of /authors/<id>/works.json
type AuthorWorksResponse struct {
	Size    int           `json:"size"`
	Entries []AuthorEntry `json:"entries"`
}

type AuthorEntry struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Subjects []string `json:"subjects"`
}
