package models

// Person is an author or translator entry on a book.
type Person struct {
	Name      string `json:"name" bson:"name"`
	BirthYear *int   `json:"birthYear,omitempty" bson:"birthYear,omitempty"`
	DeathYear *int   `json:"deathYear,omitempty" bson:"deathYear,omitempty"`
}

// Format is a downloadable rendition of a book.
type Format struct {
	ContentType string `json:"contentType" bson:"contentType"`
	URL         string `json:"url" bson:"url"`
}

type Book struct {
	ID          string   `json:"id" bson:"_id,omitempty" db:"id"`
	GutenbergID int64    `json:"gutenbergId" bson:"gutenbergId" db:"gutenberg_id"`
	Title       string   `json:"title" bson:"title" db:"title"`
	Authors     []Person `json:"authors" bson:"authors"`
	Translators []Person `json:"translators,omitempty" bson:"translators,omitempty"`
	Type        string   `json:"type" bson:"type" db:"type"`
	Subjects    []string `json:"subjects,omitempty" bson:"subjects,omitempty"`
	Languages   []string `json:"languages,omitempty" bson:"languages,omitempty"`
	Formats     []Format `json:"formats" bson:"formats"`
	Downloads   int64    `json:"downloads" bson:"downloads" db:"downloads"`
	Bookshelves []string `json:"bookShelves,omitempty" bson:"bookShelves,omitempty"`
	Copyright   *bool    `json:"copyright,omitempty" bson:"copyright,omitempty"`
}

// BookResponse is the catalog projection: full metadata replaced by one
// cover image link and one plain-text content link.
type BookResponse struct {
	ID          string   `json:"id"`
	GutenbergID int64    `json:"gutenbergId"`
	Title       string   `json:"title"`
	Authors     []Person `json:"authors"`
	Cover       *Format  `json:"cover"`
	Content     *Format  `json:"content"`
	Downloads   int64    `json:"downloads"`
}

var contentTypesText = []string{
	"text/plain",
	"text/plain; charset=big5",
	"text/plain; charset=iso-8859-1",
	"text/plain; charset=iso-8859-15",
	"text/plain; charset=iso-8859-2",
	"text/plain; charset=iso-8859-3",
	"text/plain; charset=iso-8859-7",
	"text/plain; charset=us-ascii",
	"text/plain; charset=utf-16",
	"text/plain; charset=utf-8",
	"text/plain; charset=windows-1250",
	"text/plain; charset=windows-1251",
	"text/plain; charset=windows-1252",
	"text/plain; charset=windows-1253",
}

var contentTypesImage = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/tiff",
	"image/svg+xml",
}

// Response maps the book to its catalog projection.
func (b *Book) Response() BookResponse {
	return BookResponse{
		ID:          b.ID,
		GutenbergID: b.GutenbergID,
		Title:       b.Title,
		Authors:     b.Authors,
		Cover:       b.firstFormat(contentTypesImage),
		Content:     b.firstFormat(contentTypesText),
		Downloads:   b.Downloads,
	}
}

func (b *Book) firstFormat(contentTypes []string) *Format {
	for i := range b.Formats {
		for _, ct := range contentTypes {
			if b.Formats[i].ContentType == ct {
				return &b.Formats[i]
			}
		}
	}
	return nil
}
