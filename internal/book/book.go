package book

import (
	"errors"
)

// ErrNotFound is returned when a book is not found or the id is not a valid
// identifier for the storage backend.
var ErrNotFound = errors.New("book not found")

// Comment is a single text annotation attached to a book.
type Comment struct {
	Comment string `json:"comment" bson:"comment"`
}

// Book represents a stored book record.
type Book struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"commentcount"`
}

// Summary is the {_id, title} shape returned on create.
type Summary struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// CommentedBook is the shape returned after a comment is appended; comments
// are flattened to their text.
type CommentedBook struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Comments     []string `json:"comments"`
	CommentCount int      `json:"commentcount"`
}

// Summary returns the {_id, title} view of b.
func (b Book) Summary() Summary {
	return Summary{ID: b.ID, Title: b.Title}
}

// Flatten returns b with each comment reduced to its text.
func (b Book) Flatten() CommentedBook {
	texts := make([]string, 0, len(b.Comments))
	for _, c := range b.Comments {
		texts = append(texts, c.Comment)
	}
	return CommentedBook{
		ID:           b.ID,
		Title:        b.Title,
		Comments:     texts,
		CommentCount: b.CommentCount,
	}
}

func newBook(id, title string) Book {
	return Book{ID: id, Title: title, Comments: []Comment{}}
}
