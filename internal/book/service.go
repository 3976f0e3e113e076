package book

import (
	"context"
	"fmt"
)

// Service provides book-related business logic.
type Service struct {
	repo     Repository
	recorder Recorder
}

// NewService creates a new book service. A nil recorder disables counting.
func NewService(repo Repository, recorder Recorder) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{repo: repo, recorder: recorder}
}

// List returns every stored book.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// Create returns the first book titled title, inserting one first when none
// exists. After an insert the title is looked up again and the first match
// is returned, which is not necessarily the inserted record.
//
// The lookup and the insert are not atomic: concurrent calls with the same
// title can both insert.
func (s *Service) Create(ctx context.Context, title string) (Book, error) {
	existing, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return Book{}, fmt.Errorf("find by title: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	if _, err := s.repo.Create(ctx, title); err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	s.recorder.BookCreated()

	found, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return Book{}, fmt.Errorf("find created book: %w", err)
	}
	if len(found) == 0 {
		return Book{}, fmt.Errorf("find created book %q: %w", title, ErrNotFound)
	}
	return found[0], nil
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// AddComment appends comment to the book and returns the updated record.
func (s *Service) AddComment(ctx context.Context, id, comment string) (Book, error) {
	b, err := s.repo.AppendComment(ctx, id, comment)
	if err != nil {
		return Book{}, err
	}
	s.recorder.CommentAdded()
	return b, nil
}

// Delete removes a book by its id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// DeleteAll removes every book.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// Ping reports whether the storage backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
