package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
//
// GetByID, AppendComment and DeleteByID return ErrNotFound both when no
// record matches and when id is not a valid identifier for the backend.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	FindByTitle(ctx context.Context, title string) ([]Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, title string) (Book, error)
	AppendComment(ctx context.Context, id, comment string) (Book, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Recorder receives domain events worth counting.
type Recorder interface {
	BookCreated()
	CommentAdded()
}

type noopRecorder struct{}

func (noopRecorder) BookCreated()  {}
func (noopRecorder) CommentAdded() {}
