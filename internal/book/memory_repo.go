package book

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps books in process memory. Identifiers are ObjectID hex
// strings so ids behave the same way they do against MongoDB.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	books map[string]*Book
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{books: make(map[string]*Book)}
}

func (r *MemoryRepo) List(ctx context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Book, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.books[id]))
	}
	return out, nil
}

func (r *MemoryRepo) FindByTitle(ctx context.Context, title string) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Book
	for _, id := range r.order {
		if b := r.books[id]; b.Title == title {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Book, error) {
	id, ok := objectIDKey(id)
	if !ok {
		return Book{}, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return clone(b), nil
}

func (r *MemoryRepo) Create(ctx context.Context, title string) (Book, error) {
	b := newBook(primitive.NewObjectID().Hex(), title)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.books[b.ID] = &b
	r.order = append(r.order, b.ID)
	return clone(&b), nil
}

func (r *MemoryRepo) AppendComment(ctx context.Context, id, comment string) (Book, error) {
	id, ok := objectIDKey(id)
	if !ok {
		return Book{}, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	b.Comments = append(b.Comments, Comment{Comment: comment})
	b.CommentCount++
	return clone(b), nil
}

func (r *MemoryRepo) DeleteByID(ctx context.Context, id string) error {
	id, ok := objectIDKey(id)
	if !ok {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.books = make(map[string]*Book)
	r.order = nil
	return nil
}

func (r *MemoryRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func clone(b *Book) Book {
	out := *b
	out.Comments = append([]Comment{}, b.Comments...)
	return out
}

// objectIDKey returns the canonical lower-case hex form of id, matching the
// keys produced by ObjectID.Hex.
func objectIDKey(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}
