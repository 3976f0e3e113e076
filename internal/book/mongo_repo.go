package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Comments     []Comment          `bson:"comments"`
	CommentCount int                `bson:"commentcount"`
}

func (d bookDocument) toBook() Book {
	b := newBook(d.ID.Hex(), d.Title)
	b.Comments = append(b.Comments, d.Comments...)
	b.CommentCount = d.CommentCount
	return b
}

type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(coll *mongo.Collection, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: coll, timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureIndexes creates the non-unique title index used by FindByTitle.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(timeoutCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetName("title_1"),
	})
	if err != nil {
		return fmt.Errorf("create title index: %w", err)
	}
	return nil
}

func (r *MongoRepo) List(ctx context.Context) ([]Book, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepo) FindByTitle(ctx context.Context, title string) ([]Book, error) {
	return r.find(ctx, bson.M{"title": title})
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.coll.Find(timeoutCtx, filter)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	var docs []bookDocument
	if err := cur.All(timeoutCtx, &docs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}

	out := make([]Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBook())
	}
	return out, nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Book{}, ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var d bookDocument
	if err := r.coll.FindOne(timeoutCtx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return d.toBook(), nil
}

func (r *MongoRepo) Create(ctx context.Context, title string) (Book, error) {
	d := bookDocument{
		ID:       primitive.NewObjectID(),
		Title:    title,
		Comments: []Comment{},
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(timeoutCtx, d); err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return d.toBook(), nil
}

// AppendComment pushes the comment and increments the counter in a single
// findAndModify.
func (r *MongoRepo) AppendComment(ctx context.Context, id, comment string) (Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Book{}, ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"comments": Comment{Comment: comment}},
		"$inc":  bson.M{"commentcount": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d bookDocument
	if err := r.coll.FindOneAndUpdate(timeoutCtx, bson.M{"_id": oid}, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("append comment to %s: %w", id, err)
	}
	return d.toBook(), nil
}

func (r *MongoRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(timeoutCtx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteAll(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.DeleteMany(timeoutCtx, bson.M{}); err != nil {
		return fmt.Errorf("delete all books: %w", err)
	}
	return nil
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.coll.Database().Client().Ping(timeoutCtx, nil)
}
