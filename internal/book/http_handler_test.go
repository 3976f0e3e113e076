package book

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"bookcomments/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestMux(repo Repository, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(NewService(repo, nil), logger).Register(mux, "")
	return mux
}

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	core, logs := observer.New(zap.ErrorLevel)
	mux := newTestMux(mockRepo, zap.New(core))

	testBook := Book{ID: "1", Title: "Test", Comments: []Comment{{Comment: "c"}}, CommentCount: 1}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any()).Return([]Book{testBook}, nil)

		w := testutil.Serve(mux, http.MethodGet, "/books", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"_id":"1","title":"Test","comments":[{"comment":"c"}],"commentcount":1}]`, w.Body.String())
	})

	t.Run("empty", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any()).Return(nil, nil)

		w := testutil.Serve(mux, http.MethodGet, "/books", nil)

		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any()).Return(nil, context.DeadlineExceeded)

		w := testutil.Serve(mux, http.MethodGet, "/books", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("list books").Len())
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mux := newTestMux(mockRepo, zap.NewNop())

	t.Run("missing title", func(t *testing.T) {
		w := testutil.Serve(mux, http.MethodPost, "/books", url.Values{})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "missing required field title", w.Body.String())
	})

	t.Run("title in query string only", func(t *testing.T) {
		w := testutil.Serve(mux, http.MethodPost, "/books?title=FromQuery", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "missing required field title", w.Body.String())
	})

	for name, body := range map[string]string{"zero": `{"title":0}`, "false": `{"title":false}`, "null": `{"title":null}`} {
		t.Run("falsy json title "+name, func(t *testing.T) {
			w := testutil.Serve(mux, http.MethodPost, "/books", json.RawMessage(body))

			assert.Equal(t, "missing required field title", w.Body.String())
		})
	}

	t.Run("existing title", func(t *testing.T) {
		mockRepo.EXPECT().FindByTitle(gomock.Any(), "Dune").Return([]Book{{ID: "a1", Title: "Dune"}}, nil)

		w := testutil.Serve(mux, http.MethodPost, "/books", url.Values{"title": {"Dune"}})

		assert.JSONEq(t, `{"_id":"a1","title":"Dune"}`, w.Body.String())
	})

	t.Run("json body", func(t *testing.T) {
		mockRepo.EXPECT().FindByTitle(gomock.Any(), "Emma").Return([]Book{{ID: "e1", Title: "Emma"}}, nil)

		w := testutil.Serve(mux, http.MethodPost, "/books", map[string]string{"title": "Emma"})

		assert.JSONEq(t, `{"_id":"e1","title":"Emma"}`, w.Body.String())
	})

	t.Run("storage error", func(t *testing.T) {
		mockRepo.EXPECT().FindByTitle(gomock.Any(), "Dune").Return(nil, errors.New("down"))

		w := testutil.Serve(mux, http.MethodPost, "/books", url.Values{"title": {"Dune"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mux := newTestMux(mockRepo, zap.NewNop())

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "a1").
			Return(Book{ID: "a1", Title: "Dune", Comments: []Comment{{Comment: "spice"}}, CommentCount: 1}, nil)

		w := testutil.Serve(mux, http.MethodGet, "/books/a1", nil)

		assert.JSONEq(t, `{"_id":"a1","title":"Dune","comments":[{"comment":"spice"}],"commentcount":1}`, w.Body.String())
	})

	for name, err := range map[string]error{"not found": ErrNotFound, "storage error": errors.New("down")} {
		t.Run(name, func(t *testing.T) {
			mockRepo.EXPECT().GetByID(gomock.Any(), "a1").Return(Book{}, err)

			w := testutil.Serve(mux, http.MethodGet, "/books/a1", nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "no book exists", w.Body.String())
		})
	}
}

func TestHTTPHandler_AddComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mux := newTestMux(mockRepo, zap.NewNop())

	t.Run("missing comment", func(t *testing.T) {
		w := testutil.Serve(mux, http.MethodPost, "/books/a1", url.Values{"comment": {""}})

		assert.Equal(t, "missing required field comment", w.Body.String())
	})

	t.Run("comment in query string only", func(t *testing.T) {
		w := testutil.Serve(mux, http.MethodPost, "/books/a1?comment=spice", nil)

		assert.Equal(t, "missing required field comment", w.Body.String())
	})

	t.Run("success flattens comments", func(t *testing.T) {
		mockRepo.EXPECT().AppendComment(gomock.Any(), "a1", "spice").
			Return(Book{ID: "a1", Title: "Dune", Comments: []Comment{{Comment: "spice"}}, CommentCount: 1}, nil)

		w := testutil.Serve(mux, http.MethodPost, "/books/a1", url.Values{"comment": {"spice"}})

		assert.JSONEq(t, `{"_id":"a1","title":"Dune","comments":["spice"],"commentcount":1}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().AppendComment(gomock.Any(), "a1", "spice").Return(Book{}, ErrNotFound)

		w := testutil.Serve(mux, http.MethodPost, "/books/a1", url.Values{"comment": {"spice"}})

		assert.Equal(t, "no book exists", w.Body.String())
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mux := newTestMux(mockRepo, zap.NewNop())

	t.Run("success", func(t *testing.T) {
		gomock.InOrder(
			mockRepo.EXPECT().GetByID(gomock.Any(), "a1").Return(Book{ID: "a1"}, nil),
			mockRepo.EXPECT().DeleteByID(gomock.Any(), "a1").Return(nil),
		)

		w := testutil.Serve(mux, http.MethodDelete, "/books/a1", nil)

		assert.Equal(t, "delete successful", w.Body.String())
	})

	t.Run("lookup fails", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "a1").Return(Book{}, ErrNotFound)

		w := testutil.Serve(mux, http.MethodDelete, "/books/a1", nil)

		assert.Equal(t, "no book exists", w.Body.String())
	})

	t.Run("delete fails", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "a1").Return(Book{ID: "a1"}, nil)
		mockRepo.EXPECT().DeleteByID(gomock.Any(), "a1").Return(errors.New("down"))

		w := testutil.Serve(mux, http.MethodDelete, "/books/a1", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_DeleteAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mux := newTestMux(mockRepo, zap.NewNop())

	mockRepo.EXPECT().DeleteAll(gomock.Any()).Return(nil)

	w := testutil.Serve(mux, http.MethodDelete, "/books", nil)

	assert.Equal(t, "complete delete successful", w.Body.String())
}

func TestHTTPHandler_MemoryFlow(t *testing.T) {
	mux := newTestMux(NewMemoryRepo(), zap.NewNop())

	w := testutil.Serve(mux, http.MethodPost, "/books", url.Values{"title": {"Dune"}})
	var created Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Dune", created.Title)

	t.Run("create is idempotent", func(t *testing.T) {
		w := testutil.Serve(mux, http.MethodPost, "/books", url.Values{"title": {"Dune"}})
		var again Summary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
		assert.Equal(t, created.ID, again.ID)

		var all []Book
		require.NoError(t, json.Unmarshal(testutil.Serve(mux, http.MethodGet, "/books", nil).Body.Bytes(), &all))
		require.Len(t, all, 1)
		assert.Equal(t, []Comment{}, all[0].Comments)
		assert.Zero(t, all[0].CommentCount)
	})

	t.Run("comments in both shapes", func(t *testing.T) {
		const n = 3
		var last CommentedBook
		for i := 0; i < n; i++ {
			w := testutil.Serve(mux, http.MethodPost, "/books/"+created.ID, url.Values{"comment": {"nice"}})
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &last))
		}
		assert.Equal(t, n, last.CommentCount)
		assert.Equal(t, []string{"nice", "nice", "nice"}, last.Comments)

		var got Book
		require.NoError(t, json.Unmarshal(testutil.Serve(mux, http.MethodGet, "/books/"+created.ID, nil).Body.Bytes(), &got))
		assert.Equal(t, n, got.CommentCount)
		assert.Len(t, got.Comments, n)
		assert.Equal(t, Comment{Comment: "nice"}, got.Comments[0])
	})

	t.Run("bad ids", func(t *testing.T) {
		for _, id := range []string{"nope", "0123456789abcdef01234567"} {
			w := testutil.Serve(mux, http.MethodGet, "/books/"+id, nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "no book exists", w.Body.String())
		}
	})

	t.Run("delete twice", func(t *testing.T) {
		assert.Equal(t, "delete successful", testutil.Serve(mux, http.MethodDelete, "/books/"+created.ID, nil).Body.String())
		assert.Equal(t, "no book exists", testutil.Serve(mux, http.MethodDelete, "/books/"+created.ID, nil).Body.String())
	})

	t.Run("delete all", func(t *testing.T) {
		testutil.Serve(mux, http.MethodPost, "/books", url.Values{"title": {"Emma"}})
		assert.Equal(t, "complete delete successful", testutil.Serve(mux, http.MethodDelete, "/books", nil).Body.String())
		assert.JSONEq(t, `[]`, testutil.Serve(mux, http.MethodGet, "/books", nil).Body.String())
	})
}
