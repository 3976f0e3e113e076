package book

import (
	"errors"
	"net/http"

	"bookcomments/internal/httpx"

	"go.uber.org/zap"
)

const (
	msgNoBook         = "no book exists"
	msgDeleted        = "delete successful"
	msgDeletedAll     = "complete delete successful"
	msgMissingTitle   = "missing required field title"
	msgMissingComment = "missing required field comment"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Register mounts the book routes under prefix, e.g. "" or "/api".
func (h *HTTPHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/books", h.List)
	mux.HandleFunc("POST "+prefix+"/books", h.Create)
	mux.HandleFunc("DELETE "+prefix+"/books", h.DeleteAll)
	mux.HandleFunc("GET "+prefix+"/books/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/books/{id}", h.AddComment)
	mux.HandleFunc("DELETE "+prefix+"/books/{id}", h.Delete)
}

type createRequest struct {
	Title string `json:"title" validate:"required"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

// @Summary List books
// @Description Every stored book with its comments and comment count
// @Tags books
// @Produce json
// @Success 200 {array} Book
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.storageError(r, "list books", err)
		httpx.ServerError(w)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpx.JSON(w, books)
}

// @Summary Create book
// @Description Returns the existing book when the title is already stored
// @Tags books
// @Accept json,x-www-form-urlencoded
// @Produce json,plain
// @Param title formData string true "Book title"
// @Success 200 {object} Summary
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := httpx.FormFields(r)
	if err != nil {
		h.logger.Debug("unreadable request body", zap.String("request_id", httpx.RequestIDFrom(r)), zap.Error(err))
	}

	req := createRequest{Title: fields["title"]}
	if errs := httpx.ValidateStruct(req); len(errs) > 0 {
		httpx.Text(w, msgMissingTitle)
		return
	}

	b, err := h.service.Create(r.Context(), req.Title)
	if err != nil {
		h.storageError(r, "create book", err)
		httpx.ServerError(w)
		return
	}
	httpx.JSON(w, b.Summary())
}

// @Summary Delete all books
// @Tags books
// @Produce plain
// @Success 200 {string} string "complete delete successful"
// @Router /books [delete]
func (h *HTTPHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAll(r.Context()); err != nil {
		h.storageError(r, "delete all books", err)
		httpx.ServerError(w)
		return
	}
	httpx.Text(w, msgDeletedAll)
}

// @Summary Get book by id
// @Description Comments are returned as {comment} sub-records
// @Tags books
// @Produce json,plain
// @Param id path string true "Book id"
// @Success 200 {object} Book
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.lookupError(r, err)
		httpx.Text(w, msgNoBook)
		return
	}
	httpx.JSON(w, b)
}

// @Summary Add comment
// @Description Comments are returned flattened to plain strings
// @Tags books
// @Accept json,x-www-form-urlencoded
// @Produce json,plain
// @Param id path string true "Book id"
// @Param comment formData string true "Comment text"
// @Success 200 {object} CommentedBook
// @Router /books/{id} [post]
func (h *HTTPHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	fields, err := httpx.FormFields(r)
	if err != nil {
		h.logger.Debug("unreadable request body", zap.String("request_id", httpx.RequestIDFrom(r)), zap.Error(err))
	}

	req := commentRequest{Comment: fields["comment"]}
	if errs := httpx.ValidateStruct(req); len(errs) > 0 {
		httpx.Text(w, msgMissingComment)
		return
	}

	b, err := h.service.AddComment(r.Context(), r.PathValue("id"), req.Comment)
	if err != nil {
		h.lookupError(r, err)
		httpx.Text(w, msgNoBook)
		return
	}
	httpx.JSON(w, b.Flatten())
}

// @Summary Delete book by id
// @Tags books
// @Produce plain
// @Param id path string true "Book id"
// @Success 200 {string} string "delete successful"
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.lookupError(r, err)
		httpx.Text(w, msgNoBook)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Text(w, msgNoBook)
			return
		}
		h.storageError(r, "delete book", err)
		httpx.ServerError(w)
		return
	}
	httpx.Text(w, msgDeleted)
}

func (h *HTTPHandler) storageError(r *http.Request, op string, err error) {
	h.logger.Error(op,
		zap.String("request_id", httpx.RequestIDFrom(r)),
		zap.Error(err),
	)
}

// lookupError logs id-based failures that are not plain misses. The client
// sees the same text either way.
func (h *HTTPHandler) lookupError(r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		return
	}
	h.logger.Warn("book lookup failed",
		zap.String("request_id", httpx.RequestIDFrom(r)),
		zap.String("id", r.PathValue("id")),
		zap.Error(err),
	)
}
