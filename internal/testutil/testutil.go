package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// NewRequest creates a new HTTP request for testing. A url.Values body is
// sent form-encoded; any other non-nil body is sent as JSON.
func NewRequest(method, path string, body interface{}) *http.Request {
	switch b := body.(type) {
	case nil:
		return httptest.NewRequest(method, path, nil)
	case url.Values:
		r := httptest.NewRequest(method, path, strings.NewReader(b.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return r
	default:
		bodyBytes, _ := json.Marshal(b)
		r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
		return r
	}
}

// Serve runs a request built by NewRequest through h and returns the recorder.
func Serve(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, NewRequest(method, path, body))
	return w
}
