package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// FormFields collects the scalar fields of a request body. JSON bodies are
// decoded as an object; anything else is read as an urlencoded body. Query
// parameters never count. JSON null, false, 0 and nested values are treated
// as absent. A body that cannot be read yields whatever fields were
// recovered before the failure.
func FormFields(r *http.Request) (map[string]string, error) {
	fields := make(map[string]string)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return fields, fmt.Errorf("decode json body: %w", err)
		}
		for k, v := range raw {
			switch val := v.(type) {
			case nil, map[string]any, []any:
			case string:
				fields[k] = val
			case bool:
				if val {
					fields[k] = "true"
				}
			case float64:
				if val != 0 {
					fields[k] = fmt.Sprint(val)
				}
			}
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return fields, fmt.Errorf("parse form: %w", err)
	}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields, nil
}
