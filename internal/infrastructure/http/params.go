package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// requiredParam finds name in the query string, a JSON object body, or a
// form body, in that order. Only a missing parameter is an error; an empty
// value is returned as is.
func requiredParam(w http.ResponseWriter, r *http.Request, name string) (string, error) {
	if values, ok := r.URL.Query()[name]; ok && len(values) > 0 {
		return values[0], nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", invalidInput(fmt.Errorf("decoding JSON body: %w", err))
		}
		raw, ok := body[name]
		if !ok {
			return "", invalidInput(fmt.Errorf("missing parameter %s", name))
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return "", invalidInput(fmt.Errorf("parameter %s must be a string", name))
		}
		return value, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", invalidInput(fmt.Errorf("parsing form: %w", err))
	}
	if values, ok := r.PostForm[name]; ok && len(values) > 0 {
		return values[0], nil
	}
	return "", invalidInput(fmt.Errorf("missing parameter %s", name))
}

func invalidInput(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
	}
	return entities.NewError(entities.KindInvalidInput, "request", err)
}
