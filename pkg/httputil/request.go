package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// ErrBodyTooLarge is returned by ReadBody when MaxBytesMiddleware cut the body
var ErrBodyTooLarge = errors.New("request body too large")

// ParsePathString extracts a string path parameter
func ParsePathString(r *http.Request, key string) (string, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// ParsePathStringOrError extracts a string path parameter and writes error on failure
func ParsePathStringOrError(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	val, err := ParsePathString(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return "", false
	}
	return val, true
}

// ReadBody reads the whole request body
func ReadBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

// ReadBodyOrError reads the request body and writes 413 or 400 on failure
func ReadBodyOrError(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := ReadBody(r)
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		WriteErrorMessage(w, http.StatusRequestEntityTooLarge, err.Error())
		return nil, false
	case err != nil:
		WriteBadRequest(w, err.Error())
		return nil, false
	}
	return data, true
}
