package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
)

// maxBodyBytes caps form and JSON bodies. Every accepted field is short.
const maxBodyBytes = 16 << 10

var errUnsupportedBody = errors.New("body must be form encoded or JSON")

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"message": msg})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"error": msg})
}

// readFields returns the string fields of a form or JSON object body.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json":
		fields := make(map[string]string)
		err := json.NewDecoder(r.Body).Decode(&fields)
		if err != nil {
			return nil, err
		}
		return fields, nil

	case mediaType == "application/x-www-form-urlencoded", strings.HasPrefix(mediaType, "multipart/"):
		err := r.ParseMultipartForm(maxBodyBytes)
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		fields := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		return fields, nil

	default:
		return nil, errUnsupportedBody
	}
}
