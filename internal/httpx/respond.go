package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// respondJSON writes v as the JSON body with the given status code.
func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON object with a human-readable message field.
func respondError(w http.ResponseWriter, message string, code int) {
	respondJSON(w, code, map[string]string{"message": message})
}

// decodeJSON decodes a request body strictly: unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Trailing garbage after the JSON value is also rejected.
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
