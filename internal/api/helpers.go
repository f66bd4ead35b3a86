package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response: %v", err)
	}
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func queryLevel(r *http.Request) (models.ProficiencyLevel, error) {
	raw := r.URL.Query().Get("level")
	if raw == "" {
		return "", nil
	}
	level, ok := models.ParseLevel(raw)
	if !ok {
		return "", errors.NewBadRequestError("invalid level: " + raw)
	}
	return level, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewBadRequestError("invalid " + key + ": " + raw)
	}
	return n, nil
}
