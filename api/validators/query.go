package validators

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

// UUIDParam parses a required uuid path or query value.
func UUIDParam(value, name string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).
			WithDetails(map[string]string{name: "must be a valid uuid"})
	}
	return parsed, nil
}

// OptionalUUIDQuery parses an optional uuid query value, uuid.Nil when absent.
func OptionalUUIDQuery(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	return UUIDParam(raw, name)
}

// LimitQuery parses an optional positive limit query value, capped at max.
func LimitQuery(r *http.Request, fallback, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit").
			WithDetails(map[string]string{"limit": "must be a positive integer"})
	}
	if parsed > max {
		parsed = max
	}
	return parsed, nil
}
