package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/log"
)

const maxBodyBytes = 1 << 20

// KindRateLimited is reported when a client exceeds the POST rate limit.
const KindRateLimited core.Kind = "rate_limited"

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind     core.Kind `json:"kind"`
	Message  string    `json:"message"`
	Recovery string    `json:"recovery"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation, core.KindForeignKey:
		return http.StatusUnprocessableEntity
	case core.KindUnique:
		return http.StatusConflict
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the user-facing text for err. Internal details are not exposed.
func messageFor(kind core.Kind, err error) string {
	switch kind {
	case core.KindValidation:
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return ve.Error()
		}
		return err.Error()
	case core.KindUnique:
		return "a record with the same values already exists"
	case core.KindForeignKey:
		return "a referenced record does not exist"
	case core.KindNotFound:
		return "record not found"
	case core.KindStoreUnavailable:
		return "the data store is unavailable, try again later"
	default:
		return "internal error"
	}
}

// writeError classifies err and renders it. recovery is the collection path
// the client should return to.
func writeError(w http.ResponseWriter, r *http.Request, err error, recovery string) {
	kind := core.KindOf(err)
	status := statusFor(kind)

	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithErrorKind(string(kind)).WithError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Kind:     kind,
		Message:  messageFor(kind, err),
		Recovery: recovery,
	}})
}

// decodeJSON reads a single JSON object into dst. Malformed bodies and unknown
// fields are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return core.Invalid("body", "cannot be empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.Invalid("body", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
		}
		return core.Invalid("body", "must be a valid JSON object: "+err.Error())
	}
	if dec.More() {
		return core.Invalid("body", "must contain a single JSON object")
	}
	return nil
}
