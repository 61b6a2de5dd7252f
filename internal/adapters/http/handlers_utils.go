package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/viralforge/facility-assistant/internal/domain"
)

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

// writeFormError is writeMappedError for the login and recovery forms, whose blank-field
// rejection carries a fixed prompt instead of the field detail.
func writeFormError(ctx context.Context, w http.ResponseWriter, operation, blankPrompt string, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		logHTTPOperationError(ctx, operation, http.StatusBadRequest, "VALIDATION_ERROR", blankPrompt, err)
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", blankPrompt)
		return
	}
	writeMappedError(ctx, w, operation, err)
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	code := "VALIDATION_ERROR"
	msg := err.Error()
	logHTTPOperationError(ctx, operation, http.StatusBadRequest, code, msg, err)
	writeError(w, http.StatusBadRequest, code, msg)
}
