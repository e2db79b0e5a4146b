package entries

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	httperr "github.com/macrolog-lab/macrolog/internal/core/errors"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgEntryNotFound  = "Entry not found"
	msgMutationFailed = "Failed to apply entry mutation"
)

// entryRequest is the write body for create and update. The full entry is
// replaced on update — partial patches are not supported.
type entryRequest struct {
	Name    string     `json:"name"`
	EatenOn v1.Date    `json:"eaten_on"`
	Macros  *v1.Macros `json:"macros"`
}

// httpError carries the structured HTTP error shape from a helper back to
// the handler. Helpers return this instead of writing to gin.Context
// directly, keeping them decoupled from HTTP.
type httpError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *httpError) Error() string {
	return e.message
}

// CreateHandler handles POST /v1/entries.
func (s *Service) CreateHandler(c *gin.Context) {
	req, herr := s.parseEntryRequest(c)
	if herr != nil {
		writeError(c, herr)
		return
	}

	now := s.nowFn()
	entry := &v1.Entry{
		ID:        s.idFn(),
		Name:      req.Name,
		EatenOn:   req.EatenOn,
		Macros:    req.Macros,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entry.Validate(); err != nil {
		writeError(c, &httpError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    err.Error(),
		})
		return
	}

	// Insert and recompute inside one transaction: a committed entry can
	// never be observed with stale buckets.
	err := s.runner.WithinTx(c.Request.Context(), func(store storage.Store) error {
		if err := store.InsertEntry(c.Request.Context(), entry); err != nil {
			return err
		}
		return s.dispatcher.EntryChanged(c.Request.Context(), store, v1.ChangeEvent{
			Kind:  v1.ChangeInsert,
			After: entry,
		})
	})
	if err != nil {
		slog.Error("Failed to create entry", "error", err, "entry_id", entry.ID)
		writeError(c, &httpError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgMutationFailed,
		})
		return
	}

	slog.Info("Entry created",
		"entry_id", entry.ID,
		"eaten_on", entry.EatenOn.String(),
		"has_macros", entry.Macros != nil,
	)
	c.JSON(http.StatusCreated, entry)
}

// GetHandler handles GET /v1/entries/:id.
func (s *Service) GetHandler(c *gin.Context) {
	entry, err := s.reader.GetEntry(c.Request.Context(), "", c.Param("id"))
	if err != nil {
		writeStoreError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListHandler handles GET /v1/entries?date=YYYY-MM-DD.
func (s *Service) ListHandler(c *gin.Context) {
	day, err := v1.ParseDate(c.Query("date"))
	if err != nil {
		writeError(c, &httpError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    "date query parameter must be YYYY-MM-DD",
			details:    err.Error(),
		})
		return
	}

	list, err := s.reader.ListEntriesByDay(c.Request.Context(), "", day)
	if err != nil {
		slog.Error("Failed to list entries", "error", err, "date", day.String())
		writeError(c, &httpError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to list entries",
		})
		return
	}
	if list == nil {
		list = []*v1.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}

// UpdateHandler handles PUT /v1/entries/:id.
// Both the origin and destination day are recomputed when eaten_on moves.
func (s *Service) UpdateHandler(c *gin.Context) {
	req, herr := s.parseEntryRequest(c)
	if herr != nil {
		writeError(c, herr)
		return
	}

	id := c.Param("id")
	var after *v1.Entry
	err := s.runner.WithinTx(c.Request.Context(), func(store storage.Store) error {
		before, err := store.GetEntryForUpdate(c.Request.Context(), "", id)
		if err != nil {
			return err
		}

		updated := *before
		updated.Name = req.Name
		updated.EatenOn = req.EatenOn
		updated.Macros = req.Macros
		updated.UpdatedAt = s.nowFn()
		if err := updated.Validate(); err != nil {
			return &httpError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpValidationError,
				message:    err.Error(),
			}
		}

		if err := store.UpdateEntry(c.Request.Context(), &updated); err != nil {
			return err
		}
		after = &updated
		return s.dispatcher.EntryChanged(c.Request.Context(), store, v1.ChangeEvent{
			Kind:   v1.ChangeUpdate,
			Before: before,
			After:  &updated,
		})
	})
	if err != nil {
		writeStoreError(c, err, id)
		return
	}

	slog.Info("Entry updated", "entry_id", id, "eaten_on", after.EatenOn.String())
	c.JSON(http.StatusOK, after)
}

// DeleteHandler handles DELETE /v1/entries/:id.
func (s *Service) DeleteHandler(c *gin.Context) {
	id := c.Param("id")
	err := s.runner.WithinTx(c.Request.Context(), func(store storage.Store) error {
		before, err := store.GetEntryForUpdate(c.Request.Context(), "", id)
		if err != nil {
			return err
		}
		if err := store.DeleteEntry(c.Request.Context(), "", id); err != nil {
			return err
		}
		return s.dispatcher.EntryChanged(c.Request.Context(), store, v1.ChangeEvent{
			Kind:   v1.ChangeDelete,
			Before: before,
		})
	})
	if err != nil {
		writeStoreError(c, err, id)
		return
	}

	slog.Info("Entry deleted", "entry_id", id)
	c.Status(http.StatusNoContent)
}

// parseEntryRequest reads the size-limited request body and binds it.
func (s *Service) parseEntryRequest(c *gin.Context) (*entryRequest, *httpError) {
	// Enforce maximum body size to prevent OOM attacks.
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &httpError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, &httpError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, &httpError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	return &req, nil
}

// writeStoreError maps storage and helper errors onto HTTP responses.
func writeStoreError(c *gin.Context, err error, id string) {
	var herr *httpError
	if errors.As(err, &herr) {
		writeError(c, herr)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeError(c, &httpError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpNotFoundError,
			message:    msgEntryNotFound,
		})
		return
	}

	slog.Error("Entry mutation failed", "error", err, "entry_id", id)
	writeError(c, &httpError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgMutationFailed,
	})
}

// writeError serializes an httpError as the JSON HTTP response.
func writeError(c *gin.Context, err *httpError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
