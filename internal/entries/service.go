package entries

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/macrolog-lab/macrolog/internal/core/storage"
	"github.com/macrolog-lab/macrolog/internal/rollup"
)

// Service is the meal-entry CRUD layer. Every mutation runs inside one
// transaction together with the rollup dispatch, honoring the contract that
// an entry write and its bucket recompute commit or roll back as a unit.
type Service struct {
	runner           storage.TxRunner
	reader           storage.EntryStore
	dispatcher       *rollup.Dispatcher
	maxBodySizeBytes int
	nowFn            func() time.Time
	idFn             func() string
}

// NewService creates the entry CRUD service. runner and reader are usually
// the same postgres adapter; reads outside mutations skip the transaction.
func NewService(runner storage.TxRunner, reader storage.EntryStore, dispatcher *rollup.Dispatcher, maxBodySizeMB int) *Service {
	if runner == nil {
		panic("entries: tx runner must not be nil")
	}
	if reader == nil {
		panic("entries: reader must not be nil")
	}
	if dispatcher == nil {
		panic("entries: dispatcher must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		runner:           runner,
		reader:           reader,
		dispatcher:       dispatcher,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
		idFn: uuid.NewString,
	}
}

// RegisterRoutes registers the entry CRUD routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/entries", s.CreateHandler)
	r.GET("/v1/entries", s.ListHandler)
	r.GET("/v1/entries/:id", s.GetHandler)
	r.PUT("/v1/entries/:id", s.UpdateHandler)
	r.DELETE("/v1/entries/:id", s.DeleteHandler)
}
