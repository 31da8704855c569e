package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrStoreIDRequired    = errors.New("store_id is required")
	ErrInvalidStoneType   = errors.New("invalid stone type")
	ErrInvalidMarginUnit  = errors.New("margin unit must be carat or price")
	ErrInvalidMarginRange = errors.New("margin range start must be less than end")
	ErrUnknownVendor      = errors.New("unknown vendor")
	ErrProcessNotFound    = errors.New("ingestion process not found")
)

// ProcessConflictError rejects a run request while another ingestion holds
// the single-flight gate. It carries the live process id so clients can
// poll it instead of retrying.
type ProcessConflictError struct {
	ProcessID uuid.UUID
}

func (e *ProcessConflictError) Error() string {
	return fmt.Sprintf("ingestion process %s is already running", e.ProcessID)
}
