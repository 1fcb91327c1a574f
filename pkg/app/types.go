package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// ImageTarget selects the image and the volume inside it across commands
type ImageTarget struct {
	Path            string
	PartitionOffset uint64
	UseMmap         bool
}

// Validate ensures the image target is usable
func (it *ImageTarget) Validate() error {
	if it.Path == "" {
		return errors.New("image path is required")
	}
	if it.PartitionOffset%512 != 0 {
		return fmt.Errorf("partition offset %d is not sector aligned", it.PartitionOffset)
	}
	return nil
}

// String returns a string representation of the image target
func (it *ImageTarget) String() string {
	if it.PartitionOffset != 0 {
		return fmt.Sprintf("%s @ %d", it.Path, it.PartitionOffset)
	}
	return it.Path
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeImageAccess    = "IMAGE_ACCESS"
	ErrCodeNotNTFS        = "NOT_NTFS"
	ErrCodeCorrupt        = "CORRUPT"
	ErrCodeRecordNotFound = "RECORD_NOT_FOUND"
	ErrCodeTimeout        = "TIMEOUT"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyError maps a decoder or I/O failure to a CommonError
func ClassifyError(message string, err error) *CommonError {
	var ioErr *types.IOError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrCodeTimeout, message, err)
	case errors.As(err, &ioErr):
		return NewError(ErrCodeImageAccess, message, err)
	case errors.Is(err, types.ErrNotNTFS), errors.Is(err, types.ErrInvalidBootSector):
		return NewError(ErrCodeNotNTFS, message, err)
	case errors.Is(err, types.ErrOutOfRange), errors.Is(err, types.ErrAttributeNotFound):
		return NewError(ErrCodeRecordNotFound, message, err)
	case types.IsSkippable(err):
		return NewError(ErrCodeCorrupt, message, err)
	}
	return NewError(ErrCodeImageAccess, message, err)
}
