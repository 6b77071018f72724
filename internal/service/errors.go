package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMeal is returned when an upload carries neither an image nor
	// a description. Rejected before any side effect.
	ErrEmptyMeal = errors.New("meal requires an image or a description")

	// ErrNotFound covers a missing user or meal. A meal owned by another
	// user reports the same error, never revealing existence.
	ErrNotFound = errors.New("resource not found")

	// ErrUnsupportedFormat is returned when image bytes are not one of the
	// accepted encodings, or no format can be sniffed at all.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrDecodeFailed is returned when a recognized image cannot be decoded.
	ErrDecodeFailed = errors.New("failed to decode image")

	// ErrNotFood is the model's sentinel for a non-food image.
	ErrNotFood = errors.New("not a food item")

	// ErrIncompleteProfile is returned when a calorie estimate is requested
	// without all profile fields present.
	ErrIncompleteProfile = errors.New("profile is missing fields required for calorie estimation")
)

// AnalysisError wraps any failure of the vision analysis pipeline: transport,
// non-success status, malformed JSON or the not-food sentinel. During meal
// upload it is absorbed into a FAILED status; the standalone analyzer endpoint
// surfaces it directly.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// StorageError wraps object-store failures. Before record creation it aborts
// the upload; on delete it is logged and swallowed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
