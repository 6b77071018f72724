package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutritheous/backend/config"
)

// StorageService persists meal images to S3 under per-user keys and mints
// time-limited retrieval URLs. Analyzer-use and display-use URLs carry
// independent expiries.
type StorageService struct {
	s3             *config.S3Config
	compression    IImageCompressionService
	analyzerExpiry time.Duration
	imageExpiry    time.Duration
}

// NewStorageService creates a new StorageService instance
func NewStorageService(s3 *config.S3Config, compression IImageCompressionService, analyzerExpiry, imageExpiry time.Duration) *StorageService {
	return &StorageService{
		s3:             s3,
		compression:    compression,
		analyzerExpiry: analyzerExpiry,
		imageExpiry:    imageExpiry,
	}
}

// Upload compresses the image to budget and stores it under
// {userID}/{randomID}{ext}, returning the object name.
func (s *StorageService) Upload(ctx context.Context, data []byte, contentType string, userID uuid.UUID) (string, error) {
	if len(data) == 0 {
		return "", &StorageError{Op: "upload", Err: fmt.Errorf("cannot upload empty file")}
	}

	compressed, err := s.compression.CompressImageIfNeeded(data, contentType)
	if err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}

	objectName := fmt.Sprintf("%s/%s%s", userID, uuid.New(), extensionFor(contentType))

	log.Printf("[Storage] uploading object %s (%d bytes, %s)", objectName, len(compressed), contentType)

	if err := s.s3.PutObject(ctx, objectName, compressed, contentType); err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}

	return objectName, nil
}

// AnalyzerURL mints a short-lived URL for the analyzer to fetch the object.
func (s *StorageService) AnalyzerURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.s3.GeneratePresignedURL(ctx, objectName, s.analyzerExpiry)
	if err != nil {
		return "", &StorageError{Op: "sign", Err: err}
	}
	return url, nil
}

// ImageURL mints a display URL for clients; its expiry is configured
// independently of the analyzer URL.
func (s *StorageService) ImageURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.s3.GeneratePresignedURL(ctx, objectName, s.imageExpiry)
	if err != nil {
		return "", &StorageError{Op: "sign", Err: err}
	}
	return url, nil
}

// Delete removes the object, reporting whether it existed.
func (s *StorageService) Delete(ctx context.Context, objectName string) (bool, error) {
	existed, err := s.s3.DeleteObject(ctx, objectName)
	if err != nil {
		return false, &StorageError{Op: "delete", Err: err}
	}
	if !existed {
		log.Printf("[Storage] object not found on delete: %s", objectName)
	}
	return existed, nil
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "bmp"):
		return ".bmp"
	default:
		return ".jpg"
	}
}
