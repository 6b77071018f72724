package service

import (
	"context"

	"github.com/google/uuid"
)

// IImageProcessingService prepares raw or remote images for AI analysis.
type IImageProcessingService interface {
	ProcessImageData(data []byte) (string, error)
	ProcessImageFromURL(ctx context.Context, imageURL string) (string, error)
}

// IImageCompressionService shrinks images to the configured byte budget.
type IImageCompressionService interface {
	CompressImageIfNeeded(data []byte, contentType string) ([]byte, error)
}

// IVisionService is the external multimodal model client.
type IVisionService interface {
	AnalyzeImage(ctx context.Context, imageDataURI, userDescription string) (*AnalysisResult, error)
	AnalyzeTextOnly(ctx context.Context, description string) (*AnalysisResult, error)
}

// IAnalyzerService derives nutrition data from an image URL and/or text.
type IAnalyzerService interface {
	AnalyzeImage(ctx context.Context, imageURL, userDescription string) (*AnalysisResult, error)
	AnalyzeTextOnly(ctx context.Context, description string) (*AnalysisResult, error)
}

// IStorageService is the object storage gateway for meal images.
type IStorageService interface {
	Upload(ctx context.Context, data []byte, contentType string, userID uuid.UUID) (string, error)
	AnalyzerURL(ctx context.Context, objectName string) (string, error)
	ImageURL(ctx context.Context, objectName string) (string, error)
	Delete(ctx context.Context, objectName string) (bool, error)
}
