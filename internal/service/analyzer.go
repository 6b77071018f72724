package service

import (
	"context"
	"log"
)

// AnalyzerService ties image preparation to the vision client: it accepts an
// image URL (typically a presigned storage URL), downscales and re-encodes the
// image, and forwards the data URI for analysis.
type AnalyzerService struct {
	imageProcessing IImageProcessingService
	vision          IVisionService
}

// NewAnalyzerService creates a new AnalyzerService instance
func NewAnalyzerService(imageProcessing IImageProcessingService, vision IVisionService) *AnalyzerService {
	return &AnalyzerService{
		imageProcessing: imageProcessing,
		vision:          vision,
	}
}

// AnalyzeImage analyzes the image behind imageURL, with the user description
// as supplementary context.
func (s *AnalyzerService) AnalyzeImage(ctx context.Context, imageURL, userDescription string) (*AnalysisResult, error) {
	dataURI, err := s.imageProcessing.ProcessImageFromURL(ctx, imageURL)
	if err != nil {
		log.Printf("[Analyzer] image preparation failed: %v", err)
		return nil, &AnalysisError{Err: err}
	}

	return s.vision.AnalyzeImage(ctx, dataURI, userDescription)
}

// AnalyzeTextOnly estimates nutrition from a description alone.
func (s *AnalyzerService) AnalyzeTextOnly(ctx context.Context, description string) (*AnalysisResult, error) {
	return s.vision.AnalyzeTextOnly(ctx, description)
}
