package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nutritheous/backend/internal/service"
)

// MockStorageService is a mock implementation of the storage gateway
type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, data []byte, contentType string, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, data, contentType, userID)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) AnalyzerURL(ctx context.Context, objectName string) (string, error) {
	args := m.Called(ctx, objectName)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) ImageURL(ctx context.Context, objectName string) (string, error) {
	args := m.Called(ctx, objectName)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, objectName string) (bool, error) {
	args := m.Called(ctx, objectName)
	return args.Bool(0), args.Error(1)
}

// MockAnalyzerService is a mock implementation of the analyzer pipeline
type MockAnalyzerService struct {
	mock.Mock
}

func (m *MockAnalyzerService) AnalyzeImage(ctx context.Context, imageURL, userDescription string) (*service.AnalysisResult, error) {
	args := m.Called(ctx, imageURL, userDescription)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
}

func (m *MockAnalyzerService) AnalyzeTextOnly(ctx context.Context, description string) (*service.AnalysisResult, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
}

// MockVisionService is a mock implementation of the multimodal model client
type MockVisionService struct {
	mock.Mock
}

func (m *MockVisionService) AnalyzeImage(ctx context.Context, imageDataURI, userDescription string) (*service.AnalysisResult, error) {
	args := m.Called(ctx, imageDataURI, userDescription)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
}

func (m *MockVisionService) AnalyzeTextOnly(ctx context.Context, description string) (*service.AnalysisResult, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
}

// MockImageProcessingService is a mock implementation of image preparation
type MockImageProcessingService struct {
	mock.Mock
}

func (m *MockImageProcessingService) ProcessImageData(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *MockImageProcessingService) ProcessImageFromURL(ctx context.Context, imageURL string) (string, error) {
	args := m.Called(ctx, imageURL)
	return args.String(0), args.Error(1)
}

// MockStatsInvalidator records cache invalidation calls
type MockStatsInvalidator struct {
	mock.Mock
}

func (m *MockStatsInvalidator) InvalidateCache(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}
