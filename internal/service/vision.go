package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// AnalysisResult is the structured output of one nutrition analysis call.
// Nil fields mean the model did not supply a value; they are never defaulted.
type AnalysisResult struct {
	ServingSize    *string  `json:"serving_size"`
	Calories       *int     `json:"calories"`
	ProteinG       *float64 `json:"protein_g"`
	FatG           *float64 `json:"fat_g"`
	SaturatedFatG  *float64 `json:"saturated_fat_g"`
	CarbohydratesG *float64 `json:"carbohydrates_g"`
	FiberG         *float64 `json:"fiber_g"`
	SugarG         *float64 `json:"sugar_g"`
	SodiumMg       *float64 `json:"sodium_mg"`
	CholesterolMg  *float64 `json:"cholesterol_mg"`
	Ingredients    []string `json:"ingredients"`
	Allergens      []string `json:"allergens"`
	HealthNotes    *string  `json:"health_notes"`
	Confidence     *float64 `json:"confidence"`
}

// chatMessage is a message in a chat-completions request. Content is either a
// plain string or a list of typed parts for the vision format.
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

// VisionService calls an OpenAI-style chat-completions endpoint to derive
// nutrition data from an encoded image and/or text.
type VisionService struct {
	apiKey    string
	apiURL    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewVisionService creates a new VisionService instance
func NewVisionService(apiKey, apiURL, model string, maxTokens int) *VisionService {
	log.Printf("[Vision] initialized with model: %s, max tokens: %d", model, maxTokens)
	return &VisionService{
		apiKey:    apiKey,
		apiURL:    apiURL,
		model:     model,
		maxTokens: maxTokens,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// AnalyzeImage sends a base64 data-URI image plus the analysis instruction and
// parses the model's JSON reply. The user description, when present, is folded
// into the instruction as supplementary context.
func (s *VisionService) AnalyzeImage(ctx context.Context, imageDataURI, userDescription string) (*AnalysisResult, error) {
	message := chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: imageAnalysisPrompt(userDescription)},
			{Type: "image_url", ImageURL: &imageURL{URL: imageDataURI}},
		},
	}

	content, err := s.complete(ctx, message)
	if err != nil {
		return nil, err
	}

	return parseAnalysis(content)
}

// AnalyzeTextOnly derives an estimate from a meal description alone.
func (s *VisionService) AnalyzeTextOnly(ctx context.Context, description string) (*AnalysisResult, error) {
	message := chatMessage{
		Role:    "user",
		Content: textOnlyPrompt(description),
	}

	content, err := s.complete(ctx, message)
	if err != nil {
		return nil, err
	}

	return parseAnalysis(content)
}

// complete performs one chat-completions round trip and returns the first
// choice's content. Transport failures, non-success statuses and empty
// responses are all AnalysisError; there is no internal retry.
func (s *VisionService) complete(ctx context.Context, message chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []chatMessage{message},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &AnalysisError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &AnalysisError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &AnalysisError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AnalysisError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Vision] API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", &AnalysisError{Err: fmt.Errorf("API request failed with status %d", resp.StatusCode)}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &AnalysisError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(result.Choices) == 0 {
		return "", &AnalysisError{Err: fmt.Errorf("no response from API")}
	}

	return result.Choices[0].Message.Content, nil
}

// parseAnalysis strips markdown fences, rejects the not-food sentinel and
// decodes the nutrition payload. Absent and null fields both decode to nil.
func parseAnalysis(content string) (*AnalysisResult, error) {
	cleaned := stripCodeFences(content)

	var sentinel struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(cleaned), &sentinel); err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("failed to parse AI response: %w", err)}
	}
	if sentinel.Error != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("%w: %s", ErrNotFood, *sentinel.Error)}
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("failed to parse AI response: %w", err)}
	}

	return &result, nil
}

// stripCodeFences removes a leading/trailing markdown code block if the model
// wrapped its JSON in one.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = content[len("```json"):]
	} else if strings.HasPrefix(content, "```") {
		content = content[len("```"):]
	}

	if strings.HasSuffix(content, "```") {
		content = content[:len(content)-len("```")]
	}

	return strings.TrimSpace(content)
}

func imageAnalysisPrompt(userDescription string) string {
	userContext := ""
	if strings.TrimSpace(userDescription) != "" {
		userContext = fmt.Sprintf("\n\nUSER'S DESCRIPTION: %q\n"+
			"Use this description to better understand the food. For example, if they mention 'with sugar' or 'black coffee', "+
			"adjust your nutritional analysis accordingly. The user's description provides important context about preparation, "+
			"ingredients, or portions that may not be visible in the image.\n", userDescription)
	}

	return `You are a nutrition analysis expert. Analyze the food in this image and provide detailed nutritional information.
` + userContext + `
CRITICAL: Return ONLY a valid JSON object. No markdown, no code blocks, no explanation - just pure JSON.

Required JSON structure:
{
  "serving_size": "estimated serving size (e.g., '1 plate', '2 slices', '300g')",
  "calories": 0,
  "protein_g": 0.0,
  "fat_g": 0.0,
  "saturated_fat_g": 0.0,
  "carbohydrates_g": 0.0,
  "fiber_g": 0.0,
  "sugar_g": 0.0,
  "sodium_mg": 0.0,
  "cholesterol_mg": 0.0,
  "ingredients": ["main ingredient 1", "ingredient 2"],
  "allergens": ["potential allergen 1", "allergen 2"],
  "health_notes": "brief health insights (high protein, low carb, etc.)",
  "confidence": 0.85
}

Rules:
- All numeric fields must be numbers (not strings)
- Use 0 for unknown values (never use null or omit required fields)
- serving_size must be a string describing the portion
- ingredients should list main components you can identify
- allergens should list common allergens (dairy, nuts, gluten, etc.)
- health_notes should be 1-2 sentences about nutritional highlights
- confidence should be 0.0-1.0 based on image clarity and food recognition

If this is NOT a food image, return exactly:
{"error": "Not a food item"}

Remember: Return ONLY the JSON object, nothing else.
If unsure about exact values, provide approximate estimates based on similar foods rather than leaving fields empty.`
}

func textOnlyPrompt(description string) string {
	return fmt.Sprintf(`You are a nutrition analysis expert. Based on the text description provided by the user, estimate the nutritional information for the meal.

USER'S MEAL DESCRIPTION: %q

Analyze this description and provide your best estimate of the nutritional content. Consider typical portion sizes and preparation methods.

CRITICAL: Return ONLY a valid JSON object. No markdown, no code blocks, no explanation - just pure JSON.

Required JSON structure:
{
  "serving_size": "estimated serving size (e.g., '1 plate', '2 slices', '300g')",
  "calories": 0,
  "protein_g": 0.0,
  "fat_g": 0.0,
  "saturated_fat_g": 0.0,
  "carbohydrates_g": 0.0,
  "fiber_g": 0.0,
  "sugar_g": 0.0,
  "sodium_mg": 0.0,
  "cholesterol_mg": 0.0,
  "ingredients": ["main ingredient 1", "ingredient 2"],
  "allergens": ["potential allergen 1", "allergen 2"],
  "health_notes": "brief health insights (high protein, low carb, etc.)",
  "confidence": 0.65
}

Rules:
- All numeric fields must be numbers (not strings)
- Use 0 for unknown values (never use null or omit required fields)
- serving_size should be estimated from the description or use typical portions
- ingredients should list components mentioned or implied in the description
- allergens should list common allergens (dairy, nuts, gluten, etc.) based on the description
- health_notes should be 1-2 sentences about nutritional highlights
- confidence should be 0.0-1.0 (use lower values like 0.5-0.7 for text-only estimates)

Remember: Return ONLY the JSON object, nothing else.
Provide reasonable estimates based on typical nutritional values for similar foods.`, description)
}
