package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAnalysisJSON = `{
	"serving_size": "1 plate",
	"calories": 540,
	"protein_g": 32.5,
	"fat_g": 18.0,
	"saturated_fat_g": 6.0,
	"carbohydrates_g": 55.0,
	"fiber_g": 4.5,
	"sugar_g": 8.0,
	"sodium_mg": 900.0,
	"cholesterol_mg": 85.0,
	"ingredients": ["chicken", "rice", "broccoli"],
	"allergens": [],
	"health_notes": "High protein, moderate carbs.",
	"confidence": 0.85
}`

// completionServer responds as a chat-completions endpoint whose model
// content is produced by reply.
func completionServer(t *testing.T, reply func(r *http.Request) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply(r)}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestVisionAnalyzeImage(t *testing.T) {
	t.Run("parses a clean JSON reply", func(t *testing.T) {
		var gotAuth string
		srv := completionServer(t, func(r *http.Request) string {
			gotAuth = r.Header.Get("Authorization")
			return sampleAnalysisJSON
		})
		defer srv.Close()

		svc := NewVisionService("test-key", srv.URL, "gpt-4o-mini", 800)
		result, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		require.NoError(t, err)

		assert.Equal(t, "Bearer test-key", gotAuth)
		require.NotNil(t, result.Calories)
		assert.Equal(t, 540, *result.Calories)
		require.NotNil(t, result.ProteinG)
		assert.InDelta(t, 32.5, *result.ProteinG, 0.001)
		assert.Equal(t, []string{"chicken", "rice", "broccoli"}, result.Ingredients)
		assert.Empty(t, result.Allergens)
	})

	t.Run("strips markdown code fences", func(t *testing.T) {
		srv := completionServer(t, func(r *http.Request) string {
			return "```json\n" + sampleAnalysisJSON + "\n```"
		})
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		result, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		require.NoError(t, err)
		require.NotNil(t, result.Calories)
		assert.Equal(t, 540, *result.Calories)
	})

	t.Run("absent fields stay nil", func(t *testing.T) {
		srv := completionServer(t, func(r *http.Request) string {
			return `{"calories": 200, "protein_g": null}`
		})
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		result, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		require.NoError(t, err)
		require.NotNil(t, result.Calories)
		assert.Equal(t, 200, *result.Calories)
		assert.Nil(t, result.ProteinG)
		assert.Nil(t, result.ServingSize)
		assert.Nil(t, result.Ingredients)
	})

	t.Run("not-food sentinel surfaces as ErrNotFood", func(t *testing.T) {
		srv := completionServer(t, func(r *http.Request) string {
			return `{"error": "Not a food item"}`
		})
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		_, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFood)

		var analysisErr *AnalysisError
		assert.ErrorAs(t, err, &analysisErr)
	})

	t.Run("malformed reply is an analysis error", func(t *testing.T) {
		srv := completionServer(t, func(r *http.Request) string {
			return "sorry, I cannot analyze this"
		})
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		_, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		var analysisErr *AnalysisError
		assert.ErrorAs(t, err, &analysisErr)
	})

	t.Run("non-200 status is an analysis error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		_, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		var analysisErr *AnalysisError
		assert.ErrorAs(t, err, &analysisErr)
	})

	t.Run("empty choices is an analysis error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices": []}`)
		}))
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		_, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		var analysisErr *AnalysisError
		assert.ErrorAs(t, err, &analysisErr)
	})

	t.Run("description is folded into the prompt", func(t *testing.T) {
		var gotBody chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			fmt.Fprintf(w, `{"choices": [{"message": {"content": %q}}]}`, sampleAnalysisJSON)
		}))
		defer srv.Close()

		svc := NewVisionService("k", srv.URL, "m", 800)
		_, err := svc.AnalyzeImage(context.Background(), "data:image/jpeg;base64,AAAA", "black coffee, no sugar")
		require.NoError(t, err)

		raw, err := json.Marshal(gotBody.Messages[0].Content)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "black coffee, no sugar")
	})
}

func TestVisionAnalyzeTextOnly(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprintf(w, `{"choices": [{"message": {"content": %q}}]}`, sampleAnalysisJSON)
	}))
	defer srv.Close()

	svc := NewVisionService("k", srv.URL, "m", 800)
	result, err := svc.AnalyzeTextOnly(context.Background(), "two scrambled eggs on toast")
	require.NoError(t, err)
	require.NotNil(t, result.Calories)

	content, ok := gotBody.Messages[0].Content.(string)
	require.True(t, ok)
	assert.Contains(t, content, "two scrambled eggs on toast")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in))
	}
	assert.False(t, strings.Contains(stripCodeFences("```json\n{}\n```"), "`"))
}
