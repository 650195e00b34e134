package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		validateFunc func(t *testing.T, c Candidate)
	}{
		{
			name:  "full record in code fence",
			input: "```json\n{\"amount\": 300, \"paid_by\": \"bob\", \"participants\": [\"bob\", \"amy\", \"bob\"], \"description\": \"pizza\", \"date\": \"2024-02-01\", \"category\": \"Food\"}\n```",
			validateFunc: func(t *testing.T, c Candidate) {
				require.Equal(t, StatusSuccess, c.Status)
				assert.Equal(t, "300", c.Amount.String())
				assert.Equal(t, "bob", c.PaidBy)
				assert.Equal(t, []string{"bob", "amy"}, c.Participants)
				assert.Equal(t, "2024-02-01", c.Date.String())
				assert.Equal(t, "Food", c.Category)
			},
		},
		{
			name:  "defaults",
			input: `{"amount": "12.5"}`,
			validateFunc: func(t *testing.T, c Candidate) {
				require.Equal(t, StatusSuccess, c.Status)
				assert.Equal(t, DefaultPayer, c.PaidBy)
				assert.Equal(t, DefaultDescription, c.Description)
				assert.Equal(t, DefaultCategory, c.Category)
				assert.Equal(t, []string{DefaultPayer}, c.Participants)
				assert.True(t, c.Date.IsZero())
			},
		},
		{
			name:  "today means no date",
			input: `{"amount": 1, "date": "today"}`,
			validateFunc: func(t *testing.T, c Candidate) {
				require.Equal(t, StatusSuccess, c.Status)
				assert.True(t, c.Date.IsZero())
			},
		},
		{
			name:  "model reported error",
			input: `{"error": "No amount found"}`,
			validateFunc: func(t *testing.T, c Candidate) {
				assert.Equal(t, StatusError, c.Status)
				assert.Equal(t, "No amount found", c.Message)
			},
		},
		{
			name:  "null amount",
			input: `{"amount": null, "description": "lunch"}`,
			validateFunc: func(t *testing.T, c Candidate) {
				assert.Equal(t, StatusError, c.Status)
				assert.Equal(t, "No amount specified", c.Message)
			},
		},
		{
			name:  "not json",
			input: "I could not find an expense",
			validateFunc: func(t *testing.T, c Candidate) {
				assert.Equal(t, StatusError, c.Status)
				assert.True(t, strings.HasPrefix(c.Message, "Parsing failed"))
			},
		},
		{
			name:  "bad date",
			input: `{"amount": 1, "date": "next friday"}`,
			validateFunc: func(t *testing.T, c Candidate) {
				assert.Equal(t, StatusError, c.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, ParseResponse(tt.input))
		})
	}
}

func TestGemini_Extract(t *testing.T) {
	var gotPath, gotKey, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"`+"```json\\n{\\\"amount\\\": 42, \\\"description\\\": \\\"taxi\\\"}\\n```"+`"}]}}]}`)
	}))
	defer server.Close()

	g := NewGemini(server.URL, "test-model", "secret", nil)
	c, err := g.Extract(context.Background(), "taxi 42")
	require.NoError(t, err)

	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotBody, "taxi 42")
	assert.Contains(t, gotBody, "Extract bill details")

	require.Equal(t, StatusSuccess, c.Status)
	assert.Equal(t, "42", c.Amount.String())
	assert.Equal(t, "taxi", c.Description)
}

func TestGemini_Failures(t *testing.T) {
	t.Run("non-OK status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := NewGemini(server.URL, "m", "k", nil).Extract(context.Background(), "x")
		assert.ErrorContains(t, err, "429")
	})

	t.Run("empty candidates is an error candidate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"candidates":[]}`)
		}))
		defer server.Close()

		c, err := NewGemini(server.URL, "m", "k", nil).Extract(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, StatusError, c.Status)
	})
}
