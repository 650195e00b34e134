// Package extract turns free-form text such as "paid 300 for pizza with Bob"
// into a candidate expense using a language model.
package extract

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/mmynk/splitledger/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Defaults filled in when the model leaves a field out.
const (
	DefaultPayer       = "You"
	DefaultDescription = "expense"
	DefaultCategory    = "other"
)

// Status is the outcome of an extraction.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Prompt is prepended to the user's text.
const Prompt = `
Extract bill details STRICTLY in this JSON format:
{
    "amount": number,
    "paid_by": string (default: "You"),
    "participants": list (including payer),
    "description": string,
    "date": string (YYYY-MM-DD, default: today),
    "category": string (optional, e.g., Food, Travel)
}
If amount is missing, return {"error": "No amount found"}

User input:
`

// Candidate is an unvalidated expense proposed by the extractor.
// Membership and amount sign are checked by the caller before recording.
type Candidate struct {
	Status  Status
	Message string

	Amount       models.Amount
	PaidBy       string
	Description  string
	Participants []string
	// Date is zero when the text did not name a date.
	Date     models.Date
	Category string
}

// Extractor produces a Candidate from free text. A non-nil error means the
// extraction service itself failed; unusable text yields a StatusError candidate.
type Extractor interface {
	Extract(ctx context.Context, text string) (Candidate, error)
}

func failed(format string, args ...any) Candidate {
	return Candidate{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

type response struct {
	Error        *string        `json:"error"`
	Amount       *models.Amount `json:"amount"`
	PaidBy       *string        `json:"paid_by"`
	Description  *string        `json:"description"`
	Participants *[]string      `json:"participants"`
	Date         *string        `json:"date"`
	Category     *string        `json:"category"`
}

// ParseResponse decodes the model's reply. Markdown code fences around the
// JSON are tolerated.
func ParseResponse(text string) Candidate {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var r response
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return failed("Parsing failed: %v", err)
	}
	if r.Error != nil {
		return failed("%s", *r.Error)
	}
	if r.Amount == nil {
		return failed("No amount specified")
	}

	c := Candidate{
		Status:       StatusSuccess,
		Amount:       *r.Amount,
		PaidBy:       valueOr(r.PaidBy, DefaultPayer),
		Description:  valueOr(r.Description, DefaultDescription),
		Category:     valueOr(r.Category, DefaultCategory),
		Participants: []string{DefaultPayer},
	}
	if r.Participants != nil {
		c.Participants = dedupe(*r.Participants)
	}
	if r.Date != nil && *r.Date != "" && !strings.EqualFold(*r.Date, "today") {
		d, err := models.ParseDate(*r.Date)
		if err != nil {
			return failed("Parsing failed: %v", err)
		}
		c.Date = d
	}
	return c
}

func valueOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
