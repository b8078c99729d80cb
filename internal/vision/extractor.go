// Package vision submits receipt images to a vision-capable language model
// and parses the structured extraction out of its reply.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

var (
	// ErrExtraction covers upstream call failures: network errors, timeouts
	// and non-2xx responses. A failed extraction ends the photo-intake
	// attempt; there are no retries.
	ErrExtraction = errors.New("receipt extraction failed")

	// ErrParse means the model replied but no usable JSON object could be
	// read out of the reply.
	ErrParse = errors.New("could not parse receipt")
)

// Extraction is the structured result of one receipt image. Nil or empty
// fields mean the model could not determine them.
type Extraction struct {
	Amount   *decimal.Decimal `json:"amount"`
	Merchant string           `json:"merchant"`
	Category string           `json:"category"`
	Date     string           `json:"date"` // YYYY-MM-DD
	Items    []string         `json:"items"`
	Currency string           `json:"currency"`
}

// ParsedDate returns the extracted date, or the zero time when absent or
// malformed.
func (e *Extraction) ParsedDate() time.Time {
	if e.Date == "" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}

// Client calls the chat-completions endpoint with an inline image.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// Extract submits one image and returns the structured extraction. The
// category in the reply is constrained to the given expense category names
// but is still validated downstream against the catalog.
func (c *Client) Extract(ctx context.Context, image []byte, categories []string) (*Extraction, error) {
	payload := chatRequest{
		Model:     c.model,
		MaxTokens: 300,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: extractionPrompt(categories)},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrExtraction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrExtraction, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrExtraction, resp.StatusCode, firstLine(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	// The model wraps its JSON in prose often enough that we fish the
	// object out instead of decoding the whole reply.
	match := jsonObjectRe.FindString(parsed.Choices[0].Message.Content)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrParse)
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(match), &extraction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &extraction, nil
}

func extractionPrompt(categories []string) string {
	return fmt.Sprintf(`Analyze this receipt/bill image and extract the following information in JSON format:
{
    "amount": <total_amount_as_number>,
    "merchant": "<merchant_name>",
    "category": "<best_matching_category>",
    "date": "<date_in_YYYY-MM-DD_format>",
    "items": ["<item1>", "<item2>"],
    "currency": "<currency_symbol_or_code>"
}
For category, choose from: %s
If you can't determine a field, use null or empty string.`, strings.Join(categories, ", "))
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
