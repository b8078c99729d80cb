package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-key", "gpt-4o", 5*time.Second)
	c.endpoint = server.URL
	return c
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestExtractSuccess(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		chatReply(t, w, `Here is the extraction:
{"amount": 12.50, "merchant": "Cafe X", "category": "Food & Dining", "date": "2026-08-20", "items": ["espresso", "croissant"], "currency": "SGD"}`)
	})

	extraction, err := c.Extract(context.Background(), []byte("jpeg-bytes"), []string{"Food & Dining", "Travel"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if extraction.Amount == nil || extraction.Amount.String() != "12.5" {
		t.Fatalf("amount = %v", extraction.Amount)
	}
	if extraction.Merchant != "Cafe X" {
		t.Fatalf("merchant = %q", extraction.Merchant)
	}
	if extraction.Category != "Food & Dining" {
		t.Fatalf("category = %q", extraction.Category)
	}
	if got := extraction.ParsedDate(); got.Format("2006-01-02") != "2026-08-20" {
		t.Fatalf("date = %s", got)
	}
	if len(extraction.Items) != 2 {
		t.Fatalf("items = %v", extraction.Items)
	}
}

func TestExtractNullableFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"amount": null, "merchant": "", "category": null, "date": "", "items": [], "currency": ""}`)
	})

	extraction, err := c.Extract(context.Background(), []byte("x"), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if extraction.Amount != nil {
		t.Fatalf("amount = %v, want nil", extraction.Amount)
	}
	if !extraction.ParsedDate().IsZero() {
		t.Fatal("empty date should parse to zero time")
	}
}

func TestExtractUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := c.Extract(context.Background(), []byte("x"), nil)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
}

func TestExtractNoJSONInReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "Sorry, I cannot read this receipt.")
	})

	_, err := c.Extract(context.Background(), []byte("x"), nil)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestExtractMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := c.Extract(context.Background(), []byte("x"), nil)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestExtractRequestShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Fatalf("unexpected message shape: %+v", req.Messages)
		}
		if req.Messages[0].Content[1].ImageURL == nil {
			t.Fatal("image content part missing")
		}
		chatReply(t, w, `{"amount": 1}`)
	})

	if _, err := c.Extract(context.Background(), []byte("x"), []string{"Travel"}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
}
