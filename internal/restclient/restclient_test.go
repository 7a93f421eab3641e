package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/staged"
)

// addressServer es una API de direcciones en memoria para un solo usuario
type addressServer struct {
	mu    sync.Mutex
	items []models.Address
	calls []string
}

func (s *addressServer) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	find := func(id string) int {
		for i, a := range s.items {
			if a.ID.Hex() == id {
				return i
			}
		}
		return -1
	}

	mux.HandleFunc("GET /v1/users/{owner}/addresses", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, "list")
		write(w, http.StatusOK, s.items)
	})
	mux.HandleFunc("POST /v1/users/{owner}/addresses", func(w http.ResponseWriter, r *http.Request) {
		var a models.Address
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			write(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, "create")
		a.ID = primitive.NewObjectID()
		a.UserID = r.PathValue("owner")
		a.SortOrder = len(s.items)
		a.IsDefault = false
		s.items = append(s.items, a)
		write(w, http.StatusCreated, a)
	})
	mux.HandleFunc("PUT /v1/users/{owner}/addresses/reorder", func(w http.ResponseWriter, r *http.Request) {
		var positions []staged.Position
		_ = json.NewDecoder(r.Body).Decode(&positions)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, "reorder")
		next := make([]models.Address, len(positions))
		for _, p := range positions {
			a := s.items[find(p.ID)]
			a.SortOrder = p.SortOrder
			a.IsDefault = p.IsDefault
			next[p.SortOrder] = a
		}
		s.items = next
		write(w, http.StatusOK, s.items)
	})
	mux.HandleFunc("PUT /v1/users/{owner}/addresses/{id}/default", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, "default")
		if find(r.PathValue("id")) < 0 {
			write(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		for i := range s.items {
			s.items[i].IsDefault = s.items[i].ID.Hex() == r.PathValue("id")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /v1/users/{owner}/addresses/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, "delete")
		i := find(r.PathValue("id"))
		if i < 0 {
			write(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func seedAddress(line1 string, sortOrder int, isDefault bool) models.Address {
	return models.Address{
		ID: primitive.NewObjectID(), UserID: "u1", Name: "Home", Line1: line1,
		City: "Springfield", PostalCode: "1000", Country: "US", Type: models.AddressShipping,
		SortOrder: sortOrder, IsDefault: isDefault,
	}
}

func TestEditorCommitOverHTTP(t *testing.T) {
	backend := &addressServer{items: []models.Address{
		seedAddress("1 Main", 0, true),
		seedAddress("2 Main", 1, false),
	}}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client := New(srv.URL, WithRetry(NoRetry))
	ed := staged.NewEditor(client.Addresses("u1"), models.AddressTraits)
	ctx := context.Background()

	if _, err := ed.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	rows := ed.Rows()
	newID, err := ed.StageCreate(models.Address{Name: "Work", Line1: "9 Elm", City: "Springfield", PostalCode: "1000", Country: "US"})
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.StageSetDefault(newID); err != nil {
		t.Fatal(err)
	}
	if err := ed.StageDelete(rows[1].ID); err != nil {
		t.Fatal(err)
	}
	if err := ed.StageReorder([]staged.ID{newID, rows[0].ID}); err != nil {
		t.Fatal(err)
	}

	items, err := ed.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(items) != 2 || items[0].Line1 != "9 Elm" || items[1].Line1 != "1 Main" {
		t.Fatalf("items = %+v", items)
	}
	if !items[0].IsDefault || items[1].IsDefault {
		t.Errorf("default flags = %v, %v", items[0].IsDefault, items[1].IsDefault)
	}
	want := []string{"list", "create", "delete", "default", "reorder"}
	if len(backend.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", backend.calls, want)
	}
	for i := range want {
		if backend.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", backend.calls, want)
		}
	}
}

func TestAPIErrorCarriesMessageAndFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"validation failed","fields":{"line1":"required"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithRetry(NoRetry))

	_, err := client.Addresses("u1").Create(context.Background(), models.Address{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "validation failed" || apiErr.Fields["line1"] != "required" {
		t.Errorf("apiErr = %+v", apiErr)
	}

	_, err = client.GetProduct(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestOnlyGetIsRetried(t *testing.T) {
	var gets, posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if gets.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`[]`))
			return
		}
		posts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, WithRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}))
	col := client.Addresses("u1")

	if _, err := col.List(context.Background()); err != nil {
		t.Fatalf("List after retries: %v", err)
	}
	if gets.Load() != 3 {
		t.Errorf("gets = %d, want 3", gets.Load())
	}

	if _, err := col.Create(context.Background(), models.Address{}); err == nil {
		t.Fatal("expected error")
	}
	if posts.Load() != 1 {
		t.Errorf("posts = %d, want 1 (no retry)", posts.Load())
	}
}

func TestQuoteAndPriceRange(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/cart/quote":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"lines":[{"unit_price":"25","line_total":"50","quantity":2}],"count":2,"subtotal":"50"}`))
		case "/v1/products/p1/price-range":
			_, _ = w.Write([]byte(`{"min":"8","max":"18","has_range":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)

	q, err := client.Quote(context.Background(), []QuoteLine{{
		ProductID: "p1", Quantity: 2,
		SelectedOptions: pricing.ByName(map[string]string{"Size": "Large"}),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if q.Subtotal.StringFixed(2) != "50.00" {
		t.Errorf("subtotal = %s", q.Subtotal)
	}
	items := gotBody["items"].([]any)
	sel := items[0].(map[string]any)["selected_options"].(map[string]any)
	if sel["by"] != "name" {
		t.Errorf("selected_options = %v", sel)
	}

	r, err := client.PriceRange(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasRange || r.Min.String() != "8" || r.Max.String() != "18" {
		t.Errorf("range = %+v", r)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}
	if d := backoff(1, cfg); d != 100*time.Millisecond {
		t.Errorf("attempt 1 = %s", d)
	}
	if d := backoff(5, cfg); d != 300*time.Millisecond {
		t.Errorf("attempt 5 = %s", d)
	}
	if d := backoff(0, cfg); d != 0 {
		t.Errorf("attempt 0 = %s", d)
	}
}
