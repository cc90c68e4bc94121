package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"product-catalog/internal/catalogtest"
	"product-catalog/internal/config"
	"product-catalog/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	return c, srv
}

func TestList_MapsWireEntitiesToDomain(t *testing.T) {
	backend := catalogtest.New()
	backend.SeedProduct("Laptop", "electronics", 999.99)
	backend.SeedProduct("Mug", "kitchen", 7.5)
	c, _ := newTestClient(t, backend.Handler())

	page, err := c.List(context.Background(), domain.FilterQuery{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(page.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(page.Products))
	}
	if page.TotalItems != 2 || page.TotalPages != 1 {
		t.Errorf("meta = total %d pages %d, want 2/1", page.TotalItems, page.TotalPages)
	}
	first := page.Products[0]
	if first.Name != "Laptop" || first.Type != "electronics" || first.Price != 999.99 {
		t.Errorf("unexpected first product: %+v", first)
	}
	if first.CreatedAt.IsZero() {
		t.Error("created_at was not mapped")
	}
}

func TestList_SendsQueryParameters(t *testing.T) {
	var gotQuery map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[],"total":0,"page":1,"pageSize":5,"totalPages":0}`))
	})
	c, _ := newTestClient(t, handler)

	minPrice := 10.0
	_, err := c.List(context.Background(), domain.FilterQuery{
		Page:      2,
		PageSize:  5,
		Type:      "books",
		MinPrice:  &minPrice,
		SortBy:    "price",
		SortOrder: "desc",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := map[string]string{
		"page": "2", "pageSize": "5", "type": "books",
		"minPrice": "10", "sortBy": "price", "sortOrder": "desc",
	}
	for key, expected := range want {
		if gotQuery[key] != expected {
			t.Errorf("query %s = %q, want %q", key, gotQuery[key], expected)
		}
	}
}

func TestSearch_NullBodyIsEmptyResult(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`null`))
	})
	c, _ := newTestClient(t, handler)

	products, err := c.Search(context.Background(), "laptop")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
}

func TestGetByID_NotFound(t *testing.T) {
	backend := catalogtest.New()
	c, _ := newTestClient(t, backend.Handler())

	_, err := c.GetByID(context.Background(), 42)
	if !IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_ServerErrorCarriesStatusCode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.List(context.Background(), domain.FilterQuery{Page: 1, PageSize: 10})

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if terr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", terr.StatusCode)
	}
}

func TestList_NetworkFailureIsTransportError(t *testing.T) {
	c := New(config.BackendConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())

	_, err := c.List(context.Background(), domain.FilterQuery{Page: 1, PageSize: 10})

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if terr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for connection failure", terr.StatusCode)
	}
}

func TestCreate_JSONBody(t *testing.T) {
	backend := catalogtest.New()
	c, _ := newTestClient(t, backend.Handler())

	created, err := c.Create(context.Background(), domain.ProductDraft{
		Name:        "Desk",
		Type:        "furniture",
		Price:       "120.50",
		Description: "Standing desk",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("backend-assigned id missing")
	}
	if created.Name != "Desk" || created.Price != 120.50 {
		t.Errorf("unexpected created product: %+v", created)
	}
}

func TestCreate_MultipartWithImage(t *testing.T) {
	var (
		gotContentType string
		gotName        string
		gotPrice       string
		gotFilename    string
		hadImageURL    bool
	)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("backend could not parse multipart body: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotName = r.FormValue("name")
		gotPrice = r.FormValue("price")
		_, hadImageURL = r.MultipartForm.Value["image_url"]
		_, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image part: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFilename = header.Filename

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"name":"Hat","type":"clothing","price":12.5,"image_url":"/uploads/product-7.png","created_at":"2024-01-02T03:04:05Z"}`))
	})
	c, _ := newTestClient(t, handler)

	created, err := c.Create(context.Background(), domain.ProductDraft{
		Name:     "Hat",
		Type:     "clothing",
		Price:    "12.5",
		ImageURL: "/uploads/stale.png",
		ImageFile: &domain.ImageFile{
			Name: "hat.png",
			Data: []byte{0x89, 0x50, 0x4e, 0x47},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("Content-Type = %q, want multipart/form-data", gotContentType)
	}
	if gotName != "Hat" {
		t.Errorf("name field = %q", gotName)
	}
	if gotPrice != "12.50" {
		t.Errorf("price field = %q, want two-decimal 12.50", gotPrice)
	}
	if gotFilename != "hat.png" {
		t.Errorf("image filename = %q", gotFilename)
	}
	// the pending file is authoritative; the stale stored URL must not travel
	if hadImageURL {
		t.Error("image_url field sent alongside a new image file")
	}
	if created.ImageURL != "/uploads/product-7.png" {
		t.Errorf("created.ImageURL = %q", created.ImageURL)
	}
}

func TestUpdate_EmptyBodyIsEmptyResponseError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.Update(context.Background(), 3, domain.ProductDraft{
		Name: "X", Type: "y", Price: "1",
	})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestDelete_RoundTrip(t *testing.T) {
	backend := catalogtest.New()
	id := backend.SeedProduct("Doomed", "misc", 1)
	c, _ := newTestClient(t, backend.Handler())

	if err := c.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if backend.Count() != 0 {
		t.Errorf("backend still holds %d products", backend.Count())
	}

	if err := c.Delete(context.Background(), id); !IsNotFound(err) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestResolveImageURL(t *testing.T) {
	c := New(config.BackendConfig{BaseURL: "http://host:8080/"}, zap.NewNop())

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"blank", "", ""},
		{"whitespace", "   ", ""},
		{"absolute http", "http://cdn.example.com/a.png", "http://cdn.example.com/a.png"},
		{"absolute https", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"uploads path stripped once", "/uploads/product-1.png", "http://host:8080/product-1.png"},
		{"nested uploads only strips the leading one", "/uploads/uploads/x.png", "http://host:8080/uploads/x.png"},
		{"plain relative path", "images/b.jpg", "http://host:8080/images/b.jpg"},
		{"leading slash path", "/images/b.jpg", "http://host:8080/images/b.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ResolveImageURL(tt.ref); got != tt.want {
				t.Errorf("ResolveImageURL(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
