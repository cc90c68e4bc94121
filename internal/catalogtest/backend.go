// Package catalogtest provides an in-process fake of the product backend.
// It mirrors the real REST surface (pagination, type and price filters,
// sorting, name search, multipart image upload) over an in-memory table so
// client and store tests exercise realistic responses without a server
// deployment.
package catalogtest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultPageSize = 10

type productRecord struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	CreatedAt   string  `json:"created_at"`
	Status      string  `json:"status,omitempty"`
}

type pageResponse struct {
	Products   []productRecord `json:"products"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// Backend is a fake catalog backend backed by an in-memory product table.
type Backend struct {
	mu       sync.Mutex
	products []productRecord
	nextID   int64
	router   chi.Router
}

// New creates an empty fake backend.
func New() *Backend {
	b := &Backend{nextID: 1}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", b.list)
		r.Get("/search", b.search)
		r.Post("/", b.create)
		r.Get("/{id}", b.get)
		r.Put("/{id}", b.update)
		r.Delete("/{id}", b.remove)
	})

	b.router = r
	return b
}

// Handler returns the backend's HTTP handler.
func (b *Backend) Handler() http.Handler {
	return b.router
}

// SeedProduct inserts a product and returns its assigned id.
func (b *Backend) SeedProduct(name, typ string, price float64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.products = append(b.products, productRecord{
		ID:        id,
		Name:      name,
		Type:      typ,
		Price:     price,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return id
}

// Seed inserts n generated products cycling through the given types.
func (b *Backend) Seed(n int, types ...string) {
	if len(types) == 0 {
		types = []string{"general"}
	}
	for i := 0; i < n; i++ {
		b.SeedProduct(
			fmt.Sprintf("Product %d", i+1),
			types[i%len(types)],
			float64(10*(i+1)),
		)
	}
}

// Count returns the number of stored products.
func (b *Backend) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.products)
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}

	b.mu.Lock()
	matched := b.filterLocked(r)
	b.mu.Unlock()

	sortRecords(matched, r.URL.Query().Get("sortBy"), r.URL.Query().Get("sortOrder"))

	total := len(matched)
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, pageResponse{
		Products:   matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func (b *Backend) filterLocked(r *http.Request) []productRecord {
	q := r.URL.Query()
	typ := q.Get("type")

	var minPrice, maxPrice *float64
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		minPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		maxPrice = &v
	}

	matched := make([]productRecord, 0, len(b.products))
	for _, p := range b.products {
		if typ != "" && p.Type != typ {
			continue
		}
		if minPrice != nil && p.Price < *minPrice {
			continue
		}
		if maxPrice != nil && p.Price > *maxPrice {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func sortRecords(records []productRecord, sortBy, sortOrder string) {
	if sortBy == "" {
		return
	}
	desc := sortOrder == "desc"
	sort.SliceStable(records, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "price":
			less = records[i].Price < records[j].Price
		case "created_at":
			less = records[i].CreatedAt < records[j].CreatedAt
		default:
			less = records[i].Name < records[j].Name
		}
		if desc {
			return !less
		}
		return less
	})
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("name"))

	b.mu.Lock()
	defer b.mu.Unlock()

	matched := []productRecord{}
	for _, p := range b.products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			matched = append(matched, p)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}

func (b *Backend) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	http.Error(w, "product not found", http.StatusNotFound)
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request) {
	record, err := b.decodeProduct(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	record.ID = b.nextID
	b.nextID++
	record.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	b.products = append(b.products, record)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, record)
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	record, err := b.decodeProduct(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, p := range b.products {
		if p.ID == id {
			record.ID = id
			record.CreatedAt = p.CreatedAt
			if record.ImageURL == "" {
				record.ImageURL = p.ImageURL
			}
			b.products[i] = record
			writeJSON(w, http.StatusOK, record)
			return
		}
	}
	http.Error(w, "product not found", http.StatusNotFound)
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, p := range b.products {
		if p.ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	http.Error(w, "product not found", http.StatusNotFound)
}

// decodeProduct accepts either a JSON body or multipart form data. An
// uploaded image file is assigned an /uploads/ path the way the real
// backend's storage layer does.
func (b *Backend) decodeProduct(r *http.Request) (productRecord, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return productRecord{}, fmt.Errorf("error parsing form data: %w", err)
		}

		price, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil {
			return productRecord{}, fmt.Errorf("invalid price: %w", err)
		}

		record := productRecord{
			Name:        r.FormValue("name"),
			Type:        r.FormValue("type"),
			Price:       price,
			Description: r.FormValue("description"),
			ImageURL:    r.FormValue("image_url"),
			Status:      r.FormValue("status"),
		}

		file, _, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			io.Copy(io.Discard, file)
			record.ImageURL = fmt.Sprintf("/uploads/product-%d.png", time.Now().UnixNano())
		} else if err != http.ErrMissingFile {
			return productRecord{}, fmt.Errorf("error reading image file: %w", err)
		}

		return record, nil
	}

	var record productRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		return productRecord{}, fmt.Errorf("invalid request body: %w", err)
	}
	return record, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
