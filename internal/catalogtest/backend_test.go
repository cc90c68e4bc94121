package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doGet(t *testing.T, b *Backend, path string) (*http.Response, pageResponse) {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var page pageResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("decoding %s response: %v", path, err)
		}
	}
	return resp, page
}

func TestList_PaginationMath(t *testing.T) {
	b := New()
	b.Seed(12)

	_, page := doGet(t, b, "/products?page=3&pageSize=5")

	if len(page.Products) != 2 {
		t.Errorf("last page holds %d products, want 2", len(page.Products))
	}
	if page.Total != 12 || page.TotalPages != 3 {
		t.Errorf("meta = %d/%d, want 12 items over 3 pages", page.Total, page.TotalPages)
	}
}

func TestList_TypeAndPriceFilters(t *testing.T) {
	b := New()
	b.SeedProduct("Cheap Phone", "electronics", 99)
	b.SeedProduct("Pricey Phone", "electronics", 900)
	b.SeedProduct("Novel", "books", 15)

	_, page := doGet(t, b, "/products?page=1&pageSize=10&type=electronics&maxPrice=100")

	if len(page.Products) != 1 || page.Products[0].Name != "Cheap Phone" {
		t.Errorf("filtered products = %+v", page.Products)
	}
}

func TestList_Sorting(t *testing.T) {
	b := New()
	b.SeedProduct("B", "misc", 2)
	b.SeedProduct("A", "misc", 3)
	b.SeedProduct("C", "misc", 1)

	_, page := doGet(t, b, "/products?page=1&pageSize=10&sortBy=price&sortOrder=desc")

	if page.Products[0].Price != 3 || page.Products[2].Price != 1 {
		t.Errorf("descending price order violated: %+v", page.Products)
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	b := New()
	b.SeedProduct("Gaming Laptop", "electronics", 1500)
	b.SeedProduct("Mouse", "electronics", 25)

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/products/search?name=LAPTOP")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	defer resp.Body.Close()

	var products []productRecord
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decoding search response: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Gaming Laptop" {
		t.Errorf("search results = %+v", products)
	}
}

func TestGet_UnknownIDIs404(t *testing.T) {
	b := New()
	resp, _ := doGet(t, b, "/products/999")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
