package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"product-catalog/internal/domain"
)

// productEntity is the wire representation of a product. Field names are
// snake_case on the wire and mapped to the domain model internally.
type productEntity struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	CreatedAt   string  `json:"created_at"`
	Status      string  `json:"status,omitempty"`
}

// pageEntity is the wire envelope for paginated list responses.
type pageEntity struct {
	Products   []productEntity `json:"products"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// draftEntity is the JSON body for create/update without an image file.
type draftEntity struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Status      string  `json:"status,omitempty"`
}

func toDomain(e productEntity) domain.Product {
	createdAt, err := time.Parse(time.RFC3339, e.CreatedAt)
	if err != nil {
		// missing or unparsable timestamp defaults to now, matching the
		// clients' date handling
		createdAt = time.Now()
	}
	return domain.Product{
		ID:          e.ID,
		Name:        e.Name,
		Type:        e.Type,
		Price:       e.Price,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		CreatedAt:   createdAt,
		Status:      e.Status,
	}
}

func toDomainList(entities []productEntity) []domain.Product {
	products := make([]domain.Product, 0, len(entities))
	for _, e := range entities {
		products = append(products, toDomain(e))
	}
	return products
}

func toDraftEntity(d domain.ProductDraft) (draftEntity, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil {
		return draftEntity{}, fmt.Errorf("invalid draft price %q: %w", d.Price, err)
	}
	return draftEntity{
		Name:        d.Name,
		Type:        d.Type,
		Price:       price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Status:      d.Status,
	}, nil
}

// encodeMultipart writes the draft as multipart form data. The image file
// part is named "image"; image_url is carried only when no new file is
// attached, so a pending file always wins over a stale stored URL.
func encodeMultipart(d domain.ProductDraft) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid draft price %q: %w", d.Price, err)
	}

	fields := map[string]string{
		"name":        d.Name,
		"type":        d.Type,
		"price":       strconv.FormatFloat(price, 'f', 2, 64),
		"description": d.Description,
	}
	if d.Status != "" {
		fields["status"] = d.Status
	}
	if d.ImageFile == nil && d.ImageURL != "" {
		fields["image_url"] = d.ImageURL
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if d.ImageFile != nil {
		part, err := w.CreateFormFile("image", d.ImageFile.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(d.ImageFile.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image data: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return body, w.FormDataContentType(), nil
}
