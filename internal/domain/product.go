package domain

import "time"

// Product represents a product in the catalog
type Product struct {
	ID          int64
	Name        string
	Type        string
	Price       float64
	Description string
	ImageURL    string
	ImageFile   *ImageFile
	CreatedAt   time.Time
	Status      string
}

// ImageFile is a pending local image attachment. When set it takes
// precedence over ImageURL for display and for submission.
type ImageFile struct {
	Name string
	Data []byte
}

// DisplayImageRef returns the authoritative image reference: the pending
// local file when one is attached, otherwise the stored remote URL.
func (p Product) DisplayImageRef() string {
	if p.ImageFile != nil {
		return p.ImageFile.Name
	}
	return p.ImageURL
}

// ProductDraft is a product payload not yet confirmed by the backend
// (pre-create or pre-update form data). Price carries the raw form string
// and is parsed during validation.
type ProductDraft struct {
	Name        string
	Type        string
	Price       string
	Description string
	ImageURL    string
	ImageFile   *ImageFile
	Status      string
}

// ImageRef returns the draft's authoritative image reference, preferring a
// pending local file over a stored URL.
func (d ProductDraft) ImageRef() string {
	if d.ImageFile != nil {
		return d.ImageFile.Name
	}
	return d.ImageURL
}

// ValidationResult collects the outcome of validating a draft. Errors holds
// every violated rule in declaration order, not just the first.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
