// Package validate checks product drafts against the catalog business rules
// before any network call is made. All violations are collected rather than
// short-circuited so forms can render every field error at once.
package validate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"product-catalog/internal/domain"
)

// MaxPrice is the upper bound accepted for a product price.
const MaxPrice = 1_000_000

var validate *validator.Validate

func init() {
	validate = validator.New()
	// name/type must contain more than whitespace
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	validate.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
		return isValidImageRef(fl.Field().String())
	})
}

// draftRules mirrors domain.ProductDraft for tag-based validation. Price is
// checked separately because required/parse failures must produce distinct
// messages before any range rule applies.
type draftRules struct {
	Name        string  `validate:"required,notblank,max=100"`
	Type        string  `validate:"required,notblank"`
	Price       float64 `validate:"gte=0,lte=1000000"`
	Description string  `validate:"max=500"`
	ImageRef    string  `validate:"omitempty,imageref"`
}

// Validate applies every business rule to the draft and returns all
// violations as human-readable messages. Deterministic, no side effects.
func Validate(d domain.ProductDraft) domain.ValidationResult {
	rules := draftRules{
		Name:        d.Name,
		Type:        d.Type,
		Description: d.Description,
	}
	// a pending local file is not a URL; only a stored reference is checked
	if d.ImageFile == nil {
		rules.ImageRef = d.ImageURL
	}

	priceErr := ""
	price, ok := parsePrice(d.Price)
	if ok {
		rules.Price = price
	} else if strings.TrimSpace(d.Price) == "" {
		priceErr = "Product price is required"
	} else {
		priceErr = "Price must be a number"
	}

	byField := map[string][]string{}
	if err := validate.Struct(rules); err != nil {
		if fieldErrors, isValidation := err.(validator.ValidationErrors); isValidation {
			for _, e := range fieldErrors {
				byField[e.Field()] = append(byField[e.Field()], ruleMessage(e))
			}
		}
	}
	if priceErr != "" {
		// unparsable price: skip the range checks, report the parse failure
		byField["Price"] = []string{priceErr}
	}

	var errs []string
	for _, field := range []string{"Name", "Type", "Price", "Description", "ImageRef"} {
		errs = append(errs, byField[field]...)
	}

	return domain.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// ruleMessage converts a validator error to the message wording the catalog
// clients surface to users.
func ruleMessage(e validator.FieldError) string {
	switch e.Field() {
	case "Name":
		switch e.Tag() {
		case "required", "notblank":
			return "Product name is required"
		case "max":
			return "Product name must be between 1 and 100 characters"
		}
	case "Type":
		return "Product type is required"
	case "Price":
		switch e.Tag() {
		case "gte":
			return "Price cannot be negative"
		case "lte":
			return "Price cannot exceed 1,000,000"
		}
	case "Description":
		return "Description cannot exceed 500 characters"
	case "ImageRef":
		return "Invalid image URL format"
	}
	return "Invalid value"
}

func parsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// isValidImageRef accepts a syntactically valid absolute URL, or a
// "/"-prefixed path ending in a known image extension.
func isValidImageRef(ref string) bool {
	if strings.HasPrefix(ref, "/") {
		lower := strings.ToLower(ref)
		for _, ext := range imageExtensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
