package catalog

import (
	"math"
	"strings"
)

// Messages returned to API clients.
const (
	MsgMissingFields   = "Missing required fields"
	MsgNothingToUpdate = "Nothing to update"
)

// ValidationError rejects input before any mutation takes place.
type ValidationError struct {
	Message string
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

func invalid(msg, details string) *ValidationError {
	return &ValidationError{Message: msg, Details: details}
}

// normalizeCreate applies the strict create policy: required fields present,
// strings trimmed, numbers in range, defaults filled in.
func normalizeCreate(in ProductInput) (Product, error) {
	var missing []string
	name := trimmed(in.Name)
	category := trimmed(in.Category)
	description := trimmed(in.Description)
	if name == "" {
		missing = append(missing, "name")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if in.Price == nil || *in.Price == 0 {
		missing = append(missing, "price")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	if len(missing) > 0 {
		return Product{}, invalid(MsgMissingFields, strings.Join(missing, ", "))
	}

	in.Name, in.Category, in.Description = &name, &category, &description
	if in.Rating == nil {
		zero := 0.0
		in.Rating = &zero
	}
	if in.Image == nil {
		empty := ""
		in.Image = &empty
	}
	if in.OldPrice == nil {
		in.OldPrice = &OptionalPrice{}
	}
	norm, err := normalizeFields(in)
	if err != nil {
		return Product{}, err
	}
	var p Product
	norm.apply(&p)
	return p, nil
}

// normalizeUpdate applies the strict policy to the fields that are present.
func normalizeUpdate(in ProductInput) (ProductInput, error) {
	required := []struct {
		field string
		value *string
	}{
		{"name", in.Name},
		{"category", in.Category},
		{"description", in.Description},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return ProductInput{}, invalid(r.field+" must not be empty", r.field)
		}
	}
	return normalizeFields(in)
}

func normalizeFields(in ProductInput) (ProductInput, error) {
	out := in
	for _, f := range []**string{&out.Name, &out.Category, &out.Description, &out.Image} {
		if *f != nil {
			s := strings.TrimSpace(**f)
			*f = &s
		}
	}
	if out.Price != nil {
		if !finite(*out.Price) || *out.Price <= 0 {
			return ProductInput{}, invalid("price must be a positive number", "price")
		}
	}
	if out.OldPrice != nil && out.OldPrice.Value != nil {
		v := *out.OldPrice.Value
		switch {
		case v == 0:
			out.OldPrice = &OptionalPrice{}
		case !finite(v) || v < 0:
			return ProductInput{}, invalid("oldPrice must be a positive number", "oldPrice")
		}
	}
	if out.Stock != nil && *out.Stock < 0 {
		return ProductInput{}, invalid("stock must be a non-negative integer", "stock")
	}
	if out.Rating != nil {
		if !finite(*out.Rating) || *out.Rating < 0 || *out.Rating > 5 {
			return ProductInput{}, invalid("rating must be between 0 and 5", "rating")
		}
	}
	return out, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Normalize checks a full record against the create policy, keeping its id.
func Normalize(p Product) (Product, error) {
	n, err := normalizeCreate(InputFromProduct(p))
	if err != nil {
		return Product{}, err
	}
	n.ID = p.ID
	return n, nil
}
