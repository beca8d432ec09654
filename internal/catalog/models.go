package catalog

// Product is a catalog record. JSON names are part of the wire format.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	OldPrice    *float64 `json:"oldPrice"`
	Stock       int      `json:"stock"`
	Rating      float64  `json:"rating"`
	Image       string   `json:"image"`
}

// clone returns a copy that shares no memory with p.
func (p Product) clone() Product {
	if p.OldPrice != nil {
		v := *p.OldPrice
		p.OldPrice = &v
	}
	return p
}

// ProductInput is a partial product used for create and update. A nil field
// was not supplied by the caller.
type ProductInput struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	OldPrice    *OptionalPrice
	Stock       *int
	Rating      *float64
	Image       *string
}

// OptionalPrice distinguishes "clear the old price" (Value == nil) from
// "set it" when OldPrice is present in an input.
type OptionalPrice struct {
	Value *float64
}

// IsEmpty reports whether no field is set.
func (in ProductInput) IsEmpty() bool {
	return in.Name == nil && in.Category == nil && in.Description == nil &&
		in.Price == nil && in.OldPrice == nil && in.Stock == nil &&
		in.Rating == nil && in.Image == nil
}

// apply merges the present fields of in into p.
func (in ProductInput) apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OldPrice != nil {
		if in.OldPrice.Value == nil {
			p.OldPrice = nil
		} else {
			v := *in.OldPrice.Value
			p.OldPrice = &v
		}
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
}

// InputFromProduct turns a full record into an input carrying every field.
func InputFromProduct(p Product) ProductInput {
	in := ProductInput{
		Name:        &p.Name,
		Category:    &p.Category,
		Description: &p.Description,
		Price:       &p.Price,
		OldPrice:    &OptionalPrice{},
		Stock:       &p.Stock,
		Rating:      &p.Rating,
		Image:       &p.Image,
	}
	if p.OldPrice != nil {
		v := *p.OldPrice
		in.OldPrice.Value = &v
	}
	return in
}

// Discount is the whole-percent markdown from OldPrice to Price, or 0.
func (p Product) Discount() int {
	if p.OldPrice == nil || *p.OldPrice <= 0 || *p.OldPrice <= p.Price {
		return 0
	}
	d := (*p.OldPrice - p.Price) / *p.OldPrice * 100
	return int(d + 0.5)
}

// User is a fixed demo record served by the mock user endpoints.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}
