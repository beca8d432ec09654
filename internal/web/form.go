package web

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"cosmos-catalog/internal/catalog"
)

// Form holds raw form values, echoed back when validation fails.
type Form struct {
	ID          string
	Name        string
	Category    string
	Description string
	Price       string
	OldPrice    string
	Stock       string
	Rating      string
	Image       string
}

// Editing reports whether the form edits an existing record.
func (f Form) Editing() bool { return f.ID != "" }

func formFromValues(v url.Values) Form {
	return Form{
		ID:          strings.TrimSpace(v.Get("id")),
		Name:        v.Get("name"),
		Category:    v.Get("category"),
		Description: v.Get("description"),
		Price:       v.Get("price"),
		OldPrice:    v.Get("oldPrice"),
		Stock:       v.Get("stock"),
		Rating:      v.Get("rating"),
		Image:       v.Get("image"),
	}
}

func formFromProduct(p catalog.Product) Form {
	f := Form{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       formatNumber(p.Price),
		Stock:       strconv.Itoa(p.Stock),
		Rating:      formatNumber(p.Rating),
		Image:       p.Image,
	}
	if p.OldPrice != nil {
		f.OldPrice = formatNumber(*p.OldPrice)
	}
	return f
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseNumber follows Number(): blank is 0, anything unparsable is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks the form and converts it into a complete product input.
// The returned string is the message shown to the user on failure.
func (f Form) Validate() (catalog.ProductInput, string) {
	name := strings.TrimSpace(f.Name)
	category := strings.TrimSpace(f.Category)
	description := strings.TrimSpace(f.Description)
	image := strings.TrimSpace(f.Image)
	price := parseNumber(f.Price)
	stock := parseNumber(f.Stock)
	rating := 0.0
	if strings.TrimSpace(f.Rating) != "" {
		rating = parseNumber(f.Rating)
	}
	var oldPrice *float64
	if strings.TrimSpace(f.OldPrice) != "" {
		v := parseNumber(f.OldPrice)
		oldPrice = &v
	}

	switch {
	case name == "":
		return catalog.ProductInput{}, "Введите название товара"
	case category == "":
		return catalog.ProductInput{}, "Введите категорию"
	case description == "":
		return catalog.ProductInput{}, "Введите описание"
	case !finite(price) || price <= 0:
		return catalog.ProductInput{}, "Введите корректную цену"
	case oldPrice != nil && *oldPrice != 0 && (!finite(*oldPrice) || *oldPrice <= price):
		return catalog.ProductInput{}, "Старая цена должна быть больше новой цены"
	case !finite(stock) || stock != math.Trunc(stock) || stock < 0:
		return catalog.ProductInput{}, "Введите корректное количество на складе"
	case !finite(rating) || rating < 0 || rating > 5:
		return catalog.ProductInput{}, "Рейтинг должен быть от 0 до 5"
	}

	if oldPrice != nil && *oldPrice == 0 {
		oldPrice = nil
	}
	n := int(stock)
	return catalog.ProductInput{
		Name:        &name,
		Category:    &category,
		Description: &description,
		Price:       &price,
		OldPrice:    &catalog.OptionalPrice{Value: oldPrice},
		Stock:       &n,
		Rating:      &rating,
		Image:       &image,
	}, ""
}
