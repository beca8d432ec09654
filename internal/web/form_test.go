package web

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-catalog/internal/catalog"
)

func validForm() Form {
	return Form{
		Name:        "Марс",
		Category:    "планеты",
		Description: "Красная планета",
		Price:       "12000",
		Stock:       "3",
	}
}

func TestForm_ValidateMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		want   string
	}{
		{"blank name", func(f *Form) { f.Name = "   " }, "Введите название товара"},
		{"blank category", func(f *Form) { f.Category = "" }, "Введите категорию"},
		{"blank description", func(f *Form) { f.Description = "" }, "Введите описание"},
		{"zero price", func(f *Form) { f.Price = "0" }, "Введите корректную цену"},
		{"text price", func(f *Form) { f.Price = "дорого" }, "Введите корректную цену"},
		{"old price below price", func(f *Form) { f.OldPrice = "100" }, "Старая цена должна быть больше новой цены"},
		{"old price equal", func(f *Form) { f.OldPrice = "12000" }, "Старая цена должна быть больше новой цены"},
		{"negative stock", func(f *Form) { f.Stock = "-1" }, "Введите корректное количество на складе"},
		{"fractional stock", func(f *Form) { f.Stock = "1.5" }, "Введите корректное количество на складе"},
		{"rating too high", func(f *Form) { f.Rating = "6" }, "Рейтинг должен быть от 0 до 5"},
		{"rating negative", func(f *Form) { f.Rating = "-0.1" }, "Рейтинг должен быть от 0 до 5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			_, msg := f.Validate()
			assert.Equal(t, tc.want, msg)
		})
	}
}

func TestForm_ValidateBuildsInput(t *testing.T) {
	f := validForm()
	f.Name = "  Марс  "
	f.Stock = ""
	f.OldPrice = "0"
	f.Image = " /images/mars.jpg "

	in, msg := f.Validate()
	require.Empty(t, msg)
	assert.Equal(t, "Марс", *in.Name)
	assert.Equal(t, 12000.0, *in.Price)
	assert.Equal(t, 0, *in.Stock)
	assert.Equal(t, 0.0, *in.Rating)
	assert.Equal(t, "/images/mars.jpg", *in.Image)
	require.NotNil(t, in.OldPrice)
	assert.Nil(t, in.OldPrice.Value)
}

func TestForm_ValidateKeepsOldPrice(t *testing.T) {
	f := validForm()
	f.OldPrice = "15000"
	f.Rating = "4.5"

	in, msg := f.Validate()
	require.Empty(t, msg)
	require.NotNil(t, in.OldPrice.Value)
	assert.Equal(t, 15000.0, *in.OldPrice.Value)
	assert.Equal(t, 4.5, *in.Rating)
}

func TestFormFromProduct(t *testing.T) {
	old := 10000.0
	f := formFromProduct(catalog.Product{
		ID: "abc", Name: "Энцелад", Category: "спутники", Description: "лёд",
		Price: 8000, OldPrice: &old, Stock: 2, Rating: 4.7,
	})
	assert.True(t, f.Editing())
	assert.Equal(t, "8000", f.Price)
	assert.Equal(t, "10000", f.OldPrice)
	assert.Equal(t, "2", f.Stock)
	assert.Equal(t, "4.7", f.Rating)

	back := formFromValues(url.Values{
		"id": {"abc"}, "name": {"Энцелад"}, "category": {"спутники"}, "description": {"лёд"},
		"price": {"8000"}, "oldPrice": {"10000"}, "stock": {"2"}, "rating": {"4.7"},
	})
	assert.Equal(t, f, back)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "500 ₽", money(500))
	assert.Contains(t, money(15000), "₽")
}
