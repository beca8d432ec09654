package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

func price(v float64) *float64 { return &v }

// DefaultProducts returns the demo bodies served by a fresh API store. Ids are
// left empty so every store assigns its own.
func DefaultProducts() []Product {
	return []Product{
		{
			Name:        "Луна",
			Category:    "спутники",
			Description: "Не смотрите на то что запылилась, на луне есть титан, железо и алюминий",
			Price:       10000,
			Stock:       1,
			Rating:      4.0,
			Image:       "/images/moon.jpg",
		},
		{
			Name:        "Марс",
			Category:    "планеты",
			Description: "Содержит железо, алюминий, титан, серу и кремний, а также метан. Почти пригоден для жизни",
			Price:       5000,
			Stock:       1,
			Rating:      4.3,
			Image:       "/images/mars.jpg",
		},
		{
			Name:        "Солнце",
			Category:    "звезды",
			Description: "Способствует выработке витамина D, можно не платить за отопление",
			Price:       10000000,
			Stock:       1,
			Rating:      5.0,
			Image:       "/images/sun.jpg",
		},
		{
			Name:        "Энцелад",
			Category:    "спутники",
			Description: "Содержит колоссальные объемы воды, к сожалению - соленой",
			Price:       100,
			OldPrice:    price(10000),
			Stock:       1,
			Rating:      4.8,
			Image:       "/images/enceladus.jpg",
		},
		{
			Name:        "Уран",
			Category:    "планета",
			Description: "Содержит водород, гелий и метан. Ходят слухи что поверхность планеты покрыта алмазами",
			Price:       100000,
			Stock:       12,
			Rating:      4.6,
			Image:       "/images/uranus.png",
		},
	}
}

// LoadSeedFile reads a JSON array of products. Comments and trailing commas
// are allowed.
func LoadSeedFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var products []Product
	if err := json.Unmarshal(jsonc.ToJSON(data), &products); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return products, nil
}
