package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProducts(t *testing.T) {
	products := DefaultProducts()
	require.Len(t, products, 5)
	for _, p := range products {
		_, err := Normalize(p)
		assert.NoError(t, err, p.Name)
	}
	assert.Equal(t, "Энцелад", products[3].Name)
	assert.Equal(t, 99, products[3].Discount())
}

func TestLoadSeedFile_AllowsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`[
	// demo record
	{"name": "Церера", "category": "карликовые планеты", "description": "пояс астероидов",
	 "price": 3000, "oldPrice": null, "stock": 4, "rating": 4.1, "image": ""},
]`), 0o644))

	products, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Церера", products[0].Name)
	assert.Nil(t, products[0].OldPrice)
	assert.Equal(t, 4, products[0].Stock)
}

func TestLoadSeedFile_Errors(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))
	_, err = LoadSeedFile(path)
	assert.Error(t, err)
}
