package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_LengthAndAlphabet(t *testing.T) {
	gen := Random(6)
	re := regexp.MustCompile(`^[A-Za-z0-9_-]{6}$`)
	for i := 0; i < 200; i++ {
		id := gen.NewID()
		require.Regexp(t, re, id)
	}
}

func TestRandom_DefaultsLength(t *testing.T) {
	assert.Len(t, Random(0).NewID(), 6)
}

func TestTimeRandom_Distinct(t *testing.T) {
	gen := TimeRandom()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := gen.NewID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestUUID_Format(t *testing.T) {
	id := UUID().NewID()
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, id)
}

func TestFunc_Adapter(t *testing.T) {
	gen := Func(func() string { return "fixed" })
	assert.Equal(t, "fixed", gen.NewID())
}
