package variation

import (
	"testing"

	"github.com/rjpc/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tier(name string, opts ...string) Tier {
	t := Tier{Name: name}
	for _, o := range opts {
		t.AddOption(o)
	}
	return t
}

func labels(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func TestAddOption_SetSemantics(t *testing.T) {
	tr := Tier{Name: "Size"}
	assert.True(t, tr.AddOption(" Large "))
	assert.False(t, tr.AddOption("Large"))
	assert.False(t, tr.AddOption("   "))
	assert.True(t, tr.AddOption("Small"))
	assert.Equal(t, []string{"Large", "Small"}, tr.Options)

	tr.RemoveOption("Large")
	assert.Equal(t, []string{"Small"}, tr.Options)
}

func TestGenerate_EmptyTier1(t *testing.T) {
	rows := Generate(Tier{}, tier("Size", "S", "M"), 100, nil)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGenerate_SingleTier(t *testing.T) {
	rows := Generate(tier("Model", "Red", "Blue", "Green"), Tier{}, 350, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Red", "Blue", "Green"}, labels(rows))
	for _, r := range rows {
		assert.Nil(t, r.ID)
		assert.Equal(t, 350.0, r.Price)
		assert.Equal(t, 0, r.Stock)
	}
}

func TestGenerate_CartesianProduct(t *testing.T) {
	rows := Generate(tier("Model", "Red", "Blue"), tier("Size", "S", "M", "L"), 10, nil)

	require.Len(t, rows, 6)
	assert.Equal(t, []string{
		"Red, S", "Red, M", "Red, L",
		"Blue, S", "Blue, M", "Blue, L",
	}, labels(rows))

	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.Label], "duplicate label %q", r.Label)
		seen[r.Label] = true
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	t1, t2 := tier("Model", "Red", "Blue"), tier("Size", "S", "L")
	first := Generate(t1, t2, 99, nil)
	id := int64(7)
	first[1].ID = &id
	first[1].Price = 120
	first[1].Stock = 4

	second := Generate(t1, t2, 99, first)
	assert.Equal(t, first, second)

	third := Generate(t1, t2, 99, second)
	assert.Equal(t, second, third)
}

func TestGenerate_PreservesEditsAndDropsRemoved(t *testing.T) {
	id := int64(42)
	previous := []Row{
		{ID: &id, Label: "Red, Large", Price: 500, Stock: 12},
		{Label: "Blue, Large", Price: 300, Stock: 3},
	}

	rows := Generate(tier("Model", "Red"), tier("Size", "Large", "Small"), 250, previous)

	require.Len(t, rows, 2)
	assert.Equal(t, "Red, Large", rows[0].Label)
	require.NotNil(t, rows[0].ID)
	assert.Equal(t, int64(42), *rows[0].ID)
	assert.Equal(t, 500.0, rows[0].Price)
	assert.Equal(t, 12, rows[0].Stock)

	assert.Equal(t, "Red, Small", rows[1].Label)
	assert.Nil(t, rows[1].ID)
	assert.Equal(t, 250.0, rows[1].Price)

	for _, r := range rows {
		assert.NotContains(t, r.Label, "Blue")
	}
}

func TestGenerate_DoesNotAliasPreviousIDs(t *testing.T) {
	id := int64(1)
	previous := []Row{{ID: &id, Label: "Red", Price: 1, Stock: 1}}

	rows := Generate(tier("Model", "Red"), Tier{}, 0, previous)
	*rows[0].ID = 99

	assert.Equal(t, int64(1), id)
}

func TestSanitizeAndParse(t *testing.T) {
	rows := Sanitize([]Row{{Label: "A", Price: -5, Stock: -2}, {Label: "B", Price: 12.5, Stock: 3}})
	assert.Equal(t, 0.0, rows[0].Price)
	assert.Equal(t, 0, rows[0].Stock)
	assert.Equal(t, 12.5, rows[1].Price)
	assert.Equal(t, 3, rows[1].Stock)

	assert.Equal(t, 0.0, ParsePrice("abc"))
	assert.Equal(t, 0.0, ParsePrice("-3"))
	assert.Equal(t, 19.9, ParsePrice(" 19.9 "))
	assert.Equal(t, 0, ParseStock(""))
	assert.Equal(t, 0, ParseStock("-1"))
	assert.Equal(t, 8, ParseStock("8"))
	assert.Equal(t, 2, ParseStock("2.7"))
}

func TestTiersFromRows(t *testing.T) {
	rows := []Row{{Label: "Red, S"}, {Label: "Red, M"}, {Label: "Blue, S"}}
	t1, t2 := TiersFromRows(rows, "Model", "Size")

	assert.Equal(t, []string{"Red", "Blue"}, t1.Options)
	assert.Equal(t, []string{"S", "M"}, t2.Options)

	single, empty := TiersFromRows([]Row{{Label: "Carbon"}}, "Model", "Size")
	assert.Equal(t, []string{"Carbon"}, single.Options)
	assert.Empty(t, empty.Options)
}

func TestVariationConversion(t *testing.T) {
	vs := []models.Variation{{ID: 3, ProductID: 1, Label: "Red", Price: 10, Stock: 2}}
	rows := FromVariations(vs)
	require.NotNil(t, rows[0].ID)
	assert.Equal(t, int64(3), *rows[0].ID)

	rows = append(rows, Row{Label: " Blue ", Price: -1, Stock: 5})
	back := ToVariations(1, rows)
	require.Len(t, back, 2)
	assert.Equal(t, int64(3), back[0].ID)
	assert.Equal(t, int64(0), back[1].ID)
	assert.Equal(t, "Blue", back[1].Label)
	assert.Equal(t, 0.0, back[1].Price)
	assert.Equal(t, int64(1), back[1].ProductID)
}
