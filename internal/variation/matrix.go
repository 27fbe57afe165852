// Package variation expands option tiers into the flat list of sellable
// variant rows edited in the inventory screen.
package variation

import (
	"math"
	"strconv"
	"strings"

	"github.com/rjpc/storefront/internal/models"
)

// Tier is a named axis of variation (e.g. Model, Size) with ordered, unique options.
type Tier struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// AddOption appends a trimmed option unless it is blank or already present.
func (t *Tier) AddOption(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, o := range t.Options {
		if o == value {
			return false
		}
	}
	t.Options = append(t.Options, value)
	return true
}

// RemoveOption drops an option, keeping the order of the rest.
func (t *Tier) RemoveOption(value string) {
	kept := t.Options[:0]
	for _, o := range t.Options {
		if o != value {
			kept = append(kept, o)
		}
	}
	t.Options = kept
}

// Row is one sellable combination of tier options.
type Row struct {
	ID    *int64  `json:"id"` // nil until persisted
	Label string  `json:"label"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Generate builds the variant rows for tier1 x tier2. Rows whose label already
// existed in previous keep their price, stock and id; new labels get basePrice
// and zero stock. Options removed from a tier drop their rows.
func Generate(tier1, tier2 Tier, basePrice float64, previous []Row) []Row {
	existing := make(map[string]Row, len(previous))
	for _, r := range previous {
		existing[strings.TrimSpace(r.Label)] = r
	}

	rows := []Row{}
	if len(tier1.Options) == 0 {
		return rows
	}

	build := func(label string) Row {
		if prev, ok := existing[label]; ok {
			return Row{ID: copyID(prev.ID), Label: label, Price: prev.Price, Stock: prev.Stock}
		}
		return Row{Label: label, Price: basePrice, Stock: 0}
	}

	if len(tier2.Options) == 0 {
		for _, opt := range tier1.Options {
			rows = append(rows, build(strings.TrimSpace(opt)))
		}
		return rows
	}

	for _, m := range tier1.Options {
		for _, s := range tier2.Options {
			rows = append(rows, build(strings.TrimSpace(m)+", "+strings.TrimSpace(s)))
		}
	}
	return rows
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Sanitize clamps price and stock to non-negative values before persistence.
func Sanitize(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if r.Price < 0 || math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
			r.Price = 0
		}
		if r.Stock < 0 {
			r.Stock = 0
		}
		out[i] = r
	}
	return out
}

// ParsePrice reads a form value; non-numeric input is zero, negatives clamp to zero.
func ParsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseStock reads a form value the same way as ParsePrice, truncating to an integer.
func ParseStock(s string) int {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		if v < 0 {
			return 0
		}
		return v
	}
	return int(ParsePrice(s))
}

// TiersFromRows rebuilds editor tiers from saved rows by splitting each label
// on its first comma.
func TiersFromRows(rows []Row, name1, name2 string) (Tier, Tier) {
	t1 := Tier{Name: name1, Options: []string{}}
	t2 := Tier{Name: name2, Options: []string{}}
	for _, r := range rows {
		first, second, found := strings.Cut(r.Label, ",")
		t1.AddOption(first)
		if found {
			t2.AddOption(second)
		}
	}
	return t1, t2
}

// FromVariations converts stored variations to editable rows.
func FromVariations(vs []models.Variation) []Row {
	rows := make([]Row, 0, len(vs))
	for _, v := range vs {
		r := Row{Label: v.Label, Price: v.Price, Stock: v.Stock}
		if v.ID != 0 {
			id := v.ID
			r.ID = &id
		}
		rows = append(rows, r)
	}
	return rows
}

// ToVariations converts rows back to the stored shape for a product.
// Rows without an id become variations with ID 0, which the store inserts.
func ToVariations(productID int64, rows []Row) []models.Variation {
	vs := make([]models.Variation, 0, len(rows))
	for _, r := range Sanitize(rows) {
		v := models.Variation{ProductID: productID, Label: strings.TrimSpace(r.Label), Price: r.Price, Stock: r.Stock}
		if r.ID != nil {
			v.ID = *r.ID
		}
		vs = append(vs, v)
	}
	return vs
}
