package shopping

import (
	"sort"
)

type (
	// LineItem is one recipe ingredient row as read from a cart.
	LineItem struct {
		RecipeID        uint64
		IngredientID    uint64
		Name            string
		MeasurementUnit string
		Amount          int64
	}

	// Entry is one row of the aggregated shopping list.
	Entry struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int64  `json:"amount"`
	}

	key struct {
		name string
		unit string
	}
)

// Aggregate groups line items by (name, measurement unit) and sums their amounts.
// Grouping uses the display key, so two ingredient rows that share a name and unit collapse
// into one entry. The result is ordered by name, then unit.
func Aggregate(items []LineItem) []Entry {
	index := make(map[key]int, len(items))
	entries := make([]Entry, 0, len(items))

	for _, item := range items {
		k := key{name: item.Name, unit: item.MeasurementUnit}
		if i, ok := index[k]; ok {
			entries[i].Amount += item.Amount
			continue
		}
		index[k] = len(entries)
		entries = append(entries, Entry{
			Name:            item.Name,
			MeasurementUnit: item.MeasurementUnit,
			Amount:          item.Amount,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].MeasurementUnit < entries[j].MeasurementUnit
	})
	return entries
}
