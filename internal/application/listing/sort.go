package listing

import (
	"sort"

	"github.com/garyjia/billed/internal/domain/entity"
)

// SortByDateDesc returns a copy of bills ordered by date text, newest first.
// Dates are compared as plain strings, so ISO dates sort chronologically
// and equal dates keep their input order.
func SortByDateDesc(bills []entity.Bill) []entity.Bill {
	sorted := make([]entity.Bill, len(bills))
	copy(sorted, bills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}
