package listing

import (
	"fmt"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

var shortMonths = [...]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Jui", "Jui", "Aoû", "Sep", "Oct", "Nov", "Déc"}

// FormatDate renders an ISO date the way the bills table shows it,
// e.g. "2004-04-04" becomes "4 Avr. 04"
func FormatDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), shortMonths[t.Month()-1], t.Year()%100), nil
}

// FormatStatus returns the label of a review status
func FormatStatus(status entity.BillStatus) string {
	switch status {
	case entity.BillStatusPending:
		return "En attente"
	case entity.BillStatusAccepted:
		return "Accepté"
	case entity.BillStatusRefused:
		return "Refusé"
	default:
		return string(status)
	}
}
