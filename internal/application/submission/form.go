package submission

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/garyjia/billed/internal/application/draft"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Form holds the raw values of the new bill form fields
type Form struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
}

// Bill assembles the record submitted for email. upload may be nil when no
// receipt was uploaded.
func (f Form) Bill(email string, upload *draft.Upload) entity.Bill {
	bill := entity.Bill{
		Email:      email,
		Type:       f.Type,
		Name:       f.Name,
		Amount:     ParseInt(f.Amount),
		Date:       f.Date,
		VAT:        f.VAT,
		Pct:        entity.DefaultPct,
		Commentary: f.Commentary,
		Status:     entity.BillStatusPending,
	}
	if pct := ParseInt(f.Pct); pct != nil && *pct != 0 {
		bill.Pct = *pct
	}
	if upload != nil {
		fileURL, fileName := upload.FileURL, upload.FileName
		bill.FileURL = &fileURL
		bill.FileName = &fileName
	}
	return bill
}

// ParseInt reads the leading integer of s the way form inputs are coerced:
// leading whitespace is skipped, an optional sign and a 0x prefix are
// honoured, and parsing stops at the first invalid digit. It returns nil
// when no digit could be read or the value does not fit an int.
func ParseInt(s string) *int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return nil
	}

	n, err := strconv.ParseInt(s[:end], base, strconv.IntSize)
	if err != nil {
		return nil
	}
	if negative {
		n = -n
	}
	v := int(n)
	return &v
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}

// DisplayName returns the trailing segment of a file input value such as
// `C:\fakepath\receipt.png`
func DisplayName(inputValue string) string {
	if i := strings.LastIndexAny(inputValue, `\/`); i >= 0 {
		return inputValue[i+1:]
	}
	return inputValue
}
