package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/draft"
	"github.com/garyjia/billed/internal/domain/entity"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"47", intPtr(47)},
		{"  12abc", intPtr(12)},
		{"-5", intPtr(-5)},
		{"+8", intPtr(8)},
		{"3.99", intPtr(3)},
		{"0x1A", intPtr(26)},
		{"", nil},
		{"abc", nil},
		{"-", nil},
		{"0x", nil},
		{"99999999999999999999999", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInt(tt.in))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "receipt.png", DisplayName(`C:\fakepath\receipt.png`))
	assert.Equal(t, "receipt.png", DisplayName("/home/me/receipt.png"))
	assert.Equal(t, "receipt.png", DisplayName("receipt.png"))
	assert.Equal(t, "", DisplayName(""))
}

func TestForm_Bill(t *testing.T) {
	form := Form{
		Type:       entity.ExpenseTypeRestaurant,
		Name:       "Lunch",
		Date:       "2004-04-04",
		Amount:     "47",
		VAT:        "20",
		Pct:        "",
		Commentary: "client meeting",
	}

	bill := form.Bill("a@a", &draft.Upload{FileURL: "http://x/y", FileName: "receipt.png", Key: "1a2b"})

	require.NotNil(t, bill.Amount)
	assert.Equal(t, 47, *bill.Amount)
	assert.Equal(t, 20, bill.Pct)
	assert.Equal(t, entity.BillStatusPending, bill.Status)
	assert.Equal(t, "client meeting", bill.Commentary)
	assert.True(t, bill.HasReceipt())

	noReceipt := form.Bill("a@a", nil)
	assert.False(t, noReceipt.HasReceipt())
	assert.Nil(t, noReceipt.FileName)
}

func intPtr(v int) *int {
	return &v
}
