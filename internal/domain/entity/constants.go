package entity

// Bill status constants
const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

// Expense type constants offered by the new bill form
const (
	ExpenseTypeTransport     = "Transports"
	ExpenseTypeRestaurant    = "Restaurants et bars"
	ExpenseTypeAccommodation = "Hôtel et logement"
	ExpenseTypeOnline        = "Services en ligne"
	ExpenseTypeIT            = "IT et électronique"
	ExpenseTypeEquipment     = "Equipement et matériel"
	ExpenseTypeOffice        = "Fournitures de bureau"
)

// ExpenseTypes lists the expense categories in form order
var ExpenseTypes = []string{
	ExpenseTypeTransport,
	ExpenseTypeRestaurant,
	ExpenseTypeAccommodation,
	ExpenseTypeOnline,
	ExpenseTypeIT,
	ExpenseTypeEquipment,
	ExpenseTypeOffice,
}

// IsExpenseType returns true if t is one of the known expense categories
func IsExpenseType(t string) bool {
	for _, known := range ExpenseTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Route paths
const (
	PathLogin     = ""
	PathBills     = "#employee/bills"
	PathNewBill   = "#employee/bill/new"
	PathDashboard = "#admin/dashboard"
)

// DefaultPct is the VAT percentage used when the form value is unusable
const DefaultPct = 20

// SessionUserKey is the session entry holding the current user as JSON
const SessionUserKey = "user"
