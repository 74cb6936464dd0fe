package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MasterName is a pre-approved item name used to constrain free-text entry.
type MasterName struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a sellable product variant identified by (name, color). Current
// stock is never stored on the item; it is derived from opening stock,
// stock logs and sale lines.
type Item struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Color        string          `json:"color"`
	OpeningStock int             `json:"opening_stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// StockLog is an append-only positive stock adjustment.
type StockLog struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Date      time.Time `json:"date"`
	QtyAdded  int       `json:"qty_added"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Customer struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone,omitempty"`
	Address    string          `json:"address,omitempty"`
	OpeningDue decimal.Decimal `json:"opening_due"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Sale is an invoice. Paid amount is not stored; it is derived from
// Payment rows at read time.
type Sale struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	WalkinPhone string          `json:"walkin_phone,omitempty"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	CgstPercent decimal.Decimal `json:"cgst_percent"`
	SgstPercent decimal.Decimal `json:"sgst_percent"`
	CgstAmount  decimal.Decimal `json:"cgst_amount"`
	SgstAmount  decimal.Decimal `json:"sgst_amount"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SaleItem carries the item's cost price as an immutable snapshot taken
// at confirmation time so historical COGS is stable.
type SaleItem struct {
	ID           int64           `json:"id"`
	SaleID       int64           `json:"sale_id"`
	ItemID       int64           `json:"item_id"`
	Qty          int             `json:"qty"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
}

// Payment is an append-only record of money received from a customer,
// optionally tied to a specific sale.
type Payment struct {
	ID         int64           `json:"id"`
	Date       time.Time       `json:"date"`
	CustomerID int64           `json:"customer_id"`
	SaleID     *int64          `json:"sale_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Purchase is a raw-material intake.
type Purchase struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Bags          decimal.Decimal `json:"bags"`
	KgPerBag      decimal.Decimal `json:"kg_per_bag"`
	TotalKg       decimal.Decimal `json:"total_kg"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VendorName    string          `json:"vendor_name,omitempty"`
	VendorContact string          `json:"vendor_contact,omitempty"`
	CgstAmount    decimal.Decimal `json:"cgst_amount"`
	SgstAmount    decimal.Decimal `json:"sgst_amount"`
	BillName      string          `json:"bill_name,omitempty"`
	BillData      []byte          `json:"bill_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	StaffWorkID *int64          `json:"staff_work_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StaffWorkBatch is a piece-work payroll event: raw material handed to a
// worker and the finished batches they returned.
type StaffWorkBatch struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	StaffName   string          `json:"staff_name"`
	KgProvided  decimal.Decimal `json:"kg_provided"`
	TotalSalary decimal.Decimal `json:"total_salary"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []StaffWorkItem `json:"items,omitempty"`
}

type StaffWorkItem struct {
	ID           int64           `json:"id"`
	WorkID       int64           `json:"work_id"`
	ItemID       *int64          `json:"item_id,omitempty"`
	ItemName     string          `json:"item_name"`
	GramsPerUnit decimal.Decimal `json:"grams_per_unit"`
	QtyProduced  int             `json:"qty_produced"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
}

// Settings is the single-row business profile.
type Settings struct {
	BusinessName      string          `json:"business_name"`
	Address           string          `json:"address"`
	ContactNumber     string          `json:"contact_number"`
	GSTNumber         string          `json:"gst_number"`
	CgstPercent       decimal.Decimal `json:"cgst_percent"`
	SgstPercent       decimal.Decimal `json:"sgst_percent"`
	ExpenseCategories []string        `json:"expense_categories"`
}

type VaultVisibility string

const (
	VaultPrivate VaultVisibility = "private"
	VaultShared  VaultVisibility = "shared"
)

// VaultEntry stores an encrypted credential. Password holds the
// secretbox ciphertext, never plaintext.
type VaultEntry struct {
	ID         int64           `json:"id"`
	Owner      string          `json:"owner"`
	Visibility VaultVisibility `json:"visibility"`
	Website    string          `json:"website"`
	LoginID    string          `json:"login_id"`
	Password   []byte          `json:"-"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// UserAccount is the persistence model for auth credentials.
type UserAccount struct {
	ID           int64
	Username     string
	Password     string
	Role         string
	Capabilities []Capability
	Active       bool
	CreatedAt    time.Time
}

type Actor struct {
	Username     string
	Role         string
	Capabilities []Capability
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
