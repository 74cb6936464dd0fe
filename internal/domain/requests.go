package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dates cross the wire as "2006-01-02" strings and are parsed by the
// service layer.
const DateLayout = "2006-01-02"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
	ExpiresAt    string   `json:"expires_at"`
}

type MasterNameCreateRequest struct {
	Name string `json:"name"`
}

// StockAddRequest drives the add-stock flow: if an item with the given
// name and color exists, a stock log is appended and the item's cost
// price updated; otherwise the item is created first with opening stock
// zero.
type StockAddRequest struct {
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Qty       int             `json:"qty"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Date      string          `json:"date"`
	Notes     string          `json:"notes,omitempty"`
}

type ItemUpdateRequest struct {
	Name      *string          `json:"name,omitempty"`
	Color     *string          `json:"color,omitempty"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
}

// ItemStock pairs an item with its derived stock level.
type ItemStock struct {
	Item  Item `json:"item"`
	Stock int  `json:"stock"`
}

type CustomerCreateRequest struct {
	Name       string          `json:"name"`
	Phone      string          `json:"phone,omitempty"`
	Address    string          `json:"address,omitempty"`
	OpeningDue decimal.Decimal `json:"opening_due"`
}

type CustomerUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// CustomerDue pairs a customer with their derived outstanding balance.
type CustomerDue struct {
	Customer Customer        `json:"customer"`
	Due      decimal.Decimal `json:"due"`
}

// CartLine is one entry of the short-lived working set submitted at sale
// confirmation. It has no persistence of its own.
type CartLine struct {
	ItemID       int64           `json:"item_id"`
	Qty          int             `json:"qty"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

type SaleCreateRequest struct {
	Date        string          `json:"date"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	WalkinPhone string          `json:"walkin_phone,omitempty"`
	Lines       []CartLine      `json:"lines"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Notes       string          `json:"notes,omitempty"`
}

// SaleView is a sale with its line items and payment-derived balance.
type SaleView struct {
	Sale       Sale            `json:"sale"`
	Items      []SaleItem      `json:"items"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

type PaymentCreateRequest struct {
	Date       string          `json:"date"`
	CustomerID int64           `json:"customer_id"`
	SaleID     *int64          `json:"sale_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

type PurchaseCreateRequest struct {
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Bags          decimal.Decimal `json:"bags"`
	KgPerBag      decimal.Decimal `json:"kg_per_bag"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	VendorName    string          `json:"vendor_name,omitempty"`
	VendorContact string          `json:"vendor_contact,omitempty"`
	CgstAmount    decimal.Decimal `json:"cgst_amount"`
	SgstAmount    decimal.Decimal `json:"sgst_amount"`
	BillName      string          `json:"bill_name,omitempty"`
	BillData      []byte          `json:"bill_data,omitempty"`
}

type ExpenseCreateRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

type StaffWorkLine struct {
	ItemID       *int64          `json:"item_id,omitempty"`
	ItemName     string          `json:"item_name"`
	GramsPerUnit decimal.Decimal `json:"grams_per_unit"`
	QtyProduced  int             `json:"qty_produced"`
	Rate         decimal.Decimal `json:"rate"`
}

type StaffWorkCreateRequest struct {
	Date       string          `json:"date"`
	StaffName  string          `json:"staff_name"`
	KgProvided decimal.Decimal `json:"kg_provided"`
	Notes      string          `json:"notes,omitempty"`
	Lines      []StaffWorkLine `json:"lines"`
}

type StaffWorkUpdateRequest struct {
	Date       *string          `json:"date,omitempty"`
	StaffName  *string          `json:"staff_name,omitempty"`
	KgProvided *decimal.Decimal `json:"kg_provided,omitempty"`
}

// StaffWorkView adds the weight derived from produced quantities.
type StaffWorkView struct {
	Batch            StaffWorkBatch  `json:"batch"`
	WeightReturnedKg decimal.Decimal `json:"weight_returned_kg"`
}

// ReportFilter narrows report queries. A nil bound leaves that side
// open; a customer filter restricts sales-derived figures to that
// customer and marks customer-unattributable aggregates not applicable.
type ReportFilter struct {
	From       *time.Time
	To         *time.Time
	CustomerID *int64
}

type PnLStatement struct {
	From               string                     `json:"from,omitempty"`
	To                 string                     `json:"to,omitempty"`
	Revenue            decimal.Decimal            `json:"revenue"`
	COGS               decimal.Decimal            `json:"cogs"`
	GrossProfit        decimal.Decimal            `json:"gross_profit"`
	ExpenseByCategory  map[string]decimal.Decimal `json:"expense_by_category,omitempty"`
	TotalExpense       decimal.Decimal            `json:"total_expense"`
	NetProfit          decimal.Decimal            `json:"net_profit"`
	ExpensesApplicable bool                       `json:"expenses_applicable"`
}

type DashboardSummary struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalReceived     decimal.Decimal `json:"total_received"`
	PendingDues       decimal.Decimal `json:"pending_dues"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	PurchasedKg       decimal.Decimal `json:"purchased_kg"`
	StaffConsumedKg   decimal.Decimal `json:"staff_consumed_kg"`
	RemainingKg       decimal.Decimal `json:"remaining_kg"`
	StockQty          int             `json:"stock_qty"`
	StockValue        decimal.Decimal `json:"stock_value"`
	SalesToday        decimal.Decimal `json:"sales_today"`
	SalesYesterday    decimal.Decimal `json:"sales_yesterday"`
	LowStock          []ItemStock     `json:"low_stock"`
	DueCustomers      []CustomerDue   `json:"due_customers"`
	GeneratedAt       string          `json:"generated_at"`
}

type UserCreateRequest struct {
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

type UserUpdateRequest struct {
	Password     *string   `json:"password,omitempty"`
	Role         *string   `json:"role,omitempty"`
	Capabilities *[]string `json:"capabilities,omitempty"`
	Active       *bool     `json:"active,omitempty"`
}

type UserView struct {
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Capabilities []string  `json:"capabilities"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type VaultCreateRequest struct {
	Visibility string `json:"visibility"`
	Website    string `json:"website"`
	LoginID    string `json:"login_id"`
	Password   string `json:"password"`
}

// VaultEntryView is a vault entry with the password decrypted for an
// authorized viewer.
type VaultEntryView struct {
	ID         int64           `json:"id"`
	Owner      string          `json:"owner"`
	Visibility VaultVisibility `json:"visibility"`
	Website    string          `json:"website"`
	LoginID    string          `json:"login_id"`
	Password   string          `json:"password"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type StickerRequest struct {
	Thickness string `json:"thickness"`
	Title     string `json:"title"`
	Contact   string `json:"contact"`
	Sheets    int    `json:"sheets"`
}

// Snapshot is the whole-store backup payload. Transactional tables may
// be date-filtered at export time; master tables never are.
type Snapshot struct {
	ExportedAt  time.Time        `json:"exported_at"`
	From        string           `json:"from,omitempty"`
	To          string           `json:"to,omitempty"`
	MasterNames []MasterName     `json:"master_names"`
	Items       []Item           `json:"items"`
	StockLogs   []StockLog       `json:"stock_logs"`
	Customers   []Customer       `json:"customers"`
	Sales       []Sale           `json:"sales"`
	SaleItems   []SaleItem       `json:"sale_items"`
	Payments    []Payment        `json:"payments"`
	Purchases   []Purchase       `json:"purchases"`
	Expenses    []Expense        `json:"expenses"`
	StaffWork   []StaffWorkBatch `json:"staff_work"`
	Settings    Settings         `json:"settings"`
	Users       []UserAccount    `json:"users"`
	Vault       []VaultEntry     `json:"vault"`
}
