package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("invalid input")
)

// Repository is the persistence boundary. Implementations must make
// every multi-row write or delete a single atomic operation: a failure
// part-way through leaves the store untouched.
type Repository interface {
	ListMasterNames(ctx context.Context) ([]domain.MasterName, error)
	CreateMasterName(ctx context.Context, name string) (*domain.MasterName, error)
	DeleteMasterName(ctx context.Context, id int64) error

	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	FindItemByNameColor(ctx context.Context, name string, color string) (*domain.Item, error)
	CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id int64) error

	// AddStock appends a stock log and updates the item's cost price in
	// one operation.
	AddStock(ctx context.Context, log domain.StockLog, costPrice decimal.Decimal) (*domain.StockLog, error)
	ListStockLogs(ctx context.Context, filter domain.ReportFilter) ([]domain.StockLog, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, c domain.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error

	// CreateSale persists the sale, its line items and the optional
	// initial payment atomically.
	CreateSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem, payment *domain.Payment) (*domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, []domain.SaleItem, error)
	ListSales(ctx context.Context, filter domain.ReportFilter) ([]domain.Sale, error)
	ListSaleItems(ctx context.Context, saleIDs []int64) ([]domain.SaleItem, error)
	// DeleteSale removes the sale with its line items and payments
	// atomically.
	DeleteSale(ctx context.Context, id int64) error

	CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter domain.ReportFilter) ([]domain.Payment, error)

	CreatePurchase(ctx context.Context, p domain.Purchase) (*domain.Purchase, error)
	GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, filter domain.ReportFilter) ([]domain.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error

	CreateExpense(ctx context.Context, e domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ReportFilter) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error

	// CreateStaffWork persists the batch, its produced-item lines and the
	// back-linked salary expense atomically.
	CreateStaffWork(ctx context.Context, batch domain.StaffWorkBatch, expense domain.Expense) (*domain.StaffWorkBatch, error)
	GetStaffWork(ctx context.Context, id int64) (*domain.StaffWorkBatch, error)
	ListStaffWork(ctx context.Context, filter domain.ReportFilter) ([]domain.StaffWorkBatch, error)
	UpdateStaffWorkHeader(ctx context.Context, batch domain.StaffWorkBatch) error
	// DeleteStaffWork removes the batch, its items and the linked salary
	// expense atomically.
	DeleteStaffWork(ctx context.Context, id int64) error

	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, s domain.Settings) error

	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	UpdateUser(ctx context.Context, user domain.UserAccount) error
	DeleteUser(ctx context.Context, username string) error

	ListVaultEntries(ctx context.Context) ([]domain.VaultEntry, error)
	GetVaultEntry(ctx context.Context, id int64) (*domain.VaultEntry, error)
	CreateVaultEntry(ctx context.Context, e domain.VaultEntry) (*domain.VaultEntry, error)
	DeleteVaultEntry(ctx context.Context, id int64) error

	// Snapshot exports the whole store; Restore replaces the whole store
	// atomically.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Restore(ctx context.Context, snap domain.Snapshot) error
}
