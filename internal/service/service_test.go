package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
	"vsrthreads/backend/internal/store/memory"
	"vsrthreads/backend/internal/vault"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo := memory.NewSeeded()
	cipher, err := vault.NewCipher("unit-test-vault-secret")
	if err != nil {
		t.Fatalf("vault cipher: %v", err)
	}
	return New(repo, nil, cipher, 5*time.Second, 5)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func staffCtx(caps ...domain.Capability) context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "staff", Role: domain.RoleStaff, Capabilities: caps})
}

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func today() string {
	return time.Now().Format(domain.DateLayout)
}

func TestConfirmSaleCreditCustomer(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()
	customerID := int64(1)

	view, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		CustomerID: &customerID,
		Lines: []domain.CartLine{
			{ItemID: 1, Qty: 5, PricePerUnit: dec(t, "30.00")},
			{ItemID: 3, Qty: 2, PricePerUnit: dec(t, "60.00")},
		},
		PaidAmount: dec(t, "100.00"),
	})
	if err != nil {
		t.Fatalf("confirm sale: %v", err)
	}

	if got := view.Sale.GrandTotal.StringFixed(2); got != "270.00" {
		t.Fatalf("expected grand total 270.00, got %s", got)
	}
	if got := view.PaidAmount.StringFixed(2); got != "100.00" {
		t.Fatalf("expected paid 100.00, got %s", got)
	}
	if got := view.BalanceDue.StringFixed(2); got != "170.00" {
		t.Fatalf("expected balance 170.00, got %s", got)
	}

	// Line costs are snapshotted from the item at confirmation time.
	if got := view.Items[0].CostPerUnit.StringFixed(2); got != "18.50" {
		t.Fatalf("expected cost snapshot 18.50, got %s", got)
	}
	if got := view.Items[1].CostPerUnit.StringFixed(2); got != "42.00" {
		t.Fatalf("expected cost snapshot 42.00, got %s", got)
	}
}

func TestConfirmSaleInclusiveTaxSplit(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	settings, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	settings.CgstPercent = dec(t, "5")
	settings.SgstPercent = dec(t, "5")
	if _, err := svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	view, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		PaidAmount: dec(t, "100.00"),
		Lines: []domain.CartLine{
			{ItemID: 1, Qty: 4, PricePerUnit: dec(t, "25.00")},
		},
	})
	if err != nil {
		t.Fatalf("confirm sale: %v", err)
	}

	// 100 gross at 10% inclusive tax: 90.91 + 4.55 + 4.54 = 100.00.
	if got := view.Sale.SubTotal.StringFixed(2); got != "90.91" {
		t.Fatalf("expected sub total 90.91, got %s", got)
	}
	sum := view.Sale.SubTotal.Add(view.Sale.CgstAmount).Add(view.Sale.SgstAmount)
	if !sum.Equal(view.Sale.GrandTotal) {
		t.Fatalf("components %s do not reconstruct grand total %s", sum, view.Sale.GrandTotal)
	}
	if got := view.Sale.GrandTotal.StringFixed(2); got != "100.00" {
		t.Fatalf("expected grand total 100.00, got %s", got)
	}
}

func TestWalkinSaleMustBeFullyPaid(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	_, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		PaidAmount: dec(t, "10.00"),
		Lines: []domain.CartLine{
			{ItemID: 1, Qty: 2, PricePerUnit: dec(t, "30.00")},
		},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for underpaid walk-in, got %v", err)
	}

	view, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		PaidAmount: dec(t, "60.00"),
		Lines: []domain.CartLine{
			{ItemID: 1, Qty: 2, PricePerUnit: dec(t, "30.00")},
		},
	})
	if err != nil {
		t.Fatalf("confirm walk-in sale: %v", err)
	}
	if view.BalanceDue.Sign() != 0 {
		t.Fatalf("walk-in sale must show zero balance, got %s", view.BalanceDue)
	}

	// Walk-in cash never enters the dues ledger.
	payments, err := svc.ListPayments(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected no payment rows for walk-in sale, got %d", len(payments))
	}
}

func TestSaleReducesDerivedStock(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	before := itemStock(t, svc, ctx, 1)

	_, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		PaidAmount: dec(t, "90.00"),
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 3, PricePerUnit: dec(t, "30.00")}},
	})
	if err != nil {
		t.Fatalf("confirm sale: %v", err)
	}

	after := itemStock(t, svc, ctx, 1)
	if after != before-3 {
		t.Fatalf("expected stock %d after sale, got %d", before-3, after)
	}
}

func itemStock(t *testing.T, svc *Service, ctx context.Context, itemID int64) int {
	t.Helper()
	stock, err := svc.ListStock(ctx)
	if err != nil {
		t.Fatalf("list stock: %v", err)
	}
	for _, s := range stock {
		if s.Item.ID == itemID {
			return s.Stock
		}
	}
	t.Fatalf("item %d not found in stock listing", itemID)
	return 0
}

func TestRecordPaymentSettlesDue(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()
	customerID := int64(1)

	view, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		CustomerID: &customerID,
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 10, PricePerUnit: dec(t, "30.00")}},
	})
	if err != nil {
		t.Fatalf("confirm sale: %v", err)
	}

	// Seeded customer 1 carries an opening due of 350.
	due, err := svc.CustomerDue(ctx, customerID)
	if err != nil {
		t.Fatalf("customer due: %v", err)
	}
	if got := due.Due.StringFixed(2); got != "650.00" {
		t.Fatalf("expected due 650.00, got %s", got)
	}

	saleID := view.Sale.ID
	if _, err := svc.RecordPayment(ctx, domain.PaymentCreateRequest{
		Date:       today(),
		CustomerID: customerID,
		SaleID:     &saleID,
		Amount:     dec(t, "300.00"),
	}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	due, err = svc.CustomerDue(ctx, customerID)
	if err != nil {
		t.Fatalf("customer due: %v", err)
	}
	if got := due.Due.StringFixed(2); got != "350.00" {
		t.Fatalf("expected due 350.00 after payment, got %s", got)
	}

	settled, err := svc.SaleView(ctx, saleID)
	if err != nil {
		t.Fatalf("sale view: %v", err)
	}
	if got := settled.BalanceDue.StringFixed(2); got != "0.00" {
		t.Fatalf("expected settled sale, got balance %s", got)
	}
}

func TestRecordPaymentRejectsForeignSale(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()
	customerID := int64(1)

	view, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		CustomerID: &customerID,
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 1, PricePerUnit: dec(t, "30.00")}},
	})
	if err != nil {
		t.Fatalf("confirm sale: %v", err)
	}

	saleID := view.Sale.ID
	_, err = svc.RecordPayment(ctx, domain.PaymentCreateRequest{
		Date:       today(),
		CustomerID: 2,
		SaleID:     &saleID,
		Amount:     dec(t, "10.00"),
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for mismatched sale, got %v", err)
	}
}

func TestDeleteSaleRequiresAdmin(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.ConfirmSale(adminCtx(), domain.SaleCreateRequest{
		Date:       today(),
		PaidAmount: dec(t, "30.00"),
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 1, PricePerUnit: dec(t, "30.00")}},
	})
	if err != nil {
		t.Fatalf("confirm sale: %v", err)
	}

	if err := svc.DeleteSale(staffCtx(domain.CapSales), view.Sale.ID); err == nil {
		t.Fatalf("expected staff delete to be rejected")
	}
	if err := svc.DeleteSale(adminCtx(), view.Sale.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestAddStockCreatesItemOnFirstArrival(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	// "Silk Thread" is in the master list; "Green" is a new color.
	entry, err := svc.AddStock(ctx, domain.StockAddRequest{
		Name:      "silk thread",
		Color:     "Green",
		Qty:       25,
		CostPrice: dec(t, "44.00"),
		Date:      today(),
	})
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if entry.QtyAdded != 25 {
		t.Fatalf("expected qty 25, got %d", entry.QtyAdded)
	}

	stock, err := svc.ListStock(ctx)
	if err != nil {
		t.Fatalf("list stock: %v", err)
	}
	found := false
	for _, s := range stock {
		if s.Item.Name == "Silk Thread" && s.Item.Color == "Green" {
			found = true
			if s.Stock != 25 {
				t.Fatalf("expected derived stock 25, got %d", s.Stock)
			}
			if got := s.Item.CostPrice.StringFixed(2); got != "44.00" {
				t.Fatalf("expected cost 44.00, got %s", got)
			}
		}
	}
	if !found {
		t.Fatalf("expected new item to be created with canonical master name")
	}
}

func TestAddStockRejectsUnknownMasterName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddStock(adminCtx(), domain.StockAddRequest{
		Name:      "Wool Thread",
		Color:     "Grey",
		Qty:       10,
		CostPrice: dec(t, "20.00"),
		Date:      today(),
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown name, got %v", err)
	}
}

func TestStaffWorkSettlement(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	view, err := svc.CreateStaffWork(ctx, domain.StaffWorkCreateRequest{
		Date:       today(),
		StaffName:  "Meena",
		KgProvided: dec(t, "10"),
		Lines: []domain.StaffWorkLine{
			{ItemName: "Cotton Thread", GramsPerUnit: dec(t, "50"), QtyProduced: 100, Rate: dec(t, "1.50")},
			{ItemName: "Silk Thread", GramsPerUnit: dec(t, "40"), QtyProduced: 50, Rate: dec(t, "2.00")},
		},
	})
	if err != nil {
		t.Fatalf("create staff work: %v", err)
	}

	// 100*1.50 + 50*2.00 = 250; 100*50g + 50*40g = 7kg returned.
	if got := view.Batch.TotalSalary.StringFixed(2); got != "250.00" {
		t.Fatalf("expected salary 250.00, got %s", got)
	}
	if got := view.WeightReturnedKg.StringFixed(2); got != "7.00" {
		t.Fatalf("expected 7.00 kg returned, got %s", got)
	}

	// A Salary expense is written atomically with the batch.
	expenses, err := svc.ListExpenses(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	var linked *domain.Expense
	for i := range expenses {
		if expenses[i].StaffWorkID != nil && *expenses[i].StaffWorkID == view.Batch.ID {
			linked = &expenses[i]
		}
	}
	if linked == nil {
		t.Fatalf("expected a salary expense linked to the batch")
	}
	if linked.Category != "Salary" {
		t.Fatalf("expected Salary category, got %q", linked.Category)
	}
	if got := linked.Amount.StringFixed(2); got != "250.00" {
		t.Fatalf("expected expense amount 250.00, got %s", got)
	}

	// Deleting the batch removes the linked expense too.
	if err := svc.DeleteStaffWork(ctx, view.Batch.ID); err != nil {
		t.Fatalf("delete staff work: %v", err)
	}
	expenses, err = svc.ListExpenses(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	for _, e := range expenses {
		if e.StaffWorkID != nil && *e.StaffWorkID == view.Batch.ID {
			t.Fatalf("linked expense should be gone after batch delete")
		}
	}
}

func TestExpenseCategoryMustBeConfigured(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateExpense(adminCtx(), domain.ExpenseCreateRequest{
		Date:     today(),
		Category: "Entertainment",
		Amount:   dec(t, "500.00"),
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}

	expense, err := svc.CreateExpense(adminCtx(), domain.ExpenseCreateRequest{
		Date:     today(),
		Category: "rent",
		Amount:   dec(t, "5000.00"),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if expense.Category != "Rent" {
		t.Fatalf("expected canonical category Rent, got %q", expense.Category)
	}
}

func TestPurchaseDerivedTotals(t *testing.T) {
	svc := newTestService(t)

	purchase, err := svc.CreatePurchase(adminCtx(), domain.PurchaseCreateRequest{
		Date:       today(),
		Bags:       dec(t, "10"),
		KgPerBag:   dec(t, "25"),
		PricePerKg: dec(t, "180.00"),
		VendorName: "Madurai Mills",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if got := purchase.TotalKg.StringFixed(2); got != "250.00" {
		t.Fatalf("expected 250.00 kg, got %s", got)
	}
	if got := purchase.TotalAmount.StringFixed(2); got != "45000.00" {
		t.Fatalf("expected amount 45000.00, got %s", got)
	}
}

func TestProfitAndLossCustomerFilterDropsExpenses(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()
	customerID := int64(1)

	if _, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		CustomerID: &customerID,
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 4, PricePerUnit: dec(t, "30.00")}},
	}); err != nil {
		t.Fatalf("confirm sale: %v", err)
	}
	if _, err := svc.CreateExpense(ctx, domain.ExpenseCreateRequest{
		Date:     today(),
		Category: "Rent",
		Amount:   dec(t, "1000.00"),
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	full, err := svc.ProfitAndLoss(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("pnl: %v", err)
	}
	if !full.ExpensesApplicable {
		t.Fatalf("unfiltered statement must include expenses")
	}
	if got := full.Revenue.StringFixed(2); got != "120.00" {
		t.Fatalf("expected revenue 120.00, got %s", got)
	}
	// 4 units at cost 18.50.
	if got := full.COGS.StringFixed(2); got != "74.00" {
		t.Fatalf("expected cogs 74.00, got %s", got)
	}
	if got := full.NetProfit.StringFixed(2); got != "-954.00" {
		t.Fatalf("expected net -954.00, got %s", got)
	}

	filtered, err := svc.ProfitAndLoss(ctx, domain.ReportFilter{CustomerID: &customerID})
	if err != nil {
		t.Fatalf("filtered pnl: %v", err)
	}
	if filtered.ExpensesApplicable {
		t.Fatalf("customer-filtered statement must drop expenses")
	}
	if !filtered.NetProfit.Equal(filtered.GrossProfit) {
		t.Fatalf("customer view net must equal gross")
	}
}

func TestDashboardSummaryFigures(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		Date:       today(),
		Bags:       dec(t, "4"),
		KgPerBag:   dec(t, "25"),
		PricePerKg: dec(t, "100.00"),
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if _, err := svc.CreateStaffWork(ctx, domain.StaffWorkCreateRequest{
		Date:       today(),
		StaffName:  "Meena",
		KgProvided: dec(t, "30"),
		Lines: []domain.StaffWorkLine{
			{ItemName: "Cotton Thread", GramsPerUnit: dec(t, "50"), QtyProduced: 10, Rate: dec(t, "1.00")},
		},
	}); err != nil {
		t.Fatalf("create staff work: %v", err)
	}

	summary, err := svc.DashboardSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got := summary.PurchasedKg.StringFixed(2); got != "100.00" {
		t.Fatalf("expected purchased 100.00 kg, got %s", got)
	}
	if got := summary.StaffConsumedKg.StringFixed(2); got != "30.00" {
		t.Fatalf("expected consumed 30.00 kg, got %s", got)
	}
	if got := summary.RemainingKg.StringFixed(2); got != "70.00" {
		t.Fatalf("expected remaining 70.00 kg, got %s", got)
	}
	// Seeded Polyester Blue sits at 3, under the threshold of 5.
	if len(summary.LowStock) == 0 {
		t.Fatalf("expected low stock alerts from seed data")
	}
	// Seeded customer 1 has an opening due.
	if len(summary.DueCustomers) == 0 {
		t.Fatalf("expected due customers from seed data")
	}
}

func TestBackupExportDateFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()
	customerID := int64(1)

	old := time.Now().AddDate(0, -2, 0).Format(domain.DateLayout)
	if _, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       old,
		CustomerID: &customerID,
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 1, PricePerUnit: dec(t, "30.00")}},
		PaidAmount: dec(t, "30.00"),
	}); err != nil {
		t.Fatalf("old sale: %v", err)
	}
	recent, err := svc.ConfirmSale(ctx, domain.SaleCreateRequest{
		Date:       today(),
		CustomerID: &customerID,
		Lines:      []domain.CartLine{{ItemID: 1, Qty: 2, PricePerUnit: dec(t, "30.00")}},
	})
	if err != nil {
		t.Fatalf("recent sale: %v", err)
	}

	from := time.Now().AddDate(0, -1, 0)
	snap, err := svc.Export(ctx, domain.ReportFilter{From: &from})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if len(snap.Sales) != 1 || snap.Sales[0].ID != recent.Sale.ID {
		t.Fatalf("expected only the recent sale in the export, got %d sales", len(snap.Sales))
	}
	for _, it := range snap.SaleItems {
		if it.SaleID != recent.Sale.ID {
			t.Fatalf("orphaned sale item %d for sale %d in export", it.ID, it.SaleID)
		}
	}
	for _, p := range snap.Payments {
		if p.SaleID != nil && *p.SaleID != recent.Sale.ID {
			t.Fatalf("orphaned payment for sale %d in export", *p.SaleID)
		}
	}
	// Master data is always whole.
	if len(snap.Items) == 0 || len(snap.Customers) == 0 || len(snap.Users) == 0 {
		t.Fatalf("master tables must never be filtered out of an export")
	}
}

func TestRestoreRequiresActiveAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	snap, err := svc.Export(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	noAdmins := snap
	noAdmins.Users = []domain.UserAccount{{Username: "staff", Role: domain.RoleStaff, Active: true}}
	if err := svc.Restore(ctx, noAdmins); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected restore without admin to be rejected, got %v", err)
	}

	if err := svc.Restore(ctx, snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
}

func TestVaultVisibilityRules(t *testing.T) {
	svc := newTestService(t)
	adminView := adminCtx()
	staffView := WithActor(context.Background(), domain.Actor{
		Username: "staff", Role: domain.RoleStaff,
		Capabilities: []domain.Capability{domain.CapVault},
	})

	if _, err := svc.CreateVaultEntry(adminView, domain.VaultCreateRequest{
		Visibility: "private",
		Website:    "bank.example",
		LoginID:    "vsr-current",
		Password:   "admin-only-secret",
	}); err != nil {
		t.Fatalf("create private entry: %v", err)
	}
	if _, err := svc.CreateVaultEntry(adminView, domain.VaultCreateRequest{
		Visibility: "shared",
		Website:    "courier.example",
		LoginID:    "vsr-shipping",
		Password:   "shared-secret",
	}); err != nil {
		t.Fatalf("create shared entry: %v", err)
	}

	staffEntries, err := svc.ListVaultEntries(staffView)
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(staffEntries) != 1 || staffEntries[0].Website != "courier.example" {
		t.Fatalf("staff must only see shared entries, got %+v", staffEntries)
	}
	if staffEntries[0].Password != "shared-secret" {
		t.Fatalf("expected decrypted shared password for staff viewer")
	}

	adminEntries, err := svc.ListVaultEntries(adminView)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(adminEntries) != 2 {
		t.Fatalf("admin must see all entries, got %d", len(adminEntries))
	}

	// Staff cannot delete someone else's private entry.
	var privateID int64
	for _, e := range adminEntries {
		if e.Visibility == domain.VaultPrivate {
			privateID = e.ID
		}
	}
	if err := svc.DeleteVaultEntry(staffView, privateID); err == nil {
		t.Fatalf("expected staff delete of admin private entry to fail")
	}
	if err := svc.DeleteVaultEntry(adminView, privateID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

func TestUserLifecycleGuardsLastAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	if _, err := svc.CreateUser(ctx, domain.UserCreateRequest{
		Username:     "Clerk",
		Password:     "clerk-password",
		Role:         domain.RoleStaff,
		Capabilities: []string{"sales", "customers"},
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	actor, err := svc.Authenticate(context.Background(), "clerk", "clerk-password")
	if err != nil {
		t.Fatalf("authenticate new user: %v", err)
	}
	if !actor.Allows(domain.CapSales) || actor.Allows(domain.CapVault) {
		t.Fatalf("unexpected capabilities: %+v", actor.Capabilities)
	}

	// The seeded store has exactly one admin; demoting or deleting it
	// must be refused.
	staffRole := domain.RoleStaff
	if _, err := svc.UpdateUser(ctx, "admin", domain.UserUpdateRequest{Role: &staffRole}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected demoting the last admin to conflict, got %v", err)
	}
	if err := svc.DeleteUser(ctx, "admin"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected deleting the last admin to conflict, got %v", err)
	}

	// Disabled accounts cannot log in.
	inactive := false
	if _, err := svc.UpdateUser(ctx, "clerk", domain.UserUpdateRequest{Active: &inactive}); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "clerk", "clerk-password"); err == nil {
		t.Fatalf("expected disabled account to fail authentication")
	}
}

func TestCreateUserRejectsUnknownCapability(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateUser(adminCtx(), domain.UserCreateRequest{
		Username:     "weird",
		Password:     "password123",
		Role:         domain.RoleStaff,
		Capabilities: []string{"sales", "teleportation"},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected unknown capability to be rejected, got %v", err)
	}
}

func TestCustomerOpeningDueImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := adminCtx()

	created, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{
		Name:       "Fresh Buyer",
		OpeningDue: dec(t, "100.00"),
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	name := "Fresh Buyer Ltd"
	updated, err := svc.UpdateCustomer(ctx, created.ID, domain.CustomerUpdateRequest{Name: &name})
	if err != nil {
		t.Fatalf("update customer: %v", err)
	}
	if got := updated.OpeningDue.StringFixed(2); got != "100.00" {
		t.Fatalf("opening due must be immutable, got %s", got)
	}
}
