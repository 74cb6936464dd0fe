package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateMasterNameConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateMasterName(ctx, "Cotton Thread"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.CreateMasterName(ctx, "cotton thread")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate name error = %v, want ErrConflict", err)
	}
}

func TestCreateItemUniqueNameColor(t *testing.T) {
	s := New()
	ctx := context.Background()

	item := domain.Item{Name: "Silk Thread", Color: "Red", OpeningStock: 5}
	if _, err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateItem(ctx, item); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate item error = %v, want ErrConflict", err)
	}
	other := domain.Item{Name: "Silk Thread", Color: "Green"}
	if _, err := s.CreateItem(ctx, other); err != nil {
		t.Fatalf("same name different color should be allowed: %v", err)
	}
}

func TestAddStockUpdatesCostPrice(t *testing.T) {
	s := New()
	ctx := context.Background()

	item, err := s.CreateItem(ctx, domain.Item{Name: "A", Color: "B", CostPrice: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	_, err = s.AddStock(ctx, domain.StockLog{ItemID: item.ID, Date: day("2026-01-05"), QtyAdded: 7}, decimal.NewFromInt(12))
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}

	got, err := s.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if !got.CostPrice.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("cost price = %s, want 12", got.CostPrice)
	}

	logs, err := s.ListStockLogs(ctx, domain.ReportFilter{})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].QtyAdded != 7 {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}

func TestAddStockUnknownItem(t *testing.T) {
	s := New()
	_, err := s.AddStock(context.Background(), domain.StockLog{ItemID: 42, QtyAdded: 1}, decimal.Zero)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func newSaleFixture(t *testing.T) (*Store, *domain.Customer, *domain.Item) {
	t.Helper()
	s := New()
	ctx := context.Background()

	c, err := s.CreateCustomer(ctx, domain.Customer{Name: "Lakshmi Textiles", OpeningDue: decimal.Zero})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	it, err := s.CreateItem(ctx, domain.Item{Name: "Cotton", Color: "White", OpeningStock: 50, CostPrice: decimal.NewFromInt(20)})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return s, c, it
}

func TestCreateAndDeleteSaleCascade(t *testing.T) {
	s, c, it := newSaleFixture(t)
	ctx := context.Background()

	sale := domain.Sale{
		Date:       day("2026-02-01"),
		CustomerID: &c.ID,
		SubTotal:   decimal.NewFromInt(100),
		GrandTotal: decimal.NewFromInt(100),
	}
	items := []domain.SaleItem{{ItemID: it.ID, Qty: 2, PricePerUnit: decimal.NewFromInt(50), CostPerUnit: it.CostPrice}}
	payment := &domain.Payment{Date: sale.Date, CustomerID: c.ID, Amount: decimal.NewFromInt(40)}

	created, err := s.CreateSale(ctx, sale, items, payment)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	_, gotItems, err := s.GetSale(ctx, created.ID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if len(gotItems) != 1 {
		t.Fatalf("sale items = %d, want 1", len(gotItems))
	}
	payments, _ := s.ListPayments(ctx, domain.ReportFilter{})
	if len(payments) != 1 || payments[0].SaleID == nil || *payments[0].SaleID != created.ID {
		t.Fatalf("initial payment not linked to sale: %+v", payments)
	}

	if err := s.DeleteSale(ctx, created.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	if _, _, err := s.GetSale(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("sale still present after delete: %v", err)
	}
	leftItems, _ := s.ListSaleItems(ctx, nil)
	if len(leftItems) != 0 {
		t.Fatalf("orphaned sale items: %+v", leftItems)
	}
	leftPayments, _ := s.ListPayments(ctx, domain.ReportFilter{})
	if len(leftPayments) != 0 {
		t.Fatalf("orphaned payments: %+v", leftPayments)
	}
}

func TestCreateSaleUnknownItemLeavesNothing(t *testing.T) {
	s, c, _ := newSaleFixture(t)
	ctx := context.Background()

	sale := domain.Sale{Date: day("2026-02-01"), CustomerID: &c.ID, GrandTotal: decimal.NewFromInt(10)}
	items := []domain.SaleItem{{ItemID: 999, Qty: 1, PricePerUnit: decimal.NewFromInt(10)}}

	if _, err := s.CreateSale(ctx, sale, items, nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	sales, _ := s.ListSales(ctx, domain.ReportFilter{})
	if len(sales) != 0 {
		t.Fatalf("partial sale persisted: %+v", sales)
	}
}

func TestDeleteSaleNotFoundLeavesStoreIntact(t *testing.T) {
	s, c, it := newSaleFixture(t)
	ctx := context.Background()

	created, err := s.CreateSale(ctx, domain.Sale{Date: day("2026-02-01"), CustomerID: &c.ID, GrandTotal: decimal.NewFromInt(10)},
		[]domain.SaleItem{{ItemID: it.ID, Qty: 1, PricePerUnit: decimal.NewFromInt(10)}}, nil)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if err := s.DeleteSale(ctx, created.ID+100); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if _, _, err := s.GetSale(ctx, created.ID); err != nil {
		t.Fatalf("existing sale touched by failed delete: %v", err)
	}
}

func TestDeleteCustomerWithSalesRefused(t *testing.T) {
	s, c, it := newSaleFixture(t)
	ctx := context.Background()

	if _, err := s.CreateSale(ctx, domain.Sale{Date: day("2026-02-01"), CustomerID: &c.ID, GrandTotal: decimal.NewFromInt(10)},
		[]domain.SaleItem{{ItemID: it.ID, Qty: 1, PricePerUnit: decimal.NewFromInt(10)}}, nil); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if err := s.DeleteCustomer(ctx, c.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestStaffWorkCascadeDeletesLinkedExpense(t *testing.T) {
	s := New()
	ctx := context.Background()

	batch := domain.StaffWorkBatch{
		Date:        day("2026-03-01"),
		StaffName:   "Ravi",
		KgProvided:  decimal.NewFromInt(10),
		TotalSalary: decimal.NewFromInt(500),
		Items: []domain.StaffWorkItem{
			{ItemName: "Cotton Thread", GramsPerUnit: decimal.NewFromInt(50), QtyProduced: 100, Rate: decimal.NewFromInt(5), Amount: decimal.NewFromInt(500)},
		},
	}
	expense := domain.Expense{Date: batch.Date, Category: "Salary", Description: "Ravi", Amount: batch.TotalSalary}

	created, err := s.CreateStaffWork(ctx, batch, expense)
	if err != nil {
		t.Fatalf("create staff work: %v", err)
	}

	expenses, _ := s.ListExpenses(ctx, domain.ReportFilter{})
	if len(expenses) != 1 || expenses[0].StaffWorkID == nil || *expenses[0].StaffWorkID != created.ID {
		t.Fatalf("salary expense not back-linked: %+v", expenses)
	}

	if err := s.DeleteStaffWork(ctx, created.ID); err != nil {
		t.Fatalf("delete staff work: %v", err)
	}
	expenses, _ = s.ListExpenses(ctx, domain.ReportFilter{})
	if len(expenses) != 0 {
		t.Fatalf("orphaned salary expense: %+v", expenses)
	}
}

func TestStaffWorkHeaderUpdateKeepsItems(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateStaffWork(ctx, domain.StaffWorkBatch{
		Date: day("2026-03-01"), StaffName: "Ravi", KgProvided: decimal.NewFromInt(10),
		Items: []domain.StaffWorkItem{{ItemName: "X", QtyProduced: 1, Rate: decimal.NewFromInt(1), Amount: decimal.NewFromInt(1)}},
	}, domain.Expense{Date: day("2026-03-01"), Category: "Salary", Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	update := *created
	update.StaffName = "Raju"
	update.KgProvided = decimal.NewFromInt(12)
	if err := s.UpdateStaffWorkHeader(ctx, update); err != nil {
		t.Fatalf("update header: %v", err)
	}

	got, err := s.GetStaffWork(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StaffName != "Raju" || !got.KgProvided.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("header not updated: %+v", got)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items lost on header update: %+v", got.Items)
	}
}

func TestListSalesFilters(t *testing.T) {
	s, c, it := newSaleFixture(t)
	ctx := context.Background()

	for _, d := range []string{"2026-01-10", "2026-02-10", "2026-03-10"} {
		if _, err := s.CreateSale(ctx, domain.Sale{Date: day(d), CustomerID: &c.ID, GrandTotal: decimal.NewFromInt(10)},
			[]domain.SaleItem{{ItemID: it.ID, Qty: 1, PricePerUnit: decimal.NewFromInt(10)}}, nil); err != nil {
			t.Fatalf("create sale: %v", err)
		}
	}

	from := day("2026-02-01")
	to := day("2026-02-28")
	sales, err := s.ListSales(ctx, domain.ReportFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sales) != 1 || !sales[0].Date.Equal(day("2026-02-10")) {
		t.Fatalf("date filter returned %+v", sales)
	}

	other := int64(999)
	sales, _ = s.ListSales(ctx, domain.ReportFilter{CustomerID: &other})
	if len(sales) != 0 {
		t.Fatalf("customer filter returned %+v", sales)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s, c, it := newSaleFixture(t)
	ctx := context.Background()

	if _, err := s.CreateSale(ctx, domain.Sale{Date: day("2026-02-01"), CustomerID: &c.ID, GrandTotal: decimal.NewFromInt(100)},
		[]domain.SaleItem{{ItemID: it.ID, Qty: 2, PricePerUnit: decimal.NewFromInt(50)}},
		&domain.Payment{Date: day("2026-02-01"), CustomerID: c.ID, Amount: decimal.NewFromInt(30)}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	target := New()
	if err := target.Restore(ctx, *snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	sales, _ := target.ListSales(ctx, domain.ReportFilter{})
	if len(sales) != 1 {
		t.Fatalf("restored sales = %d, want 1", len(sales))
	}
	payments, _ := target.ListPayments(ctx, domain.ReportFilter{})
	if len(payments) != 1 {
		t.Fatalf("restored payments = %d, want 1", len(payments))
	}

	// New rows after a restore must not collide with restored IDs.
	created, err := target.CreateCustomer(ctx, domain.Customer{Name: "New Customer"})
	if err != nil {
		t.Fatalf("create after restore: %v", err)
	}
	if created.ID <= c.ID {
		t.Fatalf("id sequence not advanced past restored ids: got %d", created.ID)
	}
}

func TestRestoreIsDestructive(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	empty := New()
	snap, _ := empty.Snapshot(ctx)
	if err := s.Restore(ctx, *snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	items, _ := s.ListItems(ctx)
	if len(items) != 0 {
		t.Fatalf("seeded items survived destructive restore: %+v", items)
	}
}
