package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

// Store is the in-memory repository used for development and tests.
// Every method takes the mutex for its whole duration, so multi-row
// writes are atomic by construction.
type Store struct {
	mu sync.RWMutex

	masterNames map[int64]domain.MasterName
	items       map[int64]domain.Item
	stockLogs   map[int64]domain.StockLog
	customers   map[int64]domain.Customer
	sales       map[int64]domain.Sale
	saleItems   map[int64]domain.SaleItem
	payments    map[int64]domain.Payment
	purchases   map[int64]domain.Purchase
	expenses    map[int64]domain.Expense
	staffWork   map[int64]domain.StaffWorkBatch
	vault       map[int64]domain.VaultEntry
	users       map[string]domain.UserAccount
	settings    domain.Settings

	seq map[string]int64
}

func New() *Store {
	return &Store{
		masterNames: make(map[int64]domain.MasterName),
		items:       make(map[int64]domain.Item),
		stockLogs:   make(map[int64]domain.StockLog),
		customers:   make(map[int64]domain.Customer),
		sales:       make(map[int64]domain.Sale),
		saleItems:   make(map[int64]domain.SaleItem),
		payments:    make(map[int64]domain.Payment),
		purchases:   make(map[int64]domain.Purchase),
		expenses:    make(map[int64]domain.Expense),
		staffWork:   make(map[int64]domain.StaffWorkBatch),
		vault:       make(map[int64]domain.VaultEntry),
		users:       make(map[string]domain.UserAccount),
		settings:    defaultSettings(),
		seq:         make(map[string]int64),
	}
}

func defaultSettings() domain.Settings {
	return domain.Settings{
		BusinessName:  "VSR Threads",
		CgstPercent:   decimal.Zero,
		SgstPercent:   decimal.Zero,
		ExpenseCategories: []string{
			"Salary", "Rent", "Electricity", "Transport", "Raw Material", "Other",
		},
	}
}

// seedUsers builds the initial accounts for dev/demo mode. Credentials
// come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD, with warned-about
// dev defaults when unset. Never used in production (the backend uses
// PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for i, u := range []struct {
		username string
		password string
		role     string
		caps     []domain.Capability
	}{
		{"admin", adminPwd, domain.RoleAdmin, nil},
		{"staff", staffPwd, domain.RoleStaff, []domain.Capability{
			domain.CapDashboard, domain.CapInventory, domain.CapSales, domain.CapCustomers,
		}},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			ID:           int64(i + 1),
			Username:     u.username,
			Password:     string(hash),
			Role:         u.role,
			Capabilities: u.caps,
			Active:       true,
			CreatedAt:    now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	s := New()
	s.users = seedUsers()
	s.seq["users"] = int64(len(s.users))

	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour)

	for _, name := range []string{"Cotton Thread", "Silk Thread", "Polyester Thread"} {
		id := s.next("master_names")
		s.masterNames[id] = domain.MasterName{ID: id, Name: name, CreatedAt: now}
	}

	items := []domain.Item{
		{Name: "Cotton Thread", Color: "White", OpeningStock: 120, CostPrice: dec("18.50")},
		{Name: "Cotton Thread", Color: "Black", OpeningStock: 80, CostPrice: dec("18.50")},
		{Name: "Silk Thread", Color: "Red", OpeningStock: 40, CostPrice: dec("42.00")},
		{Name: "Polyester Thread", Color: "Blue", OpeningStock: 3, CostPrice: dec("12.75")},
	}
	for _, it := range items {
		it.ID = s.next("items")
		it.CreatedAt = now
		s.items[it.ID] = it
	}

	customers := []domain.Customer{
		{Name: "Lakshmi Textiles", Phone: "9876500011", OpeningDue: dec("350.00")},
		{Name: "Sri Garments", Phone: "9876500022", OpeningDue: decimal.Zero},
	}
	for _, c := range customers {
		c.ID = s.next("customers")
		c.CreatedAt = now
		s.customers[c.ID] = c
	}

	logID := s.next("stock_logs")
	s.stockLogs[logID] = domain.StockLog{
		ID: logID, ItemID: 1, Date: day, QtyAdded: 30, Notes: "restock", CreatedAt: now,
	}

	return s
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func inRange(date time.Time, filter domain.ReportFilter) bool {
	if filter.From != nil && date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && date.After(*filter.To) {
		return false
	}
	return true
}

// ---- master names ----

func (s *Store) ListMasterNames(_ context.Context) ([]domain.MasterName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MasterName, 0, len(s.masterNames))
	for _, m := range s.masterNames {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b domain.MasterName) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) CreateMasterName(_ context.Context, name string) (*domain.MasterName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.masterNames {
		if strings.EqualFold(m.Name, name) {
			return nil, fmt.Errorf("master name %q: %w", name, store.ErrConflict)
		}
	}
	m := domain.MasterName{ID: s.next("master_names"), Name: name, CreatedAt: time.Now().UTC()}
	s.masterNames[m.ID] = m
	return &m, nil
}

func (s *Store) DeleteMasterName(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.masterNames[id]; !ok {
		return fmt.Errorf("master name %d: %w", id, store.ErrNotFound)
	}
	delete(s.masterNames, id)
	return nil
}

// ---- items ----

func (s *Store) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b domain.Item) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Color, b.Color)
	})
	return out, nil
}

func (s *Store) GetItem(_ context.Context, id int64) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, store.ErrNotFound)
	}
	return &it, nil
}

func (s *Store) FindItemByNameColor(_ context.Context, name string, color string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if strings.EqualFold(it.Name, name) && strings.EqualFold(it.Color, color) {
			found := it
			return &found, nil
		}
	}
	return nil, fmt.Errorf("item %s/%s: %w", name, color, store.ErrNotFound)
}

func (s *Store) CreateItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if strings.EqualFold(it.Name, item.Name) && strings.EqualFold(it.Color, item.Color) {
			return nil, fmt.Errorf("item %s/%s: %w", item.Name, item.Color, store.ErrConflict)
		}
	}
	item.ID = s.next("items")
	item.CreatedAt = time.Now().UTC()
	s.items[item.ID] = item
	return &item, nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("item %d: %w", item.ID, store.ErrNotFound)
	}
	for _, it := range s.items {
		if it.ID != item.ID && strings.EqualFold(it.Name, item.Name) && strings.EqualFold(it.Color, item.Color) {
			return fmt.Errorf("item %s/%s: %w", item.Name, item.Color, store.ErrConflict)
		}
	}
	item.CreatedAt = existing.CreatedAt
	s.items[item.ID] = item
	return nil
}

func (s *Store) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("item %d: %w", id, store.ErrNotFound)
	}
	delete(s.items, id)
	for logID, l := range s.stockLogs {
		if l.ItemID == id {
			delete(s.stockLogs, logID)
		}
	}
	return nil
}

func (s *Store) AddStock(_ context.Context, logEntry domain.StockLog, costPrice decimal.Decimal) (*domain.StockLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[logEntry.ItemID]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", logEntry.ItemID, store.ErrNotFound)
	}
	logEntry.ID = s.next("stock_logs")
	logEntry.CreatedAt = time.Now().UTC()
	s.stockLogs[logEntry.ID] = logEntry

	item.CostPrice = costPrice
	s.items[item.ID] = item
	return &logEntry, nil
}

func (s *Store) ListStockLogs(_ context.Context, filter domain.ReportFilter) ([]domain.StockLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StockLog, 0, len(s.stockLogs))
	for _, l := range s.stockLogs {
		if inRange(l.Date, filter) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b domain.StockLog) int { return int(a.ID - b.ID) })
	return out, nil
}

// ---- customers ----

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Customer) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) CreateCustomer(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if strings.EqualFold(existing.Name, c.Name) {
			return nil, fmt.Errorf("customer %q: %w", c.Name, store.ErrConflict)
		}
	}
	c.ID = s.next("customers")
	c.CreatedAt = time.Now().UTC()
	s.customers[c.ID] = c
	return &c, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[c.ID]
	if !ok {
		return fmt.Errorf("customer %d: %w", c.ID, store.ErrNotFound)
	}
	c.OpeningDue = existing.OpeningDue
	c.CreatedAt = existing.CreatedAt
	s.customers[c.ID] = c
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
	}
	for _, sale := range s.sales {
		if sale.CustomerID != nil && *sale.CustomerID == id {
			return fmt.Errorf("customer %d has sales: %w", id, store.ErrConflict)
		}
	}
	for _, p := range s.payments {
		if p.CustomerID == id {
			return fmt.Errorf("customer %d has payments: %w", id, store.ErrConflict)
		}
	}
	delete(s.customers, id)
	return nil
}

// ---- sales ----

func (s *Store) CreateSale(_ context.Context, sale domain.Sale, items []domain.SaleItem, payment *domain.Payment) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.CustomerID != nil {
		if _, ok := s.customers[*sale.CustomerID]; !ok {
			return nil, fmt.Errorf("customer %d: %w", *sale.CustomerID, store.ErrNotFound)
		}
	}
	for _, li := range items {
		if _, ok := s.items[li.ItemID]; !ok {
			return nil, fmt.Errorf("item %d: %w", li.ItemID, store.ErrNotFound)
		}
	}

	sale.ID = s.next("sales")
	sale.CreatedAt = time.Now().UTC()
	s.sales[sale.ID] = sale

	for _, li := range items {
		li.ID = s.next("sale_items")
		li.SaleID = sale.ID
		s.saleItems[li.ID] = li
	}

	if payment != nil {
		p := *payment
		p.ID = s.next("payments")
		p.SaleID = &sale.ID
		p.CreatedAt = sale.CreatedAt
		s.payments[p.ID] = p
	}
	return &sale, nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, []domain.SaleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, nil, fmt.Errorf("sale %d: %w", id, store.ErrNotFound)
	}
	items := make([]domain.SaleItem, 0)
	for _, li := range s.saleItems {
		if li.SaleID == id {
			items = append(items, li)
		}
	}
	slices.SortFunc(items, func(a, b domain.SaleItem) int { return int(a.ID - b.ID) })
	return &sale, items, nil
}

func (s *Store) ListSales(_ context.Context, filter domain.ReportFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if !inRange(sale.Date, filter) {
			continue
		}
		if filter.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *filter.CustomerID) {
			continue
		}
		out = append(out, sale)
	}
	slices.SortFunc(out, func(a, b domain.Sale) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *Store) ListSaleItems(_ context.Context, saleIDs []int64) ([]domain.SaleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wanted map[int64]bool
	if saleIDs != nil {
		wanted = make(map[int64]bool, len(saleIDs))
		for _, id := range saleIDs {
			wanted[id] = true
		}
	}
	out := make([]domain.SaleItem, 0)
	for _, li := range s.saleItems {
		if wanted == nil || wanted[li.SaleID] {
			out = append(out, li)
		}
	}
	slices.SortFunc(out, func(a, b domain.SaleItem) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *Store) DeleteSale(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[id]; !ok {
		return fmt.Errorf("sale %d: %w", id, store.ErrNotFound)
	}
	delete(s.sales, id)
	for liID, li := range s.saleItems {
		if li.SaleID == id {
			delete(s.saleItems, liID)
		}
	}
	for pID, p := range s.payments {
		if p.SaleID != nil && *p.SaleID == id {
			delete(s.payments, pID)
		}
	}
	return nil
}

// ---- payments ----

func (s *Store) CreatePayment(_ context.Context, p domain.Payment) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[p.CustomerID]; !ok {
		return nil, fmt.Errorf("customer %d: %w", p.CustomerID, store.ErrNotFound)
	}
	if p.SaleID != nil {
		if _, ok := s.sales[*p.SaleID]; !ok {
			return nil, fmt.Errorf("sale %d: %w", *p.SaleID, store.ErrNotFound)
		}
	}
	p.ID = s.next("payments")
	p.CreatedAt = time.Now().UTC()
	s.payments[p.ID] = p
	return &p, nil
}

func (s *Store) ListPayments(_ context.Context, filter domain.ReportFilter) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if !inRange(p.Date, filter) {
			continue
		}
		if filter.CustomerID != nil && p.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Payment) int { return int(a.ID - b.ID) })
	return out, nil
}

// ---- purchases ----

func (s *Store) CreatePurchase(_ context.Context, p domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.next("purchases")
	p.CreatedAt = time.Now().UTC()
	s.purchases[p.ID] = p
	return &p, nil
}

func (s *Store) GetPurchase(_ context.Context, id int64) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return nil, fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) ListPurchases(_ context.Context, filter domain.ReportFilter) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if inRange(p.Date, filter) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Purchase) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *Store) DeletePurchase(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[id]; !ok {
		return fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
	}
	delete(s.purchases, id)
	return nil
}

// ---- expenses ----

func (s *Store) CreateExpense(_ context.Context, e domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.next("expenses")
	e.CreatedAt = time.Now().UTC()
	s.expenses[e.ID] = e
	return &e, nil
}

func (s *Store) ListExpenses(_ context.Context, filter domain.ReportFilter) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if inRange(e.Date, filter) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.Expense) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}

// ---- staff work ----

func (s *Store) CreateStaffWork(_ context.Context, batch domain.StaffWorkBatch, expense domain.Expense) (*domain.StaffWorkBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range batch.Items {
		if line.ItemID != nil {
			if _, ok := s.items[*line.ItemID]; !ok {
				return nil, fmt.Errorf("item %d: %w", *line.ItemID, store.ErrNotFound)
			}
		}
	}

	batch.ID = s.next("staff_work")
	batch.CreatedAt = time.Now().UTC()
	for i := range batch.Items {
		batch.Items[i].ID = s.next("staff_work_items")
		batch.Items[i].WorkID = batch.ID
	}
	s.staffWork[batch.ID] = batch

	expense.ID = s.next("expenses")
	expense.StaffWorkID = &batch.ID
	expense.CreatedAt = batch.CreatedAt
	s.expenses[expense.ID] = expense

	return &batch, nil
}

func (s *Store) GetStaffWork(_ context.Context, id int64) (*domain.StaffWorkBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.staffWork[id]
	if !ok {
		return nil, fmt.Errorf("staff work %d: %w", id, store.ErrNotFound)
	}
	return &b, nil
}

func (s *Store) ListStaffWork(_ context.Context, filter domain.ReportFilter) ([]domain.StaffWorkBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StaffWorkBatch, 0, len(s.staffWork))
	for _, b := range s.staffWork {
		if inRange(b.Date, filter) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.StaffWorkBatch) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *Store) UpdateStaffWorkHeader(_ context.Context, batch domain.StaffWorkBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.staffWork[batch.ID]
	if !ok {
		return fmt.Errorf("staff work %d: %w", batch.ID, store.ErrNotFound)
	}
	existing.Date = batch.Date
	existing.StaffName = batch.StaffName
	existing.KgProvided = batch.KgProvided
	s.staffWork[batch.ID] = existing
	return nil
}

func (s *Store) DeleteStaffWork(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staffWork[id]; !ok {
		return fmt.Errorf("staff work %d: %w", id, store.ErrNotFound)
	}
	delete(s.staffWork, id)
	for eID, e := range s.expenses {
		if e.StaffWorkID != nil && *e.StaffWorkID == id {
			delete(s.expenses, eID)
		}
	}
	return nil
}

// ---- settings ----

func (s *Store) GetSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.settings
	settings.ExpenseCategories = slices.Clone(s.settings.ExpenseCategories)
	return &settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.ExpenseCategories = slices.Clone(settings.ExpenseCategories)
	s.settings = settings
	return nil
}

// ---- users ----

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, store.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("user %s: %w", user.Username, store.ErrConflict)
	}
	user.ID = s.next("users")
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.Username] = user
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.Username]
	if !ok {
		return fmt.Errorf("user %s: %w", user.Username, store.ErrNotFound)
	}
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	s.users[user.Username] = user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return fmt.Errorf("user %s: %w", username, store.ErrNotFound)
	}
	delete(s.users, username)
	return nil
}

// ---- vault ----

func (s *Store) ListVaultEntries(_ context.Context) ([]domain.VaultEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.VaultEntry, 0, len(s.vault))
	for _, e := range s.vault {
		e.Password = slices.Clone(e.Password)
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.VaultEntry) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *Store) GetVaultEntry(_ context.Context, id int64) (*domain.VaultEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.vault[id]
	if !ok {
		return nil, fmt.Errorf("vault entry %d: %w", id, store.ErrNotFound)
	}
	e.Password = slices.Clone(e.Password)
	return &e, nil
}

func (s *Store) CreateVaultEntry(_ context.Context, e domain.VaultEntry) (*domain.VaultEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.next("vault")
	e.UpdatedAt = time.Now().UTC()
	e.Password = slices.Clone(e.Password)
	s.vault[e.ID] = e
	return &e, nil
}

func (s *Store) DeleteVaultEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vault[id]; !ok {
		return fmt.Errorf("vault entry %d: %w", id, store.ErrNotFound)
	}
	delete(s.vault, id)
	return nil
}

// ---- backup ----

func (s *Store) Snapshot(_ context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{ExportedAt: time.Now().UTC(), Settings: s.settings}
	snap.Settings.ExpenseCategories = slices.Clone(s.settings.ExpenseCategories)

	for _, m := range s.masterNames {
		snap.MasterNames = append(snap.MasterNames, m)
	}
	for _, it := range s.items {
		snap.Items = append(snap.Items, it)
	}
	for _, l := range s.stockLogs {
		snap.StockLogs = append(snap.StockLogs, l)
	}
	for _, c := range s.customers {
		snap.Customers = append(snap.Customers, c)
	}
	for _, sale := range s.sales {
		snap.Sales = append(snap.Sales, sale)
	}
	for _, li := range s.saleItems {
		snap.SaleItems = append(snap.SaleItems, li)
	}
	for _, p := range s.payments {
		snap.Payments = append(snap.Payments, p)
	}
	for _, p := range s.purchases {
		snap.Purchases = append(snap.Purchases, p)
	}
	for _, e := range s.expenses {
		snap.Expenses = append(snap.Expenses, e)
	}
	for _, b := range s.staffWork {
		snap.StaffWork = append(snap.StaffWork, b)
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u)
	}
	for _, v := range s.vault {
		v.Password = slices.Clone(v.Password)
		snap.Vault = append(snap.Vault, v)
	}

	slices.SortFunc(snap.MasterNames, func(a, b domain.MasterName) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Items, func(a, b domain.Item) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.StockLogs, func(a, b domain.StockLog) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Customers, func(a, b domain.Customer) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Sales, func(a, b domain.Sale) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.SaleItems, func(a, b domain.SaleItem) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Payments, func(a, b domain.Payment) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Purchases, func(a, b domain.Purchase) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Expenses, func(a, b domain.Expense) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.StaffWork, func(a, b domain.StaffWorkBatch) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Users, func(a, b domain.UserAccount) int { return int(a.ID - b.ID) })
	slices.SortFunc(snap.Vault, func(a, b domain.VaultEntry) int { return int(a.ID - b.ID) })

	return &snap, nil
}

func (s *Store) Restore(_ context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := New()
	for _, m := range snap.MasterNames {
		fresh.masterNames[m.ID] = m
		fresh.bump("master_names", m.ID)
	}
	for _, it := range snap.Items {
		fresh.items[it.ID] = it
		fresh.bump("items", it.ID)
	}
	for _, l := range snap.StockLogs {
		fresh.stockLogs[l.ID] = l
		fresh.bump("stock_logs", l.ID)
	}
	for _, c := range snap.Customers {
		fresh.customers[c.ID] = c
		fresh.bump("customers", c.ID)
	}
	for _, sale := range snap.Sales {
		fresh.sales[sale.ID] = sale
		fresh.bump("sales", sale.ID)
	}
	for _, li := range snap.SaleItems {
		fresh.saleItems[li.ID] = li
		fresh.bump("sale_items", li.ID)
	}
	for _, p := range snap.Payments {
		fresh.payments[p.ID] = p
		fresh.bump("payments", p.ID)
	}
	for _, p := range snap.Purchases {
		fresh.purchases[p.ID] = p
		fresh.bump("purchases", p.ID)
	}
	for _, e := range snap.Expenses {
		fresh.expenses[e.ID] = e
		fresh.bump("expenses", e.ID)
	}
	for _, b := range snap.StaffWork {
		fresh.staffWork[b.ID] = b
		fresh.bump("staff_work", b.ID)
		for _, li := range b.Items {
			fresh.bump("staff_work_items", li.ID)
		}
	}
	for _, u := range snap.Users {
		fresh.users[u.Username] = u
		fresh.bump("users", u.ID)
	}
	for _, v := range snap.Vault {
		fresh.vault[v.ID] = v
		fresh.bump("vault", v.ID)
	}
	if snap.Settings.BusinessName != "" || len(snap.Settings.ExpenseCategories) > 0 {
		fresh.settings = snap.Settings
	}

	s.masterNames = fresh.masterNames
	s.items = fresh.items
	s.stockLogs = fresh.stockLogs
	s.customers = fresh.customers
	s.sales = fresh.sales
	s.saleItems = fresh.saleItems
	s.payments = fresh.payments
	s.purchases = fresh.purchases
	s.expenses = fresh.expenses
	s.staffWork = fresh.staffWork
	s.users = fresh.users
	s.vault = fresh.vault
	s.settings = fresh.settings
	s.seq = fresh.seq
	return nil
}

func (s *Store) bump(table string, id int64) {
	if s.seq[table] < id {
		s.seq[table] = id
	}
}
