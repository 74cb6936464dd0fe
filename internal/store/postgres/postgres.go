package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for migration runs at startup.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// dateFilter appends from/to bounds on the given column, numbering
// placeholders after the ones already in args.
func dateFilter(col string, filter domain.ReportFilter, args []any) (string, []any) {
	var sb strings.Builder
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&sb, " AND %s >= $%d", col, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&sb, " AND %s <= $%d", col, len(args))
	}
	return sb.String(), args
}

// ---- master names ----

func (s *Store) ListMasterNames(ctx context.Context) ([]domain.MasterName, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM master_names ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MasterName, 0, 32)
	for rows.Next() {
		var m domain.MasterName
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateMasterName(ctx context.Context, name string) (*domain.MasterName, error) {
	var m domain.MasterName
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO master_names (name) VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&m.ID, &m.Name, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("master name %q: %w", name, store.ErrConflict)
		}
		return nil, err
	}
	return &m, nil
}

func (s *Store) DeleteMasterName(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "master_names", id)
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", strings.TrimSuffix(table, "s"), id, store.ErrNotFound)
	}
	return nil
}

// ---- items ----

const itemColumns = `id, name, color, opening_stock, cost_price, created_at`

func scanItem(row interface{ Scan(...any) error }) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.Color, &it.OpeningStock, &it.CostPrice, &it.CreatedAt)
	return it, err
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items ORDER BY name, color
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Item, 0, 64)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return &it, nil
}

func (s *Store) FindItemByNameColor(ctx context.Context, name string, color string) (*domain.Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE lower(name) = lower($1) AND lower(color) = lower($2)
	`, name, color))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %s/%s: %w", name, color, store.ErrNotFound)
		}
		return nil, err
	}
	return &it, nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO items (name, color, opening_stock, cost_price)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, item.Name, item.Color, item.OpeningStock, item.CostPrice).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("item %s/%s: %w", item.Name, item.Color, store.ErrConflict)
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item domain.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = $2, color = $3, cost_price = $4 WHERE id = $1
	`, item.ID, item.Name, item.Color, item.CostPrice)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s/%s: %w", item.Name, item.Color, store.ErrConflict)
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", item.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_logs WHERE item_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", id, store.ErrNotFound)
	}
	return tx.Commit()
}

func (s *Store) AddStock(ctx context.Context, logEntry domain.StockLog, costPrice decimal.Decimal) (*domain.StockLog, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE items SET cost_price = $2 WHERE id = $1`, logEntry.ItemID, costPrice)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("item %d: %w", logEntry.ItemID, store.ErrNotFound)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO stock_logs (item_id, date, qty_added, notes)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, logEntry.ItemID, logEntry.Date, logEntry.QtyAdded, logEntry.Notes).Scan(&logEntry.ID, &logEntry.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &logEntry, nil
}

func (s *Store) ListStockLogs(ctx context.Context, filter domain.ReportFilter) ([]domain.StockLog, error) {
	query := `SELECT id, item_id, date, qty_added, notes, created_at FROM stock_logs WHERE 1=1`
	clause, args := dateFilter("date", filter, nil)
	rows, err := s.db.QueryContext(ctx, query+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StockLog, 0, 64)
	for rows.Next() {
		var l domain.StockLog
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Date, &l.QtyAdded, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---- customers ----

const customerColumns = `id, name, phone, address, opening_due, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.OpeningDue, &c.CreatedAt)
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+` FROM customers ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Customer, 0, 64)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (name, phone, address, opening_due)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, c.Name, c.Phone, c.Address, c.OpeningDue).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("customer %q: %w", c.Name, store.ErrConflict)
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers SET name = $2, phone = $3, address = $4 WHERE id = $1
	`, c.ID, c.Name, c.Phone, c.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer %q: %w", c.Name, store.ErrConflict)
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("customer %d: %w", c.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT count(*) FROM sales WHERE customer_id = $1)
		     + (SELECT count(*) FROM payments WHERE customer_id = $1)
	`, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("customer %d has transactions: %w", id, store.ErrConflict)
	}
	return s.deleteByID(ctx, "customers", id)
}

// ---- sales ----

const saleColumns = `id, date, customer_id, walkin_phone, sub_total, cgst_percent, sgst_percent, cgst_amount, sgst_amount, grand_total, notes, created_at`

func scanSale(row interface{ Scan(...any) error }) (domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(&sale.ID, &sale.Date, &sale.CustomerID, &sale.WalkinPhone,
		&sale.SubTotal, &sale.CgstPercent, &sale.SgstPercent,
		&sale.CgstAmount, &sale.SgstAmount, &sale.GrandTotal, &sale.Notes, &sale.CreatedAt)
	return sale, err
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem, payment *domain.Payment) (*domain.Sale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (date, customer_id, walkin_phone, sub_total, cgst_percent, sgst_percent, cgst_amount, sgst_amount, grand_total, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at
	`, sale.Date, sale.CustomerID, sale.WalkinPhone, sale.SubTotal,
		sale.CgstPercent, sale.SgstPercent, sale.CgstAmount, sale.SgstAmount,
		sale.GrandTotal, sale.Notes).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("sale customer: %w", store.ErrNotFound)
		}
		return nil, err
	}

	for _, li := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, item_id, qty, price_per_unit, cost_per_unit)
			VALUES ($1,$2,$3,$4,$5)
		`, sale.ID, li.ItemID, li.Qty, li.PricePerUnit, li.CostPerUnit)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("item %d: %w", li.ItemID, store.ErrNotFound)
			}
			return nil, err
		}
	}

	if payment != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments (date, customer_id, sale_id, amount, note)
			VALUES ($1,$2,$3,$4,$5)
		`, payment.Date, payment.CustomerID, sale.ID, payment.Amount, payment.Note)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, []domain.SaleItem, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("sale %d: %w", id, store.ErrNotFound)
		}
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, item_id, qty, price_per_unit, cost_per_unit
		FROM sale_items WHERE sale_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var li domain.SaleItem
		if err := rows.Scan(&li.ID, &li.SaleID, &li.ItemID, &li.Qty, &li.PricePerUnit, &li.CostPerUnit); err != nil {
			return nil, nil, err
		}
		items = append(items, li)
	}
	return &sale, items, rows.Err()
}

func (s *Store) ListSales(ctx context.Context, filter domain.ReportFilter) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	clause, args := dateFilter("date", filter, nil)
	query += clause
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Sale, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

func (s *Store) ListSaleItems(ctx context.Context, saleIDs []int64) ([]domain.SaleItem, error) {
	query := `SELECT id, sale_id, item_id, qty, price_per_unit, cost_per_unit FROM sale_items`
	args := make([]any, 0, len(saleIDs))
	if saleIDs != nil {
		placeholders := make([]string, 0, len(saleIDs))
		for _, id := range saleIDs {
			args = append(args, id)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		if len(placeholders) == 0 {
			return []domain.SaleItem{}, nil
		}
		query += ` WHERE sale_id IN (` + strings.Join(placeholders, ",") + `)`
	}

	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SaleItem, 0, 128)
	for rows.Next() {
		var li domain.SaleItem
		if err := rows.Scan(&li.ID, &li.SaleID, &li.ItemID, &li.Qty, &li.PricePerUnit, &li.CostPerUnit); err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE sale_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("sale %d: %w", id, store.ErrNotFound)
	}
	return tx.Commit()
}

// ---- payments ----

func (s *Store) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO payments (date, customer_id, sale_id, amount, note)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, p.Date, p.CustomerID, p.SaleID, p.Amount, p.Note).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("payment reference: %w", store.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPayments(ctx context.Context, filter domain.ReportFilter) ([]domain.Payment, error) {
	query := `SELECT id, date, customer_id, sale_id, amount, note, created_at FROM payments WHERE 1=1`
	clause, args := dateFilter("date", filter, nil)
	query += clause
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Payment, 0, 64)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.Date, &p.CustomerID, &p.SaleID, &p.Amount, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- purchases ----

const purchaseColumns = `id, date, description, bags, kg_per_bag, total_kg, price_per_kg, total_amount, vendor_name, vendor_contact, cgst_amount, sgst_amount, bill_name, bill_data, created_at`

func scanPurchase(row interface{ Scan(...any) error }) (domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(&p.ID, &p.Date, &p.Description, &p.Bags, &p.KgPerBag, &p.TotalKg,
		&p.PricePerKg, &p.TotalAmount, &p.VendorName, &p.VendorContact,
		&p.CgstAmount, &p.SgstAmount, &p.BillName, &p.BillData, &p.CreatedAt)
	return p, err
}

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase) (*domain.Purchase, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO purchases (date, description, bags, kg_per_bag, total_kg, price_per_kg, total_amount, vendor_name, vendor_contact, cgst_amount, sgst_amount, bill_name, bill_data)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at
	`, p.Date, p.Description, p.Bags, p.KgPerBag, p.TotalKg, p.PricePerKg,
		p.TotalAmount, p.VendorName, p.VendorContact, p.CgstAmount, p.SgstAmount,
		p.BillName, p.BillData).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	p, err := scanPurchase(s.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+` FROM purchases WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPurchases(ctx context.Context, filter domain.ReportFilter) ([]domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1=1`
	clause, args := dateFilter("date", filter, nil)
	rows, err := s.db.QueryContext(ctx, query+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Purchase, 0, 32)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePurchase(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "purchases", id)
}

// ---- expenses ----

func (s *Store) CreateExpense(ctx context.Context, e domain.Expense) (*domain.Expense, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO expenses (date, category, description, amount, staff_work_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, e.Date, e.Category, e.Description, e.Amount, e.StaffWorkID).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter domain.ReportFilter) ([]domain.Expense, error) {
	query := `SELECT id, date, category, description, amount, staff_work_id, created_at FROM expenses WHERE 1=1`
	clause, args := dateFilter("date", filter, nil)
	rows, err := s.db.QueryContext(ctx, query+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Expense, 0, 64)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.Description, &e.Amount, &e.StaffWorkID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "expenses", id)
}

// ---- staff work ----

func (s *Store) CreateStaffWork(ctx context.Context, batch domain.StaffWorkBatch, expense domain.Expense) (*domain.StaffWorkBatch, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO staff_work (date, staff_name, kg_provided, total_salary, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, batch.Date, batch.StaffName, batch.KgProvided, batch.TotalSalary, batch.Notes).
		Scan(&batch.ID, &batch.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i := range batch.Items {
		li := &batch.Items[i]
		li.WorkID = batch.ID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO staff_work_items (work_id, item_id, item_name, grams_per_unit, qty_produced, rate, amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, li.WorkID, li.ItemID, li.ItemName, li.GramsPerUnit, li.QtyProduced, li.Rate, li.Amount).Scan(&li.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("staff work item: %w", store.ErrNotFound)
			}
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (date, category, description, amount, staff_work_id)
		VALUES ($1,$2,$3,$4,$5)
	`, expense.Date, expense.Category, expense.Description, expense.Amount, batch.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *Store) GetStaffWork(ctx context.Context, id int64) (*domain.StaffWorkBatch, error) {
	var b domain.StaffWorkBatch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, staff_name, kg_provided, total_salary, notes, created_at
		FROM staff_work WHERE id = $1
	`, id).Scan(&b.ID, &b.Date, &b.StaffName, &b.KgProvided, &b.TotalSalary, &b.Notes, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("staff work %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}

	items, err := s.staffWorkItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	b.Items = items[id]
	return &b, nil
}

func (s *Store) staffWorkItems(ctx context.Context, workIDs []int64) (map[int64][]domain.StaffWorkItem, error) {
	if len(workIDs) == 0 {
		return map[int64][]domain.StaffWorkItem{}, nil
	}
	args := make([]any, 0, len(workIDs))
	placeholders := make([]string, 0, len(workIDs))
	for _, id := range workIDs {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_id, item_id, item_name, grams_per_unit, qty_produced, rate, amount
		FROM staff_work_items WHERE work_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.StaffWorkItem, len(workIDs))
	for rows.Next() {
		var li domain.StaffWorkItem
		if err := rows.Scan(&li.ID, &li.WorkID, &li.ItemID, &li.ItemName, &li.GramsPerUnit, &li.QtyProduced, &li.Rate, &li.Amount); err != nil {
			return nil, err
		}
		out[li.WorkID] = append(out[li.WorkID], li)
	}
	return out, rows.Err()
}

func (s *Store) ListStaffWork(ctx context.Context, filter domain.ReportFilter) ([]domain.StaffWorkBatch, error) {
	query := `SELECT id, date, staff_name, kg_provided, total_salary, notes, created_at FROM staff_work WHERE 1=1`
	clause, args := dateFilter("date", filter, nil)
	rows, err := s.db.QueryContext(ctx, query+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StaffWorkBatch, 0, 32)
	ids := make([]int64, 0, 32)
	for rows.Next() {
		var b domain.StaffWorkBatch
		if err := rows.Scan(&b.ID, &b.Date, &b.StaffName, &b.KgProvided, &b.TotalSalary, &b.Notes, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := s.staffWorkItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *Store) UpdateStaffWorkHeader(ctx context.Context, batch domain.StaffWorkBatch) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff_work SET date = $2, staff_name = $3, kg_provided = $4 WHERE id = $1
	`, batch.ID, batch.Date, batch.StaffName, batch.KgProvided)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("staff work %d: %w", batch.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteStaffWork(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE staff_work_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_work_items WHERE work_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM staff_work WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("staff work %d: %w", id, store.ErrNotFound)
	}
	return tx.Commit()
}

// ---- settings ----

func (s *Store) GetSettings(ctx context.Context) (*domain.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kv := make(map[string]string, 8)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	settings := domain.Settings{
		BusinessName:  kv["business_name"],
		Address:       kv["address"],
		ContactNumber: kv["contact_number"],
		GSTNumber:     kv["gst_number"],
		CgstPercent:   parseDecimal(kv["cgst_percent"]),
		SgstPercent:   parseDecimal(kv["sgst_percent"]),
	}
	if cats := kv["expense_categories"]; cats != "" {
		settings.ExpenseCategories = strings.Split(cats, "|")
	}
	return &settings, nil
}

func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s *Store) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	pairs := map[string]string{
		"business_name":      settings.BusinessName,
		"address":            settings.Address,
		"contact_number":     settings.ContactNumber,
		"gst_number":         settings.GSTNumber,
		"cgst_percent":       settings.CgstPercent.String(),
		"sgst_percent":       settings.SgstPercent.String(),
		"expense_categories": strings.Join(settings.ExpenseCategories, "|"),
	}
	for k, v := range pairs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES ($1,$2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`, k, v)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---- users ----

const userColumns = `id, username, password, role, capabilities, active, created_at`

func scanUser(row interface{ Scan(...any) error }) (domain.UserAccount, error) {
	var u domain.UserAccount
	var caps []string
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Role, jsonStrings{&caps}, &u.Active, &u.CreatedAt)
	if err != nil {
		return u, err
	}
	u.Capabilities, err = domain.ParseCapabilities(caps)
	if err != nil {
		return u, fmt.Errorf("user %s: %w: %v", u.Username, store.ErrValidation, err)
	}
	return u, nil
}

func capStrings(caps []domain.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, store.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, capabilities, active)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, jsonStringsValue(capStrings(user.Capabilities)), user.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, store.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.UserAccount) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2, role = $3, capabilities = $4, active = $5 WHERE username = $1
	`, user.Username, user.Password, user.Role, jsonStringsValue(capStrings(user.Capabilities)), user.Active)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", user.Username, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", username, store.ErrNotFound)
	}
	return nil
}

// ---- vault ----

func (s *Store) ListVaultEntries(ctx context.Context) ([]domain.VaultEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, visibility, website, login_id, password, updated_at
		FROM vault_entries ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.VaultEntry, 0, 16)
	for rows.Next() {
		var e domain.VaultEntry
		if err := rows.Scan(&e.ID, &e.Owner, &e.Visibility, &e.Website, &e.LoginID, &e.Password, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetVaultEntry(ctx context.Context, id int64) (*domain.VaultEntry, error) {
	var e domain.VaultEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner, visibility, website, login_id, password, updated_at
		FROM vault_entries WHERE id = $1
	`, id).Scan(&e.ID, &e.Owner, &e.Visibility, &e.Website, &e.LoginID, &e.Password, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vault entry %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateVaultEntry(ctx context.Context, e domain.VaultEntry) (*domain.VaultEntry, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO vault_entries (owner, visibility, website, login_id, password)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, updated_at
	`, e.Owner, e.Visibility, e.Website, e.LoginID, e.Password).Scan(&e.ID, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) DeleteVaultEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("vault entry %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// ---- backup ----

func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.Snapshot{ExportedAt: time.Now().UTC()}

	var err error
	if snap.MasterNames, err = s.ListMasterNames(ctx); err != nil {
		return nil, err
	}
	if snap.Items, err = s.ListItems(ctx); err != nil {
		return nil, err
	}
	if snap.StockLogs, err = s.ListStockLogs(ctx, domain.ReportFilter{}); err != nil {
		return nil, err
	}
	if snap.Customers, err = s.ListCustomers(ctx); err != nil {
		return nil, err
	}
	if snap.Sales, err = s.ListSales(ctx, domain.ReportFilter{}); err != nil {
		return nil, err
	}
	if snap.SaleItems, err = s.ListSaleItems(ctx, nil); err != nil {
		return nil, err
	}
	if snap.Payments, err = s.ListPayments(ctx, domain.ReportFilter{}); err != nil {
		return nil, err
	}
	if snap.Purchases, err = s.ListPurchases(ctx, domain.ReportFilter{}); err != nil {
		return nil, err
	}
	if snap.Expenses, err = s.ListExpenses(ctx, domain.ReportFilter{}); err != nil {
		return nil, err
	}
	if snap.StaffWork, err = s.ListStaffWork(ctx, domain.ReportFilter{}); err != nil {
		return nil, err
	}
	if snap.Users, err = s.ListUsers(ctx); err != nil {
		return nil, err
	}
	if snap.Vault, err = s.ListVaultEntries(ctx); err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	snap.Settings = *settings
	return &snap, nil
}

func (s *Store) Restore(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"payments", "sale_items", "sales", "stock_logs", "staff_work_items",
		"expenses", "staff_work", "purchases", "vault_entries", "items",
		"customers", "master_names", "users", "settings",
	} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, m := range snap.MasterNames {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO master_names (id, name, created_at) VALUES ($1,$2,$3)
		`, m.ID, m.Name, m.CreatedAt); err != nil {
			return err
		}
	}
	for _, it := range snap.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, name, color, opening_stock, cost_price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, it.ID, it.Name, it.Color, it.OpeningStock, it.CostPrice, it.CreatedAt); err != nil {
			return err
		}
	}
	for _, l := range snap.StockLogs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_logs (id, item_id, date, qty_added, notes, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, l.ID, l.ItemID, l.Date, l.QtyAdded, l.Notes, l.CreatedAt); err != nil {
			return err
		}
	}
	for _, c := range snap.Customers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO customers (id, name, phone, address, opening_due, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, c.ID, c.Name, c.Phone, c.Address, c.OpeningDue, c.CreatedAt); err != nil {
			return err
		}
	}
	for _, sale := range snap.Sales {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sales (id, date, customer_id, walkin_phone, sub_total, cgst_percent, sgst_percent, cgst_amount, sgst_amount, grand_total, notes, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`, sale.ID, sale.Date, sale.CustomerID, sale.WalkinPhone, sale.SubTotal,
			sale.CgstPercent, sale.SgstPercent, sale.CgstAmount, sale.SgstAmount,
			sale.GrandTotal, sale.Notes, sale.CreatedAt); err != nil {
			return err
		}
	}
	for _, li := range snap.SaleItems {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, item_id, qty, price_per_unit, cost_per_unit)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, li.ID, li.SaleID, li.ItemID, li.Qty, li.PricePerUnit, li.CostPerUnit); err != nil {
			return err
		}
	}
	for _, p := range snap.Payments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payments (id, date, customer_id, sale_id, amount, note, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, p.ID, p.Date, p.CustomerID, p.SaleID, p.Amount, p.Note, p.CreatedAt); err != nil {
			return err
		}
	}
	for _, p := range snap.Purchases {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchases (id, date, description, bags, kg_per_bag, total_kg, price_per_kg, total_amount, vendor_name, vendor_contact, cgst_amount, sgst_amount, bill_name, bill_data, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`, p.ID, p.Date, p.Description, p.Bags, p.KgPerBag, p.TotalKg, p.PricePerKg,
			p.TotalAmount, p.VendorName, p.VendorContact, p.CgstAmount, p.SgstAmount,
			p.BillName, p.BillData, p.CreatedAt); err != nil {
			return err
		}
	}
	for _, b := range snap.StaffWork {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO staff_work (id, date, staff_name, kg_provided, total_salary, notes, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, b.ID, b.Date, b.StaffName, b.KgProvided, b.TotalSalary, b.Notes, b.CreatedAt); err != nil {
			return err
		}
		for _, li := range b.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO staff_work_items (id, work_id, item_id, item_name, grams_per_unit, qty_produced, rate, amount)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			`, li.ID, li.WorkID, li.ItemID, li.ItemName, li.GramsPerUnit, li.QtyProduced, li.Rate, li.Amount); err != nil {
				return err
			}
		}
	}
	for _, e := range snap.Expenses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (id, date, category, description, amount, staff_work_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, e.ID, e.Date, e.Category, e.Description, e.Amount, e.StaffWorkID, e.CreatedAt); err != nil {
			return err
		}
	}
	for _, u := range snap.Users {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, username, password, role, capabilities, active, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, u.ID, u.Username, u.Password, u.Role, jsonStringsValue(capStrings(u.Capabilities)), u.Active, u.CreatedAt); err != nil {
			return err
		}
	}
	for _, v := range snap.Vault {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vault_entries (id, owner, visibility, website, login_id, password, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, v.ID, v.Owner, v.Visibility, v.Website, v.LoginID, v.Password, v.UpdatedAt); err != nil {
			return err
		}
	}

	pairs := map[string]string{
		"business_name":      snap.Settings.BusinessName,
		"address":            snap.Settings.Address,
		"contact_number":     snap.Settings.ContactNumber,
		"gst_number":         snap.Settings.GSTNumber,
		"cgst_percent":       snap.Settings.CgstPercent.String(),
		"sgst_percent":       snap.Settings.SgstPercent.String(),
		"expense_categories": strings.Join(snap.Settings.ExpenseCategories, "|"),
	}
	for k, v := range pairs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ($1,$2)`, k, v); err != nil {
			return err
		}
	}

	// Re-align sequences with the restored rows.
	for _, seq := range []struct{ table, col string }{
		{"master_names", "id"}, {"items", "id"}, {"stock_logs", "id"},
		{"customers", "id"}, {"sales", "id"}, {"sale_items", "id"},
		{"payments", "id"}, {"purchases", "id"}, {"expenses", "id"},
		{"staff_work", "id"}, {"staff_work_items", "id"},
		{"users", "id"}, {"vault_entries", "id"},
	} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s','%s'), GREATEST(COALESCE(MAX(%s),0),1), COALESCE(MAX(%s),0) > 0) FROM %s`,
			seq.table, seq.col, seq.col, seq.col, seq.table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
