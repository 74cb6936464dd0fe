package service

import (
	"context"
	"fmt"
	"io"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/money"
	"vsrthreads/backend/internal/render"
)

// RenderInvoice writes the printable invoice for one sale.
func (s *Service) RenderInvoice(ctx context.Context, saleID int64, w io.Writer) error {
	view, err := s.SaleView(ctx, saleID)
	if err != nil {
		return err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}

	data := render.InvoiceData{
		Settings:   *settings,
		Sale:       view.Sale,
		PaidAmount: view.PaidAmount,
		BalanceDue: view.BalanceDue,
	}
	if view.Sale.CustomerID != nil {
		customer, err := s.repo.GetCustomer(ctx, *view.Sale.CustomerID)
		if err != nil {
			return err
		}
		data.BillTo = customer.Name
		data.BillToInfo = customer.Phone
	} else if view.Sale.WalkinPhone != "" {
		data.BillToInfo = view.Sale.WalkinPhone
	}

	for _, line := range view.Items {
		item, err := s.repo.GetItem(ctx, line.ItemID)
		if err != nil {
			return fmt.Errorf("invoice line item %d: %w", line.ItemID, err)
		}
		data.Lines = append(data.Lines, render.InvoiceLine{
			Name:  item.Name,
			Color: item.Color,
			Qty:   line.Qty,
			Price: line.PricePerUnit,
			Total: money.LineTotal(line.Qty, line.PricePerUnit),
		})
	}
	return render.Invoice(w, data)
}

// RenderPnL writes the statement in the requested format: "html", "csv"
// or "xlsx".
func (s *Service) RenderPnL(ctx context.Context, filter domain.ReportFilter, format string, w io.Writer) error {
	stmt, err := s.ProfitAndLoss(ctx, filter)
	if err != nil {
		return err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		return render.PnLCSV(w, stmt)
	case "xlsx":
		return render.PnLXLSX(w, settings.BusinessName, stmt)
	default:
		return render.PnLHTML(w, settings.BusinessName, stmt)
	}
}

// RenderStickers writes label sheets, defaulting the title and contact
// from business settings when the request leaves them blank.
func (s *Service) RenderStickers(ctx context.Context, req domain.StickerRequest, w io.Writer) error {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if req.Title == "" {
		req.Title = settings.BusinessName
	}
	if req.Contact == "" {
		req.Contact = settings.ContactNumber
	}
	return render.Stickers(w, req)
}
