package receiving

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
)

type Repository interface {
	ProductByBarcode(ctx context.Context, tenantID int64, barcode string) (*models.Product, error)
	CreatePO(ctx context.Context, po *models.PurchaseOrder) error
	POWithLines(ctx context.Context, tenantID, poID int64) (*models.PurchaseOrder, error)
	// AccumulateLine adds qty to the line's received count atomically
	// and returns the updated line. Received quantity never decreases.
	AccumulateLine(ctx context.Context, lineID int64, qty int) (*models.PurchaseOrderLine, error)
	UpdatePOStatus(ctx context.Context, tenantID, poID int64, status models.POStatus) error
	// ReplaceLines swaps the PO's line set. Only called for draft POs.
	ReplaceLines(ctx context.Context, tenantID, poID int64, lines []models.PurchaseOrderLine) error
	PurchaseOrders(ctx context.Context, tenantID int64, filter Filter) ([]models.PurchaseOrder, int64, error)
}

type Filter struct {
	Status   *models.POStatus
	Page     int
	PageSize int
}

type LineInput struct {
	ProductID  int64
	QtyOrdered int
}

// ScanResult reports line progress after a barcode scan.
type ScanResult struct {
	ProductName    string
	QtyReceived    int
	QtyOrdered     int
	IsOverReceived bool
	POStatus       models.POStatus
}

type Tracker struct {
	repo   Repository
	logger zerolog.Logger
}

func NewTracker(repo Repository, logger zerolog.Logger) *Tracker {
	return &Tracker{
		repo:   repo,
		logger: logger.With().Str("service", "receiving").Logger(),
	}
}

// Scan resolves the barcode, accumulates the received quantity on the
// matching PO line, and re-derives the PO status. Over-receipt is
// flagged in the result but never blocks the scan.
func (t *Tracker) Scan(ctx context.Context, tenantID, poID int64, barcode string, quantity int) (*ScanResult, error) {
	if quantity < 1 {
		return nil, domain.NewError(domain.CodeValidationError, "scan quantity must be at least 1")
	}

	product, err := t.repo.ProductByBarcode(ctx, tenantID, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewError(domain.CodeProductNotFound,
			fmt.Sprintf("no product matches barcode %q", barcode))
	}

	po, err := t.repo.POWithLines(ctx, tenantID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NewError(domain.CodeNotFound, "purchase order not found")
	}
	if po.Status == models.PODraft || po.Status == models.POCancelled {
		return nil, domain.NewError(domain.CodeValidationError,
			fmt.Sprintf("purchase order in status %s is not open for receiving", po.Status))
	}

	var line *models.PurchaseOrderLine
	for i := range po.Lines {
		if po.Lines[i].ProductID == product.ID {
			line = &po.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, domain.NewError(domain.CodeItemNotInPO,
			fmt.Sprintf("product %s is not a line on this purchase order", product.Name))
	}

	updated, err := t.repo.AccumulateLine(ctx, line.ID, quantity)
	if err != nil {
		return nil, err
	}

	line.QtyReceived = updated.QtyReceived
	status := models.DerivePOStatus(po.Lines)
	if status != po.Status {
		if err := t.repo.UpdatePOStatus(ctx, tenantID, poID, status); err != nil {
			return nil, err
		}
	}

	if updated.OverReceived() {
		t.logger.Warn().
			Int64("po_id", poID).
			Int64("product_id", product.ID).
			Int("received", updated.QtyReceived).
			Int("ordered", updated.QtyOrdered).
			Msg("line over-received")
	}

	return &ScanResult{
		ProductName:    product.Name,
		QtyReceived:    updated.QtyReceived,
		QtyOrdered:     updated.QtyOrdered,
		IsOverReceived: updated.OverReceived(),
		POStatus:       status,
	}, nil
}

// Create opens a new draft purchase order.
func (t *Tracker) Create(ctx context.Context, tenantID int64, poNumber, supplierName string, notes *string, lines []LineInput) (*models.PurchaseOrder, error) {
	if poNumber == "" || supplierName == "" {
		return nil, domain.NewError(domain.CodeValidationError, "po number and supplier name are required")
	}

	po := &models.PurchaseOrder{
		TenantID:     tenantID,
		PONumber:     poNumber,
		SupplierName: supplierName,
		Status:       models.PODraft,
		Notes:        notes,
	}
	for _, l := range lines {
		if l.QtyOrdered < 1 {
			return nil, domain.NewError(domain.CodeValidationError, "ordered quantity must be at least 1")
		}
		po.Lines = append(po.Lines, models.PurchaseOrderLine{
			ProductID:  l.ProductID,
			QtyOrdered: l.QtyOrdered,
		})
	}

	if err := t.repo.CreatePO(ctx, po); err != nil {
		return nil, err
	}

	t.logger.Info().Int64("po_id", po.ID).Str("po_number", poNumber).Msg("purchase order created")
	return po, nil
}

// UpdateLines replaces the line set. Permitted only while the PO is a
// draft.
func (t *Tracker) UpdateLines(ctx context.Context, tenantID, poID int64, lines []LineInput) (*models.PurchaseOrder, error) {
	po, err := t.repo.POWithLines(ctx, tenantID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NewError(domain.CodeNotFound, "purchase order not found")
	}
	if po.Status != models.PODraft {
		return nil, domain.NewError(domain.CodePONotEditable,
			fmt.Sprintf("purchase order in status %s cannot be edited", po.Status))
	}

	replacement := make([]models.PurchaseOrderLine, 0, len(lines))
	for _, l := range lines {
		if l.QtyOrdered < 1 {
			return nil, domain.NewError(domain.CodeValidationError, "ordered quantity must be at least 1")
		}
		replacement = append(replacement, models.PurchaseOrderLine{
			PurchaseOrderID: poID,
			ProductID:       l.ProductID,
			QtyOrdered:      l.QtyOrdered,
		})
	}

	if err := t.repo.ReplaceLines(ctx, tenantID, poID, replacement); err != nil {
		return nil, err
	}
	return t.repo.POWithLines(ctx, tenantID, poID)
}

// MarkOrdered moves a draft PO into the receiving flow.
func (t *Tracker) MarkOrdered(ctx context.Context, tenantID, poID int64) (*models.PurchaseOrder, error) {
	po, err := t.repo.POWithLines(ctx, tenantID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NewError(domain.CodeNotFound, "purchase order not found")
	}
	if po.Status != models.PODraft {
		return nil, domain.NewError(domain.CodeInvalidStatusTransition,
			fmt.Sprintf("cannot mark %s purchase order as ordered", po.Status))
	}

	if err := t.repo.UpdatePOStatus(ctx, tenantID, poID, models.POOrdered); err != nil {
		return nil, err
	}
	po.Status = models.POOrdered
	return po, nil
}

func (t *Tracker) Get(ctx context.Context, tenantID, poID int64) (*models.PurchaseOrder, error) {
	po, err := t.repo.POWithLines(ctx, tenantID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NewError(domain.CodeNotFound, "purchase order not found")
	}
	return po, nil
}

func (t *Tracker) List(ctx context.Context, tenantID int64, filter Filter) ([]models.PurchaseOrder, int64, error) {
	return t.repo.PurchaseOrders(ctx, tenantID, filter)
}
