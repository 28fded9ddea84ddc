package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/services/pricing"
)

type Repository interface {
	ProductsByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.Product, error)
	// CreateOrderWithStock inserts the order and decrements stock for
	// every item in one transaction. Each decrement is a conditional
	// single-statement update; the whole call fails with
	// INSUFFICIENT_STOCK when any line cannot be covered.
	CreateOrderWithStock(ctx context.Context, order *models.Order) error
	OrderByID(ctx context.Context, tenantID, id int64) (*models.Order, error)
	// CancelPendingOrder flips pending → cancelled with a status-guarded
	// update and restores stock in the same transaction. Returns false
	// when the guard did not match (order no longer pending).
	CancelPendingOrder(ctx context.Context, tenantID, id int64, items []models.OrderItem) (bool, error)
	UpdateOrderStatus(ctx context.Context, tenantID, id int64, status models.OrderStatus) (bool, error)
	Orders(ctx context.Context, tenantID int64, filter OrderFilter) ([]models.Order, int64, error)
}

type DiscountValidator interface {
	ValidateDiscountID(ctx context.Context, tenantID, discountID int64, lines []pricing.CartLine) (*pricing.Application, error)
}

type OrderFilter struct {
	CustomerID *int64
	Status     *models.OrderStatus
	Page       int
	PageSize   int
}

type CheckoutInput struct {
	CustomerID      int64
	Items           []pricing.ItemRef
	DeliveryAddress string
	Notes           *string
	DiscountID      *int64
}

type Summary struct {
	OrderID     int64
	OrderNumber string
	TotalAmount decimal.Decimal
	ItemCount   int
}

type Service struct {
	repo      Repository
	discounts DiscountValidator
	logger    zerolog.Logger
}

func NewService(repo Repository, discounts DiscountValidator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		discounts: discounts,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout validates the cart, prices it from the current catalog,
// re-validates any supplied discount against the rebuilt cart, and
// creates the order while deducting stock atomically.
func (s *Service) Checkout(ctx context.Context, tenantID int64, in CheckoutInput) (*Summary, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewError(domain.CodeEmptyCart, "cart is empty")
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, domain.NewError(domain.CodeValidationError, "delivery address is required")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, domain.NewError(domain.CodeValidationError,
				fmt.Sprintf("quantity for product %d must be at least 1", it.ProductID))
		}
	}

	lines, err := s.buildLines(ctx, tenantID, in.Items)
	if err != nil {
		return nil, err
	}

	subtotal := pricing.Subtotal(lines)
	discountAmount := decimal.Zero

	if in.DiscountID != nil {
		app, err := s.discounts.ValidateDiscountID(ctx, tenantID, *in.DiscountID, lines)
		if err != nil {
			return nil, err
		}
		discountAmount = app.DiscountAmount
	}

	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	order := &models.Order{
		TenantID:        tenantID,
		OrderNumber:     newOrderNumber(),
		CustomerID:      in.CustomerID,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentUnpaid,
		SubtotalAmount:  subtotal,
		DiscountAmount:  discountAmount,
		TotalAmount:     total,
		DiscountID:      in.DiscountID,
		Notes:           in.Notes,
		DeliveryAddress: in.DeliveryAddress,
	}
	for _, l := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		})
	}

	if err := s.repo.CreateOrderWithStock(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("total", total.StringFixed(2)).
		Msg("order created")

	return &Summary{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: total,
		ItemCount:   pricing.UnitCount(lines),
	}, nil
}

// Cancel is permitted only while the order is pending. Stock reserved by
// the order is restored.
func (s *Service) Cancel(ctx context.Context, tenantID, orderID int64) error {
	order, err := s.repo.OrderByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.NewError(domain.CodeNotFound, "order not found")
	}
	if order.Status != models.OrderPending {
		return domain.NewError(domain.CodeOrderNotCancellable,
			fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}

	ok, err := s.repo.CancelPendingOrder(ctx, tenantID, orderID, order.Items)
	if err != nil {
		return err
	}
	if !ok {
		// Lost a race with a concurrent status change.
		return domain.NewError(domain.CodeOrderNotCancellable, "order is no longer pending")
	}

	s.logger.Info().Int64("order_id", orderID).Msg("order cancelled")
	return nil
}

// Reorder snapshots a prior order's line items against current prices
// and stock. The original discount is not carried over.
func (s *Service) Reorder(ctx context.Context, tenantID, orderID int64) (*Summary, error) {
	order, err := s.repo.OrderByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewError(domain.CodeNotFound, "order not found")
	}

	items := make([]pricing.ItemRef, len(order.Items))
	for i, it := range order.Items {
		items[i] = pricing.ItemRef{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	return s.Checkout(ctx, tenantID, CheckoutInput{
		CustomerID:      order.CustomerID,
		Items:           items,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
	})
}

// UpdateStatus moves an order along the fulfillment flow. Sequencing is
// driven by downstream systems, so only enum membership is checked, but
// pending and cancelled are reserved: pending is set at creation and
// cancellation must go through Cancel so stock is restored.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, orderID int64, status models.OrderStatus) error {
	if !models.ValidOrderStatus(status) {
		return domain.NewError(domain.CodeValidationError,
			fmt.Sprintf("unknown order status %q", status))
	}
	if status == models.OrderPending || status == models.OrderCancelled {
		return domain.NewError(domain.CodeValidationError,
			fmt.Sprintf("status %s cannot be set directly", status))
	}
	ok, err := s.repo.UpdateOrderStatus(ctx, tenantID, orderID, status)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewError(domain.CodeNotFound, "order not found")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, tenantID, orderID int64) (*models.Order, error) {
	order, err := s.repo.OrderByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewError(domain.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, tenantID int64, filter OrderFilter) ([]models.Order, int64, error) {
	return s.repo.Orders(ctx, tenantID, filter)
}

func (s *Service) buildLines(ctx context.Context, tenantID int64, items []pricing.ItemRef) ([]pricing.CartLine, error) {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}

	products, err := s.repo.ProductsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	lines := make([]pricing.CartLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || !p.IsActive {
			return nil, domain.NewError(domain.CodeProductNotFound,
				fmt.Sprintf("product %d not found", it.ProductID))
		}
		lines = append(lines, pricing.CartLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return lines, nil
}

func newOrderNumber() string {
	return "SO-" + strings.ToUpper(uuid.New().String()[:8])
}
