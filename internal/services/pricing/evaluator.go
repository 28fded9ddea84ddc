package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
)

// ItemRef is a client-supplied cart entry. Prices are never taken from
// the client; lines are built against the current catalog.
type ItemRef struct {
	ProductID int64
	Quantity  int
}

// CartLine is an ItemRef priced from the catalog.
type CartLine struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Application is the result of resolving a discount against a cart.
type Application struct {
	DiscountID     int64
	Code           string
	Name           string
	Type           models.DiscountType
	DiscountAmount decimal.Decimal
	NewTotal       decimal.Decimal
}

type DiscountRepository interface {
	// ActiveDiscounts returns all active discounts for the tenant.
	ActiveDiscounts(ctx context.Context, tenantID int64) ([]models.Discount, error)
	// DiscountByCode returns nil when no discount has the code.
	DiscountByCode(ctx context.Context, tenantID int64, code string) (*models.Discount, error)
	// DiscountByID returns nil when the id is unknown.
	DiscountByID(ctx context.Context, tenantID, id int64) (*models.Discount, error)
}

type ProductCatalog interface {
	ProductsByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.Product, error)
}

type Evaluator struct {
	discounts DiscountRepository
	catalog   ProductCatalog
	logger    zerolog.Logger
}

func NewEvaluator(discounts DiscountRepository, catalog ProductCatalog, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		discounts: discounts,
		catalog:   catalog,
		logger:    logger.With().Str("service", "pricing").Logger(),
	}
}

// BuildLines prices the requested items from the current catalog.
// Inactive or unknown products fail with PRODUCT_NOT_FOUND.
func (e *Evaluator) BuildLines(ctx context.Context, tenantID int64, items []ItemRef) ([]CartLine, error) {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}

	products, err := e.catalog.ProductsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || !p.IsActive {
			return nil, domain.NewError(domain.CodeProductNotFound,
				fmt.Sprintf("product %d not found", it.ProductID))
		}
		lines = append(lines, CartLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return lines, nil
}

// Subtotal sums unit price times quantity over the lines.
func Subtotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// UnitCount is the total number of units in the cart, used against a
// discount's MinQty threshold.
func UnitCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// PreviewAutoDiscount scans active, unexpired discounts whose thresholds
// the cart meets and returns the one yielding the largest amount, ties
// broken by highest discount id. Returns nil when nothing qualifies.
// Read-only; safe to call on every cart change.
func (e *Evaluator) PreviewAutoDiscount(ctx context.Context, tenantID int64, lines []CartLine) (*Application, error) {
	discounts, err := e.discounts.ActiveDiscounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load discounts: %w", err)
	}

	subtotal := Subtotal(lines)
	itemCount := UnitCount(lines)
	now := time.Now()

	var best *models.Discount
	bestAmount := decimal.Zero

	for i := range discounts {
		d := discounts[i]
		if !qualifies(d, subtotal, itemCount, now) {
			continue
		}
		amount := computeAmount(d, lines, subtotal)
		if best == nil ||
			amount.GreaterThan(bestAmount) ||
			(amount.Equal(bestAmount) && d.ID > best.ID) {
			best = &discounts[i]
			bestAmount = amount
		}
	}

	if best == nil {
		return nil, nil
	}
	return newApplication(*best, bestAmount, subtotal), nil
}

// ValidateManualCode resolves a discount code against the cart. Failure
// order: DISCOUNT_NOT_FOUND, DISCOUNT_INACTIVE, DISCOUNT_EXPIRED,
// MIN_ORDER_AMOUNT.
func (e *Evaluator) ValidateManualCode(ctx context.Context, tenantID int64, code string, lines []CartLine) (*Application, error) {
	d, err := e.discounts.DiscountByCode(ctx, tenantID, code)
	if err != nil {
		return nil, fmt.Errorf("load discount %q: %w", code, err)
	}
	if d == nil {
		return nil, domain.NewError(domain.CodeDiscountNotFound, "discount code not found")
	}
	return e.validate(*d, lines)
}

// ValidateDiscountID re-validates a previously resolved discount against
// the current cart. Checkout calls this so a stale discount never
// survives a cart mutation.
func (e *Evaluator) ValidateDiscountID(ctx context.Context, tenantID, discountID int64, lines []CartLine) (*Application, error) {
	d, err := e.discounts.DiscountByID(ctx, tenantID, discountID)
	if err != nil {
		return nil, fmt.Errorf("load discount %d: %w", discountID, err)
	}
	if d == nil {
		return nil, domain.NewError(domain.CodeDiscountNotFound, "discount not found")
	}
	return e.validate(*d, lines)
}

func (e *Evaluator) validate(d models.Discount, lines []CartLine) (*Application, error) {
	if !d.Active {
		return nil, domain.NewError(domain.CodeDiscountInactive, "discount is disabled")
	}
	if d.Expired(time.Now()) {
		return nil, domain.NewError(domain.CodeDiscountExpired, "discount has expired")
	}

	subtotal := Subtotal(lines)
	if d.MinOrderAmount != nil && subtotal.LessThan(*d.MinOrderAmount) {
		return nil, domain.NewError(domain.CodeMinOrderAmount,
			fmt.Sprintf("order subtotal below minimum of %s", d.MinOrderAmount.StringFixed(2)))
	}
	if d.MinQty != nil && UnitCount(lines) < *d.MinQty {
		return nil, domain.NewError(domain.CodeValidationError,
			fmt.Sprintf("cart no longer meets minimum quantity of %d", *d.MinQty))
	}

	amount := computeAmount(d, lines, subtotal)
	return newApplication(d, amount, subtotal), nil
}

func qualifies(d models.Discount, subtotal decimal.Decimal, itemCount int, now time.Time) bool {
	if !d.Active || d.Expired(now) {
		return false
	}
	if d.MinOrderAmount != nil && subtotal.LessThan(*d.MinOrderAmount) {
		return false
	}
	if d.MinQty != nil && itemCount < *d.MinQty {
		return false
	}
	return true
}

// computeAmount applies the discount type semantics. The result is
// always clamped to the cart subtotal.
func computeAmount(d models.Discount, lines []CartLine, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal

	switch d.Type {
	case models.DiscountPercentage:
		amount = subtotal.Mul(d.Value).Div(decimal.NewFromInt(100)).Round(2)
	case models.DiscountFixedAmount:
		amount = d.Value
	case models.DiscountFreeQty:
		amount = freeQtyAmount(lines, int(d.Value.IntPart()))
	default:
		amount = decimal.Zero
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount
}

// freeQtyAmount sums the unit prices of the first freeUnits units when
// lines are walked in ascending unit-price order, spilling into the
// next-cheapest line when a line runs out.
func freeQtyAmount(lines []CartLine, freeUnits int) decimal.Decimal {
	if freeUnits <= 0 {
		return decimal.Zero
	}

	sorted := make([]CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice.LessThan(sorted[j].UnitPrice)
	})

	amount := decimal.Zero
	remaining := freeUnits
	for _, l := range sorted {
		if remaining <= 0 {
			break
		}
		take := l.Quantity
		if take > remaining {
			take = remaining
		}
		amount = amount.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(take))))
		remaining -= take
	}
	return amount
}

func newApplication(d models.Discount, amount, subtotal decimal.Decimal) *Application {
	newTotal := subtotal.Sub(amount)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}
	return &Application{
		DiscountID:     d.ID,
		Code:           d.Code,
		Name:           d.Name,
		Type:           d.Type,
		DiscountAmount: amount,
		NewTotal:       newTotal,
	}
}
