package checkout

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/services/pricing"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) ProductsByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.Product), args.Error(1)
}

func (m *mockRepo) CreateOrderWithStock(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockRepo) OrderByID(ctx context.Context, tenantID, id int64) (*models.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockRepo) CancelPendingOrder(ctx context.Context, tenantID, id int64, items []models.OrderItem) (bool, error) {
	args := m.Called(ctx, tenantID, id, items)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) UpdateOrderStatus(ctx context.Context, tenantID, id int64, status models.OrderStatus) (bool, error) {
	args := m.Called(ctx, tenantID, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Orders(ctx context.Context, tenantID int64, filter OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateDiscountID(ctx context.Context, tenantID, discountID int64, lines []pricing.CartLine) (*pricing.Application, error) {
	args := m.Called(ctx, tenantID, discountID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Application), args.Error(1)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func catalogFixture() map[int64]models.Product {
	return map[int64]models.Product{
		10: {ID: 10, Name: "Rice 5kg", UnitPrice: dec("50000.00"), IsActive: true},
		20: {ID: 20, Name: "Cooking Oil 1L", UnitPrice: dec("25000.00"), IsActive: true},
	}
}

func validInput() CheckoutInput {
	return CheckoutInput{
		CustomerID: 7,
		Items: []pricing.ItemRef{
			{ProductID: 10, Quantity: 1},
			{ProductID: 20, Quantity: 2},
		},
		DeliveryAddress: "Jl. Melati 12",
	}
}

func newTestService(repo Repository, discounts DiscountValidator) *Service {
	return NewService(repo, discounts, zerolog.Nop())
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := newTestService(new(mockRepo), new(mockValidator))
	in := validInput()
	in.Items = nil

	_, err := svc.Checkout(context.Background(), 1, in)
	assert.True(t, domain.IsCode(err, domain.CodeEmptyCart))
}

func TestCheckoutRejectsBlankAddress(t *testing.T) {
	svc := newTestService(new(mockRepo), new(mockValidator))
	in := validInput()
	in.DeliveryAddress = "   "

	_, err := svc.Checkout(context.Background(), 1, in)
	assert.True(t, domain.IsCode(err, domain.CodeValidationError))
}

func TestCheckoutRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(new(mockRepo), new(mockValidator))
	in := validInput()
	in.Items[0].Quantity = 0

	_, err := svc.Checkout(context.Background(), 1, in)
	assert.True(t, domain.IsCode(err, domain.CodeValidationError))
}

func TestCheckoutSnapshotsPricesAndTotals(t *testing.T) {
	repo := new(mockRepo)
	repo.On("ProductsByIDs", mock.Anything, int64(1), mock.Anything).Return(catalogFixture(), nil)
	repo.On("CreateOrderWithStock", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Status == models.OrderPending &&
			o.SubtotalAmount.Equal(dec("100000.00")) &&
			o.TotalAmount.Equal(dec("100000.00")) &&
			len(o.Items) == 2 &&
			o.Items[0].ProductName == "Rice 5kg"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Order).ID = 42
	}).Return(nil)

	svc := newTestService(repo, new(mockValidator))
	summary, err := svc.Checkout(context.Background(), 1, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.OrderID)
	assert.Equal(t, 3, summary.ItemCount)
	assert.True(t, dec("100000.00").Equal(summary.TotalAmount))
	repo.AssertExpectations(t)
}

func TestCheckoutRevalidatesDiscount(t *testing.T) {
	discountID := int64(5)

	repo := new(mockRepo)
	repo.On("ProductsByIDs", mock.Anything, int64(1), mock.Anything).Return(catalogFixture(), nil)
	repo.On("CreateOrderWithStock", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.DiscountAmount.Equal(dec("10000.00")) &&
			o.TotalAmount.Equal(dec("90000.00")) &&
			o.DiscountID != nil && *o.DiscountID == discountID
	})).Return(nil)

	validator := new(mockValidator)
	validator.On("ValidateDiscountID", mock.Anything, int64(1), discountID, mock.Anything).Return(&pricing.Application{
		DiscountID:     discountID,
		DiscountAmount: dec("10000.00"),
		NewTotal:       dec("90000.00"),
	}, nil)

	svc := newTestService(repo, validator)
	in := validInput()
	in.DiscountID = &discountID

	summary, err := svc.Checkout(context.Background(), 1, in)
	require.NoError(t, err)
	assert.True(t, dec("90000.00").Equal(summary.TotalAmount))
	validator.AssertExpectations(t)
}

func TestCheckoutAbortsWhenDiscountNoLongerQualifies(t *testing.T) {
	discountID := int64(5)

	repo := new(mockRepo)
	repo.On("ProductsByIDs", mock.Anything, int64(1), mock.Anything).Return(catalogFixture(), nil)

	validator := new(mockValidator)
	validator.On("ValidateDiscountID", mock.Anything, int64(1), discountID, mock.Anything).
		Return(nil, domain.NewError(domain.CodeMinOrderAmount, "below minimum"))

	svc := newTestService(repo, validator)
	in := validInput()
	in.DiscountID = &discountID

	_, err := svc.Checkout(context.Background(), 1, in)
	assert.True(t, domain.IsCode(err, domain.CodeMinOrderAmount))
	repo.AssertNotCalled(t, "CreateOrderWithStock", mock.Anything, mock.Anything)
}

func TestCheckoutPropagatesInsufficientStock(t *testing.T) {
	repo := new(mockRepo)
	repo.On("ProductsByIDs", mock.Anything, int64(1), mock.Anything).Return(catalogFixture(), nil)
	repo.On("CreateOrderWithStock", mock.Anything, mock.Anything).
		Return(domain.NewError(domain.CodeInsufficientStock, "insufficient stock for product 10"))

	svc := newTestService(repo, new(mockValidator))
	_, err := svc.Checkout(context.Background(), 1, validInput())
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientStock))
}

func TestCancelOnlyPending(t *testing.T) {
	repo := new(mockRepo)
	repo.On("OrderByID", mock.Anything, int64(1), int64(9)).Return(&models.Order{
		ID: 9, Status: models.OrderConfirmed,
	}, nil)

	svc := newTestService(repo, new(mockValidator))
	err := svc.Cancel(context.Background(), 1, 9)
	assert.True(t, domain.IsCode(err, domain.CodeOrderNotCancellable))
	repo.AssertNotCalled(t, "CancelPendingOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelGuardLoss(t *testing.T) {
	items := []models.OrderItem{{ProductID: 10, Quantity: 1}}
	repo := new(mockRepo)
	repo.On("OrderByID", mock.Anything, int64(1), int64(9)).Return(&models.Order{
		ID: 9, Status: models.OrderPending, Items: items,
	}, nil)
	repo.On("CancelPendingOrder", mock.Anything, int64(1), int64(9), items).Return(false, nil)

	svc := newTestService(repo, new(mockValidator))
	err := svc.Cancel(context.Background(), 1, 9)
	assert.True(t, domain.IsCode(err, domain.CodeOrderNotCancellable))
}

func TestCancelNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("OrderByID", mock.Anything, int64(1), int64(404)).Return(nil, nil)

	svc := newTestService(repo, new(mockValidator))
	err := svc.Cancel(context.Background(), 1, 404)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestReorderRebuildsFromCurrentCatalog(t *testing.T) {
	repo := new(mockRepo)
	repo.On("OrderByID", mock.Anything, int64(1), int64(3)).Return(&models.Order{
		ID:              3,
		CustomerID:      7,
		DeliveryAddress: "Jl. Melati 12",
		Items: []models.OrderItem{
			// Snapshot price is stale; current catalog says 50000.
			{ProductID: 10, ProductName: "Rice 5kg", UnitPrice: dec("45000.00"), Quantity: 1},
		},
	}, nil)
	repo.On("ProductsByIDs", mock.Anything, int64(1), []int64{10}).Return(catalogFixture(), nil)
	repo.On("CreateOrderWithStock", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.TotalAmount.Equal(dec("50000.00")) && o.DiscountID == nil
	})).Return(nil)

	svc := newTestService(repo, new(mockValidator))
	summary, err := svc.Reorder(context.Background(), 1, 3)

	require.NoError(t, err)
	assert.True(t, dec("50000.00").Equal(summary.TotalAmount))
	repo.AssertExpectations(t)
}

func TestUpdateStatusValidatesEnum(t *testing.T) {
	svc := newTestService(new(mockRepo), new(mockValidator))
	err := svc.UpdateStatus(context.Background(), 1, 9, models.OrderStatus("teleported"))
	assert.True(t, domain.IsCode(err, domain.CodeValidationError))
}

func TestUpdateStatusCannotBypassCancel(t *testing.T) {
	// Cancellation restores stock; flipping the status column directly
	// would skip that, so the PATCH refuses cancelled and pending.
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockValidator))

	for _, status := range []models.OrderStatus{models.OrderCancelled, models.OrderPending} {
		err := svc.UpdateStatus(context.Background(), 1, 9, status)
		assert.True(t, domain.IsCode(err, domain.CodeValidationError), "status %s", status)
	}
	repo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CancelPendingOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("UpdateOrderStatus", mock.Anything, int64(1), int64(9), models.OrderDelivered).Return(false, nil)

	svc := newTestService(repo, new(mockValidator))
	err := svc.UpdateStatus(context.Background(), 1, 9, models.OrderDelivered)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}
