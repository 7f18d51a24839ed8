package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const orderNumberAttempts = 3

var errOrderNumberTaken = errors.New("order number taken")

type LineItem struct {
	ProductID primitive.ObjectID
	Size      string
	Quantity  int
}

type PlaceOrderInput struct {
	Items           []LineItem
	ShippingAddress models.ShippingAddress
	CustomerInfo    models.CustomerInfo
	PaymentMethod   models.PaymentMethod
	// UserID links the order to a signed-in customer; nil for guests.
	UserID *primitive.ObjectID
}

type OrderService struct {
	products repository.Products
	orders   repository.Orders
	tx       repository.Transactor
	log      *zap.Logger
	metrics  Recorder

	// strict rejects transitions out of delivered/cancelled and backwards
	// moves; off by default.
	strict bool
	now    func() time.Time
}

func NewOrderService(store *repository.Store, log *zap.Logger, rec Recorder, strictTransitions bool) *OrderService {
	return &OrderService{
		products: store.Products,
		orders:   store.Orders,
		tx:       store.Tx,
		log:      log,
		metrics:  recorderOrNop(rec),
		strict:   strictTransitions,
		now:      time.Now,
	}
}

// NewOrderNumber returns "ORD-<UTC timestamp>-<8 random hex>". Numbers sort
// by creation second; the random suffix keeps them unique within a second.
func NewOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", t.UTC().Format("20060102150405"), suffix)
}

// Place validates every line against current stock before touching
// anything, then applies all conditional stock decrements and the order
// insert in one transaction. Either the whole order lands or nothing does.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrder(&in); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; ; attempt++ {
		order, err = s.placeOnce(ctx, in)
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
		if attempt == orderNumberAttempts {
			err = apperror.Internal(err, "Failed to create order")
			break
		}
		s.log.Warn("Order number taken, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			err = apperror.Internal(err, "Failed to create order")
		}
		switch {
		case apperror.IsKind(err, apperror.KindConflict):
			s.metrics.StockConflict()
			s.log.Info("Order rejected", zap.Error(err))
		case apperror.IsKind(err, apperror.KindInternal):
			s.log.Error("Failed to create order", zap.Error(err))
		default:
			s.log.Info("Order rejected", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.OrderPlaced(string(order.PaymentMethod))
	s.log.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// placeOnce runs one placement transaction. A duplicate order number aborts
// the whole transaction on MongoDB, so retries start a new one.
func (s *OrderService) placeOnce(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.buildOrder(ctx, in)
		if err != nil {
			return err
		}

		for _, item := range in.Items {
			err := s.products.DecrementStock(ctx, item.ProductID, item.Size, item.Quantity)
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return apperror.Conflict("Insufficient stock for %s", nameOf(o, item.ProductID))
			case errors.Is(err, repository.ErrNotFound):
				return apperror.NotFound("Product not found: %s", item.ProductID.Hex())
			case err != nil:
				return apperror.Internal(err, "Failed to create order")
			}
		}

		if err := s.orders.Create(ctx, o); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: %s", errOrderNumberTaken, o.OrderNumber)
			}
			return apperror.Internal(err, "Failed to create order")
		}
		order = o
		return nil
	})
	return order, err
}

// buildOrder reads every product, checks the requested quantities against
// current stock (summing repeated lines) and snapshots name, price and
// image into the order items.
func (s *OrderService) buildOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	type stockKey struct {
		id   primitive.ObjectID
		size string
	}
	wantTotal := map[primitive.ObjectID]int{}
	wantSize := map[stockKey]int{}
	products := map[primitive.ObjectID]*models.Product{}

	items := make([]models.OrderItem, 0, len(in.Items))
	total := decimal.Zero

	for _, line := range in.Items {
		p, ok := products[line.ProductID]
		if !ok {
			var err error
			p, err = s.products.Get(ctx, line.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.NotFound("Product not found: %s", line.ProductID.Hex())
			}
			if err != nil {
				return nil, apperror.Internal(err, "Failed to create order")
			}
			products[line.ProductID] = p
		}

		wantTotal[line.ProductID] += line.Quantity
		if wantTotal[line.ProductID] > p.Stock {
			return nil, apperror.Conflict("Insufficient stock for %s", p.Name)
		}
		if line.Size != "" {
			available, ok := p.SizeStock(line.Size)
			if !ok {
				return nil, apperror.Validation("Size %s is not available for %s", line.Size, p.Name)
			}
			k := stockKey{line.ProductID, line.Size}
			wantSize[k] += line.Quantity
			if wantSize[k] > available {
				return nil, apperror.Conflict("Insufficient stock for %s (size %s)", p.Name, line.Size)
			}
		}

		item := models.OrderItem{
			ProductID: p.ID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     p.Price,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
		}
		total = total.Add(item.LineTotal().Decimal)
		items = append(items, item)
	}

	now := s.now()
	customer := in.CustomerInfo
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))

	return &models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     NewOrderNumber(now),
		UserID:          in.UserID,
		Items:           items,
		TotalAmount:     models.NewMoney(total).Cents(),
		ShippingAddress: in.ShippingAddress,
		CustomerInfo:    customer,
		PaymentMethod:   in.PaymentMethod,
		Status:          models.OrderStatusPending,
		PaymentStatus:   in.PaymentMethod.InitialPaymentStatus(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func validatePlaceOrder(in *PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return apperror.Validation("Order must contain at least one item")
	}
	for i, item := range in.Items {
		if item.ProductID.IsZero() {
			return apperror.Validation("items[%d].product is required", i)
		}
		if item.Quantity < 1 {
			return apperror.Validation("items[%d].quantity must be at least 1", i)
		}
	}

	c := in.CustomerInfo
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Mobile) == "" {
		return apperror.Validation("Customer email and mobile number are required")
	}
	if !validEmail(c.Email) {
		return apperror.Validation("Customer email is invalid")
	}

	a := in.ShippingAddress
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.ZipCode) == "" {
		return apperror.Validation("Complete shipping address is required")
	}

	switch in.PaymentMethod {
	case models.PaymentMethodCard, models.PaymentMethodCOD:
	case "":
		return apperror.Validation("Payment method is required")
	default:
		return apperror.Validation("Payment method must be card or cod")
	}
	return nil
}

func nameOf(o *models.Order, id primitive.ObjectID) string {
	for _, item := range o.Items {
		if item.ProductID == id {
			return item.Name
		}
	}
	return id.Hex()
}

// ListForUser returns orders placed while signed in as user, plus guest
// orders placed with the user's e-mail.
func (s *OrderService) ListForUser(ctx context.Context, user *models.User) ([]models.Order, error) {
	orders, err := s.orders.List(ctx, repository.OrderFilter{UserID: &user.ID, Email: user.Email})
	if err != nil {
		s.log.Error("Failed to fetch user orders", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to fetch orders")
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		s.log.Error("Failed to fetch all orders", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to fetch orders")
	}
	return orders, nil
}

// Get returns an order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID, viewer *models.User) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order", "Failed to fetch order")
	}
	if viewer.IsAdmin() {
		return order, nil
	}
	owned := (order.UserID != nil && *order.UserID == viewer.ID) ||
		strings.EqualFold(order.CustomerInfo.Email, viewer.Email)
	if !owned {
		// Not revealing that the order exists.
		return nil, apperror.NotFound("Order not found")
	}
	return order, nil
}

// UpdateStatus sets the order status. Inventory is not touched: stock was
// taken at placement and cancelling does not restock.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Invalid order status: %q", status)
	}

	var from []models.OrderStatus
	if s.strict {
		from = status.Sources()
	}

	order, err := s.orders.UpdateStatus(ctx, id, status, from...)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		current, gerr := s.orders.Get(ctx, id)
		if gerr != nil {
			return nil, storeErr(gerr, "Order", "Failed to update order status")
		}
		return nil, apperror.Conflict("Cannot change order status from %s to %s", current.Status, status)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to update order status", zap.String("order_id", id.Hex()), zap.Error(err))
		}
		return nil, storeErr(err, "Order", "Failed to update order status")
	}

	s.log.Info("Order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(status)))
	return order, nil
}
