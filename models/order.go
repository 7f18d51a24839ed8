package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo is the strict lifecycle: forward along
// pending → processing → shipped → delivered, or to cancelled from any
// non-terminal state. Setting the current status again is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// Sources returns the statuses from which CanTransitionTo(s) holds.
func (s OrderStatus) Sources() []OrderStatus {
	var from []OrderStatus
	for _, st := range OrderStatuses {
		if st.CanTransitionTo(s) {
			from = append(from, st)
		}
	}
	return from
}

var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// InitialPaymentStatus: card payments are captured at checkout, cash on
// delivery is settled later.
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentMethodCard {
		return PaymentStatusCompleted
	}
	return PaymentStatusPending
}

// OrderItem is a snapshot of the product taken when the order was placed.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     Money              `bson:"price" json:"price"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
}

func (i OrderItem) LineTotal() Money {
	return NewMoney(i.Price.Mul(decimalFromInt(i.Quantity)))
}

type ShippingAddress struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	ZipCode string `bson:"zipCode" json:"zipCode" validate:"required"`
	Country string `bson:"country" json:"country"`
	State   string `bson:"state" json:"state"`
}

type CustomerInfo struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email" json:"email" validate:"required,email"`
	Mobile    string `bson:"mobile" json:"mobile" validate:"required"`
}

type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	OrderNumber     string              `bson:"orderNumber" json:"orderNumber"`
	UserID          *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Items           []OrderItem         `bson:"items" json:"items"`
	TotalAmount     Money               `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	CustomerInfo    CustomerInfo        `bson:"customerInfo" json:"customerInfo"`
	PaymentMethod   PaymentMethod       `bson:"paymentMethod" json:"paymentMethod"`
	Status          OrderStatus         `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
