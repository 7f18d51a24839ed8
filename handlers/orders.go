package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/middleware"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
)

type orderItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	CustomerInfo    models.CustomerInfo    `json:"customerInfo"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod" validate:"required,oneof=card cod"`
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type createdOrder struct {
	ID            string               `json:"_id"`
	OrderNumber   string               `json:"orderNumber"`
	TotalAmount   models.Money         `json:"totalAmount"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

type createOrderResponse struct {
	Message string       `json:"message"`
	Order   createdOrder `json:"order"`
}

// CreateOrder places an order for a guest, or for the signed-in user when
// a valid bearer token is sent.
func (h *Handler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := services.PlaceOrderInput{
		Items:           make([]services.LineItem, 0, len(req.Items)),
		ShippingAddress: req.ShippingAddress,
		CustomerInfo:    req.CustomerInfo,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, item := range req.Items {
		id, err := services.ParseID(item.Product, "product")
		if err != nil {
			return err
		}
		in.Items = append(in.Items, services.LineItem{ProductID: id, Size: item.Size, Quantity: item.Quantity})
	}
	if user, ok := middleware.CurrentUser(c); ok {
		in.UserID = &user.ID
	}

	order, err := h.Orders.Place(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createOrderResponse{
		Message: "Order created successfully",
		Order: createdOrder{
			ID:            order.ID.Hex(),
			OrderNumber:   order.OrderNumber,
			TotalAmount:   order.TotalAmount,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
		},
	})
}

func (h *Handler) GetMyOrders(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.Orders.ListForUser(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetAllOrders(c echo.Context) error {
	orders, err := h.Orders.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}
	order, err := h.Orders.Get(c.Request().Context(), id, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, err := paramID(c, "id", "order")
	if err != nil {
		return err
	}
	var req orderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
