package handlers

import (
	"net/http"
	"strings"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/currency"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
)

type conversionResponse struct {
	Amount float64      `json:"amount"`
	From   string       `json:"from"`
	To     string       `json:"to"`
	Result models.Money `json:"result"`
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (h *Handler) GetRates(c echo.Context) error {
	rates := map[string]float64{}
	for code, rate := range currency.Rates() {
		rates[code] = rate.InexactFloat64()
	}
	return c.JSON(http.StatusOK, ratesResponse{Base: currency.Base, Rates: rates})
}

// ConvertCurrency serves /currency/convert?amount=&from=&to=.
func (h *Handler) ConvertCurrency(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("amount"))
	amount, err := models.MoneyFromString(raw)
	if err != nil {
		return apperror.Validation("amount must be a number")
	}
	from := strings.ToUpper(c.QueryParam("from"))
	to := strings.ToUpper(c.QueryParam("to"))
	if from == "" {
		from = currency.Base
	}

	result, err := currency.Convert(amount.Decimal, from, to)
	if err != nil {
		return apperror.Validation("%v", err)
	}
	return c.JSON(http.StatusOK, conversionResponse{
		Amount: amount.InexactFloat64(),
		From:   from,
		To:     to,
		Result: models.NewMoney(result),
	})
}
