package square

import (
	"strings"

	sq "github.com/square/square-go-sdk"
)

const defaultItemName = "Storefront order"

// OrderCreateParams describes a single-item order. AmountMinor is already in
// the currency's smallest unit.
type OrderCreateParams struct {
	LocationID     string
	ReferenceID    string
	ItemName       string
	AmountMinor    int64
	Currency       string
	IdempotencyKey string
}

func (p OrderCreateParams) request() *sq.CreateOrderRequest {
	name := strings.TrimSpace(p.ItemName)
	if name == "" {
		name = defaultItemName
	}
	currency := sq.Currency(strings.ToUpper(strings.TrimSpace(p.Currency)))
	if currency == "" {
		currency = sq.Currency("INR")
	}
	amount := p.AmountMinor

	item := &sq.OrderLineItem{Name: &name, Quantity: "1"}
	if amount != 0 {
		item.BasePriceMoney = &sq.Money{Amount: &amount, Currency: &currency}
	}

	req := &sq.CreateOrderRequest{
		Order: &sq.Order{
			LocationID: p.LocationID,
			LineItems:  []*sq.OrderLineItem{item},
		},
	}
	if key := strings.TrimSpace(p.IdempotencyKey); key != "" {
		req.IdempotencyKey = &key
	}
	if ref := strings.TrimSpace(p.ReferenceID); ref != "" {
		req.Order.ReferenceID = &ref
	}
	return req
}
