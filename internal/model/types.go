// Package model defines domain types used by the marketplace simulator.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Product types understood by the simulator.
const (
	ProductCoffee = "Coffee"
	ProductTea    = "Tea"
)

// Product is an item offered on the marketplace. It is a comparable value:
// two products are the same item when every field matches.
type Product struct {
	Type    string `json:"product_type" yaml:"product_type"`
	Name    string `json:"name" yaml:"name"`
	Price   int    `json:"price" yaml:"price"`
	Acidity string `json:"acidity,omitempty" yaml:"acidity,omitempty"`
	Roast   string `json:"roast_level,omitempty" yaml:"roast_level,omitempty"`
	TeaType string `json:"type,omitempty" yaml:"type,omitempty"`
}

// String renders the product the way purchase lines report it.
func (p Product) String() string {
	switch p.Type {
	case ProductCoffee:
		return fmt.Sprintf("Coffee(name='%s', price=%d, acidity='%s', roast_level='%s')", p.Name, p.Price, p.Acidity, p.Roast)
	case ProductTea:
		return fmt.Sprintf("Tea(name='%s', price=%d, type='%s')", p.Name, p.Price, p.TeaType)
	default:
		return fmt.Sprintf("%s(name='%s', price=%d)", p.Type, p.Name, p.Price)
	}
}

// CatalogItem is one line of a producer's catalog.
type CatalogItem struct {
	Product        Product
	Quantity       int
	ProductionTime time.Duration
}

// Action types of a consumer cart script.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Action is a single step of a consumer cart script.
type Action struct {
	Type     string
	Product  Product
	Quantity int
}

// CartScript is the ordered list of actions replayed against one cart.
type CartScript []Action

// OrderItem is a purchased product together with the producer it came from.
type OrderItem struct {
	ProducerID string  `json:"producer_id"`
	Product    Product `json:"product"`
}

// Order is a placed cart.
type Order struct {
	ID       uuid.UUID   `json:"id"`
	Consumer string      `json:"consumer,omitempty"`
	CartID   int         `json:"cart_id"`
	Items    []OrderItem `json:"items"`
	PlacedAt time.Time   `json:"placed_at"`
}
