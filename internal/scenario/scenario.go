// Package scenario loads simulation scenarios: the product catalog, the
// producers that publish it and the consumers with their cart scripts.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

// DefaultQueueSize is used when a scenario does not set queue_size_per_producer.
const DefaultQueueSize = 8

// DefaultRetryWait, in seconds, replaces a zero republish_wait_time or
// retry_wait_time.
const DefaultRetryWait = 0.1

// ErrValidation marks scenario content errors.
var ErrValidation = errors.New("invalid scenario")

// Scenario is a resolved, validated simulation input.
type Scenario struct {
	QueueSizePerProducer int
	Producers            []Producer
	Consumers            []Consumer
}

// Producer describes one producer worker.
type Producer struct {
	Name          string
	RepublishWait time.Duration
	Catalog       []model.CatalogItem
}

// Consumer describes one consumer worker.
type Consumer struct {
	Name      string
	RetryWait time.Duration
	Carts     []model.CartScript
}

// Load reads a scenario file, expanding ${VAR} environment references.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes, defaults and validates scenario content.
func Parse(data []byte) (*Scenario, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario yaml: %w", err)
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f.resolve(), nil
}

func (f *file) applyDefaults() {
	if f.QueueSizePerProducer == 0 {
		f.QueueSizePerProducer = DefaultQueueSize
	}
	for i := range f.Producers {
		if f.Producers[i].Name == "" {
			f.Producers[i].Name = fmt.Sprintf("prod%d", i+1)
		}
		if f.Producers[i].RepublishWait == 0 {
			f.Producers[i].RepublishWait = DefaultRetryWait
		}
	}
	for i := range f.Consumers {
		if f.Consumers[i].Name == "" {
			f.Consumers[i].Name = fmt.Sprintf("cons%d", i+1)
		}
		if f.Consumers[i].RetryWait == 0 {
			f.Consumers[i].RetryWait = DefaultRetryWait
		}
	}
}

func (f *file) validate() error {
	if f.QueueSizePerProducer < 0 {
		return fmt.Errorf("%w: queue_size_per_producer must be positive, got %d", ErrValidation, f.QueueSizePerProducer)
	}
	for _, p := range f.Producers {
		if p.RepublishWait < 0 {
			return fmt.Errorf("%w: producer %s: negative republish_wait_time", ErrValidation, p.Name)
		}
		for _, line := range p.Products {
			if _, ok := f.Products[line.ProductID]; !ok {
				return fmt.Errorf("%w: producer %s: unknown product %q", ErrValidation, p.Name, line.ProductID)
			}
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: producer %s: quantity of %s must be positive", ErrValidation, p.Name, line.ProductID)
			}
			if line.ProductionTime < 0 {
				return fmt.Errorf("%w: producer %s: negative production time for %s", ErrValidation, p.Name, line.ProductID)
			}
		}
	}
	for _, c := range f.Consumers {
		if c.RetryWait < 0 {
			return fmt.Errorf("%w: consumer %s: negative retry_wait_time", ErrValidation, c.Name)
		}
		for i, cart := range c.Carts {
			for _, a := range cart {
				if a.Type != model.ActionAdd && a.Type != model.ActionRemove {
					return fmt.Errorf("%w: consumer %s cart %d: unknown action type %q", ErrValidation, c.Name, i, a.Type)
				}
				if _, ok := f.Products[a.Product]; !ok {
					return fmt.Errorf("%w: consumer %s cart %d: unknown product %q", ErrValidation, c.Name, i, a.Product)
				}
				if a.Quantity <= 0 {
					return fmt.Errorf("%w: consumer %s cart %d: quantity of %s must be positive", ErrValidation, c.Name, i, a.Product)
				}
			}
		}
	}
	return nil
}

func (f *file) resolve() *Scenario {
	products := make(map[string]model.Product, len(f.Products))
	for id, p := range f.Products {
		products[id] = model.Product{
			Type:    p.Type,
			Name:    p.Name,
			Price:   p.Price,
			Acidity: string(p.Acidity),
			Roast:   p.Roast,
			TeaType: p.TeaType,
		}
	}

	s := &Scenario{QueueSizePerProducer: f.QueueSizePerProducer}
	for _, p := range f.Producers {
		catalog := make([]model.CatalogItem, len(p.Products))
		for i, line := range p.Products {
			catalog[i] = model.CatalogItem{
				Product:        products[line.ProductID],
				Quantity:       line.Quantity,
				ProductionTime: seconds(line.ProductionTime),
			}
		}
		s.Producers = append(s.Producers, Producer{
			Name:          p.Name,
			RepublishWait: seconds(p.RepublishWait),
			Catalog:       catalog,
		})
	}
	for _, c := range f.Consumers {
		carts := make([]model.CartScript, len(c.Carts))
		for i, cart := range c.Carts {
			script := make(model.CartScript, len(cart))
			for j, a := range cart {
				script[j] = model.Action{Type: a.Type, Product: products[a.Product], Quantity: a.Quantity}
			}
			carts[i] = script
		}
		s.Consumers = append(s.Consumers, Consumer{
			Name:      c.Name,
			RetryWait: seconds(c.RetryWait),
			Carts:     carts,
		})
	}
	return s
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
