package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// file mirrors the on-disk scenario layout. JSON input parses too, since it is
// valid YAML.
type file struct {
	QueueSizePerProducer int                    `yaml:"queue_size_per_producer"`
	Products             map[string]productSpec `yaml:"products"`
	Producers            []producerSpec         `yaml:"producers"`
	Consumers            []consumerSpec         `yaml:"consumers"`
}

type productSpec struct {
	Type    string     `yaml:"product_type"`
	Name    string     `yaml:"name"`
	Price   int        `yaml:"price"`
	Acidity flexString `yaml:"acidity"`
	Roast   string     `yaml:"roast_level"`
	TeaType string     `yaml:"type"`
}

type producerSpec struct {
	Name          string        `yaml:"name"`
	RepublishWait float64       `yaml:"republish_wait_time"`
	Products      []catalogLine `yaml:"products"`
}

type consumerSpec struct {
	Name      string         `yaml:"name"`
	RetryWait float64        `yaml:"retry_wait_time"`
	Carts     [][]actionSpec `yaml:"carts"`
}

type actionSpec struct {
	Type     string `yaml:"type"`
	Product  string `yaml:"product"`
	Quantity int    `yaml:"quantity"`
}

// catalogLine is a [product_id, quantity, production_time_seconds] triple.
type catalogLine struct {
	ProductID      string
	Quantity       int
	ProductionTime float64
}

func (c *catalogLine) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 3 {
		return fmt.Errorf("line %d: catalog entry must be [product, quantity, production_time]", n.Line)
	}
	c.ProductID = n.Content[0].Value
	if err := n.Content[1].Decode(&c.Quantity); err != nil {
		return fmt.Errorf("line %d: quantity: %w", n.Line, err)
	}
	if err := n.Content[2].Decode(&c.ProductionTime); err != nil {
		return fmt.Errorf("line %d: production time: %w", n.Line, err)
	}
	return nil
}

// flexString keeps a scalar's literal text, so acidity 5.10 stays "5.10".
type flexString string

func (f *flexString) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	*f = flexString(n.Value)
	return nil
}
