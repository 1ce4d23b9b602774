package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

// Publisher is the subset of stan.Conn used to emit orders.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// StanSink publishes every placed order as JSON to a NATS Streaming subject.
type StanSink struct {
	Conn    Publisher
	Subject string
}

// DialStan connects to NATS Streaming. An empty clientID gets a unique one.
func DialStan(clusterID, clientID, url, subject string) (*StanSink, stan.Conn, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("marketplace-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(url))
	if err != nil {
		return nil, nil, fmt.Errorf("stan connect: %w", err)
	}
	return &StanSink{Conn: sc, Subject: subject}, sc, nil
}

func (s *StanSink) Record(_ context.Context, o model.Order) error {
	if err := validate(o); err != nil {
		return err
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return wrap("encode", o, err)
	}
	if err := s.Conn.Publish(s.Subject, raw); err != nil {
		return wrap("publish", o, err)
	}
	return nil
}

var _ Sink = (*StanSink)(nil)
