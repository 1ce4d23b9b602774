package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	m.OrderPlaced(0)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

func TestMetricsObserveMarketplace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	mkt, err := marketplace.New[model.Product](1, marketplace.WithObserver(m))
	require.NoError(t, err)
	tea := model.Product{Type: model.ProductTea, Name: "Linden", Price: 9, TeaType: "Herbal"}

	p := mkt.RegisterProducer()
	require.True(t, mkt.Publish(p, tea))
	require.False(t, mkt.Publish(p, tea))
	require.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues(p, StatusAccepted)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues(p, StatusRejected)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.queueLength.WithLabelValues(p)))

	c := mkt.NewCart()
	require.True(t, mkt.AddToCart(c, tea))
	require.Equal(t, 0.0, testutil.ToFloat64(m.queueLength.WithLabelValues(p)))
	require.True(t, mkt.RemoveFromCart(c, tea))
	require.False(t, mkt.RemoveFromCart(c, tea))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues(OpAdd, StatusAccepted)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues(OpRemove, StatusAccepted)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues(OpRemove, StatusRejected)))

	_, ok := mkt.PlaceOrder(c)
	require.True(t, ok)
	require.Equal(t, 1.0, testutil.ToFloat64(m.orders))
}
