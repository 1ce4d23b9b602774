package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "QUEUE_SIZE_PER_PRODUCER", "LOG_VERBOSE",
		"DATABASE_URL", "NATS_URL", "STAN_CLUSTER_ID", "STAN_CLIENT_ID", "STAN_SUBJECT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.HTTPAddr)
	require.Equal(t, 15*time.Second, c.ShutdownTimeout)
	require.Equal(t, 8, c.QueueSizePerProducer)
	require.False(t, c.Verbose)
	require.Empty(t, c.DatabaseURL)
	require.Empty(t, c.NatsURL)
	require.Equal(t, "marketplace-cluster", c.StanClusterID)
	require.Equal(t, "orders", c.StanSubject)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("QUEUE_SIZE_PER_PRODUCER", "3")
	t.Setenv("LOG_VERBOSE", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/market")
	t.Setenv("STAN_SUBJECT", "placed")
	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", c.HTTPAddr)
	require.Equal(t, 2*time.Second, c.ShutdownTimeout)
	require.Equal(t, 3, c.QueueSizePerProducer)
	require.True(t, c.Verbose)
	require.Equal(t, "postgres://u:p@localhost:5432/market", c.DatabaseURL)
	require.Equal(t, "placed", c.StanSubject)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string][2]string{
		"zero_queue_size":   {"QUEUE_SIZE_PER_PRODUCER", "0"},
		"bad_queue_size":    {"QUEUE_SIZE_PER_PRODUCER", "many"},
		"negative_shutdown": {"SHUTDOWN_TIMEOUT", "-1s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}
