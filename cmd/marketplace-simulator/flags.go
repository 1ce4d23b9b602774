package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"LOG_VERBOSE"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Postgres URL to archive placed orders to (empty disables)",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "nats-url",
			Usage:   "NATS Streaming URL to publish placed orders to (empty disables)",
			EnvVars: []string{"NATS_URL"},
		},
	}
}

// simulateFlags returns the flags for the simulate command
func simulateFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:     "scenario",
			Aliases:  []string{"s"},
			Usage:    "Path to the YAML or JSON scenario file",
			EnvVars:  []string{"SCENARIO"},
			Required: true,
		},
		&cli.IntFlag{
			Name:    "queue-size",
			Aliases: []string{"q"},
			Usage:   "Override the scenario's queue_size_per_producer",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Abort the simulation after this long (0 waits forever)",
			EnvVars: []string{"SIMULATION_TIMEOUT"},
		},
	)
}

// serveFlags returns the flags for the serve command
func serveFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "HTTP listen address",
			EnvVars: []string{"HTTP_ADDR"},
			Value:   ":8080",
		},
		&cli.IntFlag{
			Name:    "queue-size",
			Aliases: []string{"q"},
			Usage:   "Maximum queued products per producer",
			EnvVars: []string{"QUEUE_SIZE_PER_PRODUCER"},
			Value:   8,
		},
		&cli.DurationFlag{
			Name:    "shutdown-timeout",
			Usage:   "Grace period for in-flight requests on shutdown",
			EnvVars: []string{"SHUTDOWN_TIMEOUT"},
			Value:   15 * time.Second,
		},
	)
}
