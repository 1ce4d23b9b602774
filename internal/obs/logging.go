// Package obs contains observability utilities such as logging.
package obs

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the global structured logger used by the simulator.
//
// It starts out as a no-op logger so packages can log before InitLogger runs.
var Logger = zap.NewNop().Sugar()

// InitLogger replaces the global Logger. Verbose selects a development logger
// with debug level, otherwise a JSON production logger at info level is used.
func InitLogger(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	Logger = l.Sugar()
	return nil
}

// Sync flushes buffered log entries. Errors are ignored since stdout/stderr
// sync commonly fails on terminals.
func Sync() {
	_ = Logger.Sync()
}
