// File: internal/agent/main_test.go
package agent_test

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/embody-cli/internal/config"
	"github.com/xkilldash9x/embody-cli/internal/observability"
)

// TestMain installs the global logger the agent tests log through and checks
// for leaked goroutines once they are done.
func TestMain(m *testing.M) {
	logConfig := config.NewDefaultConfig().Logger()
	logConfig.Level = "debug"
	logConfig.ServiceName = "test-suite"
	logConfig.Format = "console"

	observability.Initialize(logConfig, zapcore.Lock(os.Stdout))

	exitCode := m.Run()

	observability.Sync()
	observability.ResetForTest()

	if exitCode == 0 {
		if err := goleak.Find(); err != nil {
			fmt.Fprintf(os.Stderr, "goleak: %v\n", err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
