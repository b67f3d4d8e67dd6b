package config

import (
	"time"

	"github.com/jcooky/go-din"
)

type CoreConfig struct {
	Host                string `env:"HOST"`
	Port                int    `env:"PORT"`
	DatabaseUrl         string `env:"DATABASE_URL"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE"`

	// Deadline for one turn executor invocation. Exceeding it is treated
	// as ExecutorUnavailable and leaves the thread in its prior state.
	ExecutorTimeoutSec int `env:"EXECUTOR_TIMEOUT_SEC"`

	// Bound on how long a snapshot read waits for an in-flight turn
	// before falling back to the last committed state.
	SnapshotWaitMs int `env:"SNAPSHOT_WAIT_MS"`

	// Candidates whose self-reported risk exceeds this require human
	// approval even without a redline.
	ApprovalRiskThreshold float64 `env:"APPROVAL_RISK_THRESHOLD"`

	PersonasDir string `env:"PERSONAS_DIR"`
}

func (c *CoreConfig) ExecutorTimeout() time.Duration {
	return time.Duration(c.ExecutorTimeoutSec) * time.Second
}

func (c *CoreConfig) SnapshotWait() time.Duration {
	return time.Duration(c.SnapshotWaitMs) * time.Millisecond
}

func init() {
	din.RegisterT(func(c *din.Container) (*CoreConfig, error) {
		conf := &CoreConfig{
			Host:                  "0.0.0.0",
			Port:                  8080,
			DatabaseUrl:           "negotiator.db",
			DatabaseAutoMigrate:   true,
			ExecutorTimeoutSec:    60,
			SnapshotWaitMs:        50,
			ApprovalRiskThreshold: 70,
			PersonasDir:           "data/personas",
		}
		if c.Env == din.EnvTest {
			conf.DatabaseUrl = "file::memory:?cache=shared"
		}
		return conf, resolveConfig(conf, c.Env == din.EnvTest)
	})
}
