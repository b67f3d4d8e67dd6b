package config

import (
	"github.com/jcooky/go-din"
)

type LogConfig struct {
	LogLevel   string `env:"LOG_LEVEL"`
	LogHandler string `env:"LOG_HANDLER"`
}

func init() {
	din.RegisterT(func(c *din.Container) (*LogConfig, error) {
		conf := &LogConfig{
			LogLevel:   "debug",
			LogHandler: "default",
		}
		return conf, resolveConfig(conf, c.Env == din.EnvTest)
	})
}
