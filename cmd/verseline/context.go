package main

import (
	"strings"

	"verseline/internal/config"
	"verseline/internal/queue"
)

// commandContext caches the loaded config and queue store across subcommands.
type commandContext struct {
	configFlag *string

	cfg   *config.Config
	store *queue.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// withStore opens the shared queue database for commands that read or mutate
// queue state directly. The daemon and CLI use the same SQLite file in WAL
// mode, so direct access stays safe while the daemon runs.
func (c *commandContext) withStore(fn func(*config.Config, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if c.store == nil {
		store, err := queue.Open(cfg)
		if err != nil {
			return err
		}
		c.store = store
	}
	return fn(cfg, c.store)
}

// daemonClient returns an API client for the configured bind address.
func (c *commandContext) daemonClient() (*daemonAPI, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return newDaemonAPI(cfg), nil
}
