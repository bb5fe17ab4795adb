package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"tally/internal/config"
	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/wsbridge"
)

// commandContext carries the persistent flags and lazily shared state every
// subcommand needs.
type commandContext struct {
	configFlag *string
	addrFlag   *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, addrFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		addrFlag:   addrFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// daemonAddr resolves the daemon address: the --addr flag wins, then the
// configured bind address.
func (c *commandContext) daemonAddr() (string, error) {
	if c.addrFlag != nil && strings.TrimSpace(*c.addrFlag) != "" {
		return strings.TrimSpace(*c.addrFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Server.Bind, nil
}

// connect dials the daemon and wraps the connection in a protocol manager.
// The returned func tears both down.
func (c *commandContext) connect() (*protocol.Manager, func(), error) {
	addr, err := c.daemonAddr()
	if err != nil {
		return nil, nil, err
	}

	conn, err := wsbridge.Dial(addr, 5*time.Second, logging.NewNop())
	if err != nil {
		return nil, nil, err
	}
	mgr, err := protocol.NewManager(conn, 30*time.Second, logging.NewNop())
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return mgr, func() {
		mgr.Dispose()
		conn.Close()
	}, nil
}

// request performs one round-trip and returns the raw response message.
func (c *commandContext) request(ctx context.Context, msgType string, payload any) (*protocol.Message, error) {
	mgr, done, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer done()
	return mgr.Request(ctx, msgType, payload)
}
