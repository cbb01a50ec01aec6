// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml"
)

type Config struct {
	Socket     string `toml:"socket"`
	OwnerGroup string `toml:"group"`
	Transport  string `toml:"transport"` // "serial" or "tcp"
	DevicePath string `toml:"device_path"`
	BaudRate   int    `toml:"device_baud_rate"`
	TCPAddr    string `toml:"tcp_address"`
	BufferSize int    `toml:"buffer_size"`
	LogLevel   string `toml:"log_level"`
}

func Parse(file string) (c *Config, err error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		err = fmt.Errorf("config.Parse: %w", err)
		return
	}

	c = &Config{
		Socket:   "/var/run/rosaic.sock",
		BaudRate: 115200,
		LogLevel: "info",
	}

	if err = toml.Unmarshal(contents, c); err != nil {
		err = fmt.Errorf("config.Parse: %w", err)
		return
	}

	switch c.Transport {
	case "serial":
		if c.DevicePath == "" {
			err = fmt.Errorf("config.Parse: transport %q needs device_path", c.Transport)
		}
	case "tcp":
		if c.TCPAddr == "" {
			err = fmt.Errorf("config.Parse: transport %q needs tcp_address", c.Transport)
		}
	default:
		err = fmt.Errorf("config.Parse: unknown transport %q", c.Transport)
	}

	return
}
