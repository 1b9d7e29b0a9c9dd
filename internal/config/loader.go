package config

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"
)

// Keys looked up through the env function passed to LoadConfig.
const (
	EnvURI       = "uri"
	EnvCustomDNS = "custom_dns"
	EnvTimeout   = "timeout"
)

func LoadConfig(r io.Reader, env func(key string) string) (*Config, error) {
	rawData, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var data interface{}
	err = json.Unmarshal(rawData, &data)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	rawConfig, s, f := Descriptor().Describe(data)
	ok := s > 0 && f < 1
	if !ok {
		return nil, ErrBadConfig
	}
	config, ok := rawConfig.(*Config)
	if !ok || config == nil {
		return nil, ErrBadConfig
	}
	if env != nil {
		if err := config.applyEnv(env); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv(env func(key string) string) error {
	if v := strings.TrimSpace(env(EnvURI)); v != "" {
		c.URI = v
	}
	if v := strings.TrimSpace(env(EnvCustomDNS)); v != "" {
		c.CustomDNS = v
	}
	if v := strings.TrimSpace(env(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			seconds, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return ErrInvalidTimeout
			}
			d = time.Duration(seconds * float64(time.Second))
		}
		c.Timeout = d
	}
	return nil
}
