// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
)

const envPrefix = "WAYTAG"

// DefaultPath resolves the config file inside the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "waytag", "config.toml")
}

// Load reads the TOML file at path, then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("applying env overrides: %w", err)
	}
	return cfg, nil
}

// Store holds the live config and tells subscribers when a reload
// commits. Subscribers run on the caller's goroutine.
type Store struct {
	path        string
	current     Config
	subscribers []func(old, new Config)
}

func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: cfg}, nil
}

func (s *Store) Get() Config {
	return s.current
}

// OnCommit registers fn to run after every successful reload.
func (s *Store) OnCommit(fn func(old, new Config)) {
	s.subscribers = append(s.subscribers, fn)
}

// Reload re-reads the file and commits the result. The previous config
// stays in place when loading fails.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	old := s.current
	s.current = cfg
	for _, fn := range s.subscribers {
		fn(old, cfg)
	}
	return nil
}
