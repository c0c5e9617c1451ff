// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

type StartType int

const (
	// Tells waytag to start a repl in parallel for interacting with it
	START_REPL = StartType(iota)
	// Tells waytag to execute a specific command on startup
	START_SINGLE_COMMAND
	// Tells waytag to start without any specific targets
	// Note: Good luck interacting with it :3
	START_NONE
)

type DecorationPolicy string

const (
	DecorationNone             DecorationPolicy = "none"
	DecorationClient           DecorationPolicy = "client"
	DecorationServer           DecorationPolicy = "server"
	DecorationClientPreferred  DecorationPolicy = "client-preferred"
	DecorationClientOnFloating DecorationPolicy = "client-on-floating"
)

type Config struct {
	StartType StartType `envconfig:"START_TYPE,omitempty" toml:"start_type,omitempty"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand *string `envconfig:"START_COMMAND,omitempty" toml:"start_command,omitempty"`

	// Window management defaults
	BorderWidth    int              `envconfig:"BORDER_WIDTH,omitempty"    toml:"border_width,omitempty"`
	BorderRotation int              `envconfig:"BORDER_ROTATION,omitempty" toml:"border_rotation,omitempty"`
	UselessGaps    int              `envconfig:"USELESS_GAPS,omitempty"    toml:"useless_gaps,omitempty"`
	Decoration     DecorationPolicy `envconfig:"DECORATION,omitempty"      toml:"decoration,omitempty"`
	// Show every window in task bars regardless of tag visibility
	TasklistShowAll bool `envconfig:"TASKLIST_SHOW_ALL,omitempty" toml:"tasklist_show_all,omitempty"`
}

func Default() Config {
	return Config{
		StartType:   START_REPL,
		BorderWidth: 2,
		UselessGaps: 4,
		Decoration:  DecorationClientOnFloating,
	}
}
