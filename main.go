// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/mstarongithub/waytag/config"
)

var (
	configPath = flag.String("config", "", "Path to the config file. Defaults to the XDG config dir")
	toolMode   = flag.Bool("tool", false, "Start as a tool instead of a compositor")
	help       = flag.Bool("help", false, "Show the help message")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	store, err := config.NewStore(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Fatalln("loading config")
	}

	if *toolMode {
		utilMain(store.Get())
		return
	}
	wlMain(store)
}
