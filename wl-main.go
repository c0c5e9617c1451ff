package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"

	"github.com/mstarongithub/waytag/config"
)

func fatal(msg string, err error) {
	fmt.Printf("error %s: %s\n", msg, err)
	os.Exit(1)
}

func wlMain(store *config.Store) {
	wlroots.OnLog(wlroots.LogImportanceError, func(importance wlroots.LogImportance, msg string) {
		switch importance {
		case wlroots.LogImportanceDebug:
			logrus.Debugln(msg)
		case wlroots.LogImportanceInfo:
			logrus.Infoln(msg)
		case wlroots.LogImportanceError:
			logrus.Errorln(msg)
		case wlroots.LogImportanceSilent:
			return
		}
	})

	// start the server
	conf := store.Get()
	server, err := NewServer(&conf)
	if err != nil {
		fatal("initializing server", err)
	}
	if err = server.Start(); err != nil {
		fatal("starting server", err)
	}

	// A config reload with different gaps or border styling re-flows
	// every affected workspace on the next frame.
	store.OnCommit(func(old, new config.Config) {
		if old.UselessGaps != new.UselessGaps {
			server.wm.ApplyGapChange(new.UselessGaps)
		}
		if old.BorderWidth != new.BorderWidth || old.BorderRotation != new.BorderRotation {
			server.wm.ApplyBorderChange(new.BorderWidth, new.BorderRotation)
		}
	})

	go replRunner(server, store)

	// start the wayland event loop
	if err = server.Run(); err != nil {
		fatal("running server", err)
	}
}
