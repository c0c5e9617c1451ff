package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mstarongithub/waytag/config"
	"github.com/mstarongithub/waytag/repl"
	"github.com/mstarongithub/waytag/util"
	"github.com/mstarongithub/waytag/util/multiplexer"
	"github.com/mstarongithub/waytag/util/wrappers"
	"github.com/mstarongithub/waytag/wm"
)

// Bus events forwarded to a repl watcher.
var watchedEvents = []string{
	wm.EventClientNew, wm.EventClientMap, wm.EventClientUnmap,
	wm.EventClientDestroy, wm.EventClientSwap,
	wm.EventContainerNew, wm.EventContainerDestroy,
	wm.EventContainerInsert, wm.EventContainerRemove, wm.EventContainerSwap,
	wm.EventScreenNew, wm.EventScreenDestroy,
	wm.EventScreenFocus, wm.EventScreenUnfocus,
}

type outputReport struct {
	Name            string `yaml:"name"`
	Box             string `yaml:"box"`
	ActiveWorkspace int    `yaml:"active_workspace"`
	ActiveTag       uint32 `yaml:"active_tag"`
	Layout          string `yaml:"layout"`
	Gaps            int    `yaml:"gaps"`
	Focused         bool   `yaml:"focused"`
}

type containerReport struct {
	ID         uint64   `yaml:"id"`
	Output     string   `yaml:"output"`
	Workspace  int      `yaml:"workspace"`
	Tag        uint32   `yaml:"tag"`
	Box        string   `yaml:"box"`
	Floating   bool     `yaml:"floating"`
	Maximized  bool     `yaml:"maximized"`
	Fullscreen bool     `yaml:"fullscreen"`
	Minimized  bool     `yaml:"minimized"`
	Sticky     bool     `yaml:"sticky"`
	Windows    []string `yaml:"windows"`
}

func boxString(b wm.Box) string {
	return fmt.Sprintf("%dx%d@%d,%d", b.Width, b.Height, b.X, b.Y)
}

func asYaml(v any) (string, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("rendering inspect output: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

func (server *Server) inspectOutputs() (string, error) {
	reports := []outputReport{}
	for _, o := range server.wm.Outputs() {
		st := o.State()
		info := st.TagAt(st.ActiveWorkspace)
		reports = append(reports, outputReport{
			Name:            o.Name(),
			Box:             boxString(o.LayoutBox()),
			ActiveWorkspace: st.ActiveWorkspace,
			ActiveTag:       uint32(st.ActiveTag),
			Layout:          info.LayoutMode.String(),
			Gaps:            info.UselessGaps,
			Focused:         o == server.wm.FocusedOutput(),
		})
	}
	return asYaml(reports)
}

func (server *Server) inspectContainers() (string, error) {
	reports := []containerReport{}
	for _, c := range server.wm.Containers() {
		titles := []string{}
		for _, t := range c.Toplevels() {
			titles = append(titles, t.Title())
		}
		reports = append(reports, containerReport{
			ID:         c.ID(),
			Output:     c.Output().Name(),
			Workspace:  c.Workspace(),
			Tag:        uint32(c.Tag()),
			Box:        boxString(c.Box()),
			Floating:   c.Floating(),
			Maximized:  c.Maximized(),
			Fullscreen: c.Fullscreen(),
			Minimized:  c.Minimized(),
			Sticky:     c.Sticky(),
			Windows:    titles,
		})
	}
	return asYaml(reports)
}

func (server *Server) focusedContainer() *wm.Container {
	if server.focusedWindow == nil {
		return nil
	}
	return server.focusedWindow.toplevel.Container()
}

// windowCommand drives the focused container.
func (server *Server) windowCommand(action, arg string) string {
	c := server.focusedContainer()
	if c == nil {
		return "No focused window"
	}
	switch action {
	case "float":
		c.SetFloating(!c.Floating())
	case "maximize":
		c.SetMaximized(!c.Maximized())
	case "fullscreen":
		c.SetFullscreen(!c.Fullscreen())
	case "minimize":
		c.SetMinimized(true)
	case "sticky":
		c.SetSticky(!c.Sticky())
	case "center":
		c.ToCenter()
	case "raise":
		c.Raise()
	case "lower":
		c.Lower()
	case "close":
		for _, t := range c.Toplevels() {
			t.Surface().SendClose()
		}
	case "workspace":
		c.SetWorkspace(util.AtoiOr(arg, c.Workspace()))
	case "tag":
		c.SetTag(wm.TagBits(util.AtoiOr(arg, int(c.Tag()))))
	case "cycle":
		c.FocusIndex(util.AtoiOr(arg, 1))
	default:
		return "Unknown window action"
	}
	return "Ok"
}

func (server *Server) setCommand(what, arg string) string {
	out := server.wm.FocusedOutput()
	ws := out.State().ActiveWorkspace
	switch what {
	case "gaps":
		server.wm.ApplyGapChange(util.AtoiOr(arg, server.conf.UselessGaps))
	case "mwfact":
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return "Not a factor: " + arg
		}
		out.SetMWFact(ws, f)
	case "masters":
		out.SetMasterCount(ws, util.AtoiOr(arg, 1))
	case "columns":
		out.SetColumnCount(ws, util.AtoiOr(arg, 1))
	case "strategy":
		out.AdvanceStrategy(ws, util.AtoiOr(arg, 1))
	case "layout":
		switch arg {
		case "floating":
			out.SetLayoutMode(ws, wm.LayoutFloating)
		case "master":
			out.SetLayoutMode(ws, wm.LayoutMaster)
		case "bsp":
			out.SetLayoutMode(ws, wm.LayoutBSP)
		default:
			return "Unknown layout: " + arg
		}
	default:
		return "Unknown setting"
	}
	return "Ok"
}

func replRunner(server *Server, store *config.Store) {
	// Give repl some wrappers around stdin and stdout so that it closes those instead of stdin & stdout themselves
	commandRepl := repl.NewRepl(wrappers.NewReaderWrapper(os.Stdin), wrappers.NewWriterWrapper(os.Stdout))

	// Bus events fan through the plexer so a watcher can come and go
	// without touching the bus itself.
	events := multiplexer.NewOneToMany[string]()
	go events.StartPlexer()
	feed := multiplexer.NewManyToOne(events.GetSender())
	for _, name := range watchedEvents {
		name := name
		server.wm.Bus.Connect(name, func(args ...any) {
			// Decoupled from the event loop, a stalled watcher must
			// not stall the compositor.
			go func() { _ = feed.Send(name) }()
		})
	}

	logrus.Debugln("Starting repl")
	_ = commandRepl.Run(func(input string, r *repl.Repl) (string, error) {
		if cmdString, ok := strings.CutPrefix(input, "run "); ok {
			parts := strings.Split(cmdString, " ")
			// This is safe b/c it'll unpack into a slice of length 0
			args := parts[1:]
			// It's also safe if the repl command is "run " since the first element will now be an empty string
			// Which is also safe to "execute" since cmd.Start will just fail with the No Command error
			cmd := exec.Command(parts[0], args...)
			cmd.Stdout = r.Output
			cmd.Stderr = r.Output
			go func(cmd *exec.Cmd, cmdString string) {
				err := cmd.Start()
				if err != nil {
					logrus.WithError(err).WithField("command", cmdString).Errorln("Command failed to start")
					return
				}
				err = cmd.Wait()
				if exiterr, ok := err.(*exec.ExitError); ok {
					logrus.WithError(err).WithFields(logrus.Fields{
						"exit-code": exiterr.ExitCode(),
						"comand":    cmdString,
					}).Warningln("Bad command completion")
				}
			}(cmd, cmdString)
			return "Running " + parts[0], nil
		} else if input == "quit" {
			server.Stop()
			time.Sleep(time.Second * 5)
			return "Quitting", repl.ErrStop
		} else if input == "reload" {
			if err := store.Reload(); err != nil {
				return "Reload failed: " + err.Error(), nil
			}
			return "Ok", nil
		} else if input == "watch" {
			rec, err := events.MakeReceiver("repl")
			if err != nil {
				return "Already watching", nil
			}
			go func() {
				for msg := range rec {
					fmt.Fprintln(r.Output, "event: "+msg)
				}
			}()
			return "Watching", nil
		} else if input == "unwatch" {
			events.CloseReceiver("repl")
			return "Ok", nil
		} else if rawCmdString, ok := strings.CutPrefix(input, "window "); ok {
			var action, arg string
			util.Unpack(strings.SplitN(rawCmdString, " ", 2), &action, &arg)
			return server.windowCommand(action, arg), nil
		} else if rawCmdString, ok := strings.CutPrefix(input, "set "); ok {
			var what, arg string
			util.Unpack(strings.SplitN(rawCmdString, " ", 2), &what, &arg)
			return server.setCommand(what, arg), nil
		} else if rawCmdString, ok := strings.CutPrefix(input, "view "); ok {
			var mod, arg string
			util.Unpack(strings.SplitN(rawCmdString, " ", 2), &mod, &arg)
			out := server.wm.FocusedOutput()
			if mod == "merge" {
				ws := wm.ClampWorkspace(util.AtoiOr(arg, 1))
				out.SetActiveTag(out.State().ActiveTag | wm.WorkspaceTag(ws))
			} else {
				out.ViewWorkspace(wm.ClampWorkspace(util.AtoiOr(mod, 1)))
			}
			return "Ok", nil
		} else if rawCmdString, ok := strings.CutPrefix(input, "inspect "); ok {
			// Can't unpack slices directly like in Python, so do it this roundabout way
			var target, mod string
			util.Unpack(strings.SplitN(rawCmdString, " ", 2), &target, &mod)
			logrus.WithFields(logrus.Fields{
				"cmd": target,
				"mod": mod,
				"raw": rawCmdString,
			}).Debugln("Parsed inspect command")
			switch target {
			case "outputs":
				res, err := server.inspectOutputs()
				if err != nil {
					return err.Error(), nil
				}
				return res, nil
			case "containers":
				res, err := server.inspectContainers()
				if err != nil {
					return err.Error(), nil
				}
				return res, nil
			case "clients":
				res, err := asYaml(server.tasks.Snapshot())
				if err != nil {
					return err.Error(), nil
				}
				return res, nil
			case "config":
				res, err := asYaml(store.Get())
				if err != nil {
					return err.Error(), nil
				}
				return res, nil
			case "cursor":
				switch mod {
				case "mode":
					switch server.cursorMode {
					case CursorModeMove:
						return "Cursor mode: Move", nil
					case CursorModePassThrough:
						return "Cursor mode: PassThrough", nil
					case CursorModeResize:
						return "Cursor mode: Resize", nil
					default:
						return fmt.Sprintf("Cursor mode: Unknown: %+v", server.cursorMode), nil
					}
				default:
					return fmt.Sprintf(
							"Cursor: Location (%f:%f)",
							server.cursor.X(),
							server.cursor.Y()),
						nil
				}
			default:
				return "Unknown inspect target", nil
			}
		}
		return "Unknown command", nil
	})
}
