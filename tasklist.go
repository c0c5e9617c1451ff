package main

import (
	"sync"

	"github.com/mstarongithub/waytag/wm"
)

// TaskEntry is the published view of one mapped client, what a task
// bar would show. The repl and tool mode read these.
type TaskEntry struct {
	ID         uint32 `json:"id"         yaml:"id"`
	Title      string `json:"title"      yaml:"title"`
	AppID      string `json:"app_id"     yaml:"app_id"`
	Maximized  bool   `json:"maximized"  yaml:"maximized"`
	Minimized  bool   `json:"minimized"  yaml:"minimized"`
	Fullscreen bool   `json:"fullscreen" yaml:"fullscreen"`
	Activated  bool   `json:"activated"  yaml:"activated"`
	Output     string `json:"output"     yaml:"output"`
}

// taskRegistry implements wm.ForeignRegistrar. There is no wayland
// foreign-toplevel global in the binding, so the tasklist lives in
// process and is served over the repl instead.
type taskRegistry struct {
	lock    sync.Mutex
	nextID  uint32
	entries map[uint32]*taskHandle
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{entries: map[uint32]*taskHandle{}}
}

func (r *taskRegistry) Register(t *wm.Toplevel) (legacy, ext wm.ForeignHandle) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextID++
	h := &taskHandle{registry: r, entry: TaskEntry{ID: r.nextID}}
	r.entries[h.entry.ID] = h
	// One registry serves both protocol slots, a second handle would
	// just duplicate every update.
	return h, nil
}

// Snapshot copies the current tasklist, sorted by registration order.
func (r *taskRegistry) Snapshot() []TaskEntry {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]TaskEntry, 0, len(r.entries))
	for id := uint32(1); id <= r.nextID; id++ {
		if h, ok := r.entries[id]; ok {
			out = append(out, h.entry)
		}
	}
	return out
}

type taskHandle struct {
	registry *taskRegistry
	entry    TaskEntry
}

func (h *taskHandle) update(fn func(*TaskEntry)) {
	h.registry.lock.Lock()
	fn(&h.entry)
	h.registry.lock.Unlock()
}

func (h *taskHandle) SetTitle(title string) {
	h.update(func(e *TaskEntry) { e.Title = title })
}

func (h *taskHandle) SetAppID(appID string) {
	h.update(func(e *TaskEntry) { e.AppID = appID })
}

func (h *taskHandle) SetMaximized(maximized bool) {
	h.update(func(e *TaskEntry) { e.Maximized = maximized })
}

func (h *taskHandle) SetMinimized(minimized bool) {
	h.update(func(e *TaskEntry) { e.Minimized = minimized })
}

func (h *taskHandle) SetFullscreen(fullscreen bool) {
	h.update(func(e *TaskEntry) { e.Fullscreen = fullscreen })
}

func (h *taskHandle) SetActivated(activated bool) {
	h.update(func(e *TaskEntry) { e.Activated = activated })
}

func (h *taskHandle) OutputEnter(name string) {
	h.update(func(e *TaskEntry) { e.Output = name })
}

func (h *taskHandle) OutputLeave(name string) {
	h.update(func(e *TaskEntry) {
		if e.Output == name {
			e.Output = ""
		}
	})
}

func (h *taskHandle) Destroy() {
	h.registry.lock.Lock()
	delete(h.registry.entries, h.entry.ID)
	h.registry.lock.Unlock()
}
