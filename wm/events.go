package wm

// Event names emitted through the server's signal bus. Payload is the
// affected entity handle (two handles for the swap events).
const (
	EventClientNew     = "client::new"
	EventClientMap     = "client::map"
	EventClientUnmap   = "client::unmap"
	EventClientDestroy = "client::destroy"
	EventClientSwap    = "client::swap"
	EventClientRaised  = "client::raised"
	EventClientLowered = "client::lowered"

	EventContainerNew     = "container::new"
	EventContainerDestroy = "container::destroy"
	EventContainerInsert  = "container::insert"
	EventContainerRemove  = "container::remove"
	EventContainerSwap    = "container::swap"

	EventScreenNew     = "screen::new"
	EventScreenDestroy = "screen::destroy"
	EventScreenFocus   = "screen::focus"
	EventScreenUnfocus = "screen::unfocus"
)

// Property-change events carry the property name as a suffix, e.g.
// "client::prop::fullscreen" or "screen::prop::active_tag".
const (
	EventClientPropPrefix = "client::prop::"
	EventScreenPropPrefix = "screen::prop::"
)

func clientPropEvent(name string) string {
	return EventClientPropPrefix + name
}

func screenPropEvent(name string) string {
	return EventScreenPropPrefix + name
}
