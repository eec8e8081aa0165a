// Package plugin implements the host-facing chat plugin boundary.
package plugin

// Metadata identifies a plugin instance to the host.
type Metadata struct {
	ID         string
	Name       string
	Version    string
	InstanceID string
}

// HistoryMessage is one entry of the host-provided conversation history.
// Role is a host role (user, plugin, system); Status marks delivery state.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// InstanceContext is the host-provided view of a plugin instance.
type InstanceContext interface {
	// Metadata returns the instance identity.
	Metadata() Metadata

	// History returns the conversation history, or nil if the host
	// provides none.
	History() []HistoryMessage
}

// Handler is the lifecycle contract a plugin implements for the host.
//
// HandleMessage must not block on network I/O. It acknowledges receipt and
// streams the actual reply in the background through a StreamSink.
type Handler interface {
	OnMount(ctx InstanceContext) error
	OnDispose(ctx InstanceContext) error
	OnConnect(ctx InstanceContext) error
	OnDisconnect(ctx InstanceContext) error
	HandleMessage(message string, ctx InstanceContext) (string, error)
}
