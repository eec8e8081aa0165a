package plugin

import (
	"errors"

	"github.com/google/uuid"
)

// ErrStreamCancelled is returned by StreamSink.StreamChunk when the user has
// cancelled the stream. The plugin stops forwarding and does not report an
// error back to the host.
var ErrStreamCancelled = errors.New("stream cancelled")

// StreamSink receives streamed reply text for delivery to the host UI.
type StreamSink interface {
	// StartStream opens a stream and returns its ID.
	StartStream(ctx InstanceContext) (string, error)

	// StreamChunk delivers one content fragment. isFinal marks the last
	// fragment. Returns ErrStreamCancelled if the user cancelled.
	StreamChunk(streamID, content string, isFinal bool, ctx InstanceContext) error

	// EndStream closes the stream. On failure, errMsg carries the reason.
	EndStream(streamID string, success bool, errMsg string, ctx InstanceContext) error
}

// NewStreamID generates a unique stream identifier.
func NewStreamID() string {
	return "stream_" + uuid.NewString()
}
