// Plugin shared-library entry point. Built with -buildmode=c-shared, it
// exposes the plugin lifecycle over a C ABI and bridges host stream
// callbacks onto the plugin's StreamSink.
package main

/*
#include <stdlib.h>

// Host-provided stream callbacks. stream_chunk returns 0 on success,
// 1 when the user cancelled the stream, any other value on failure.
typedef char* (*stream_start_fn)(void);
typedef int (*stream_chunk_fn)(const char* stream_id, const char* content, int is_final);
typedef int (*stream_end_fn)(const char* stream_id, int success, const char* error_msg);

static char* call_stream_start(stream_start_fn fn) {
	return fn();
}

static int call_stream_chunk(stream_chunk_fn fn, const char* stream_id, const char* content, int is_final) {
	return fn(stream_id, content, is_final);
}

static int call_stream_end(stream_end_fn fn, const char* stream_id, int success, const char* error_msg) {
	return fn(stream_id, success, error_msg);
}
*/
import "C"

import (
	"encoding/json"
	"fmt"
	"sync"
	"unsafe"

	"github.com/plugforge/deepseek/logging"
	"github.com/plugforge/deepseek/plugin"
)

const chunkCancelled = 1

var (
	mu       sync.Mutex
	instance *plugin.Plugin
	hostCtx  *hostContext
	log      = logging.New("cabi")
)

// hostContext carries the metadata and history the host passed in.
type hostContext struct {
	meta    plugin.Metadata
	history []plugin.HistoryMessage
}

func (h *hostContext) Metadata() plugin.Metadata        { return h.meta }
func (h *hostContext) History() []plugin.HistoryMessage { return h.history }

// hostSink forwards stream events to the host's C callbacks.
type hostSink struct {
	start C.stream_start_fn
	chunk C.stream_chunk_fn
	end   C.stream_end_fn
}

func (s *hostSink) StartStream(ctx plugin.InstanceContext) (string, error) {
	cID := C.call_stream_start(s.start)
	if cID == nil {
		return "", fmt.Errorf("host returned no stream id")
	}
	defer C.free(unsafe.Pointer(cID))
	return C.GoString(cID), nil
}

func (s *hostSink) StreamChunk(streamID, content string, isFinal bool, ctx plugin.InstanceContext) error {
	cStreamID := C.CString(streamID)
	cContent := C.CString(content)
	defer C.free(unsafe.Pointer(cStreamID))
	defer C.free(unsafe.Pointer(cContent))

	final := C.int(0)
	if isFinal {
		final = 1
	}

	switch rc := C.call_stream_chunk(s.chunk, cStreamID, cContent, final); rc {
	case 0:
		return nil
	case chunkCancelled:
		return plugin.ErrStreamCancelled
	default:
		return fmt.Errorf("stream chunk rejected by host (code %d)", int(rc))
	}
}

func (s *hostSink) EndStream(streamID string, success bool, errMsg string, ctx plugin.InstanceContext) error {
	cStreamID := C.CString(streamID)
	defer C.free(unsafe.Pointer(cStreamID))

	var cErrMsg *C.char
	if errMsg != "" {
		cErrMsg = C.CString(errMsg)
		defer C.free(unsafe.Pointer(cErrMsg))
	}

	ok := C.int(0)
	if success {
		ok = 1
	}

	if rc := C.call_stream_end(s.end, cStreamID, ok, cErrMsg); rc != 0 {
		return fmt.Errorf("stream end rejected by host (code %d)", int(rc))
	}
	return nil
}

//export PluginInit
func PluginInit(id, name, version, instanceID, configDir *C.char,
	start C.stream_start_fn, chunk C.stream_chunk_fn, end C.stream_end_fn) C.int {
	mu.Lock()
	defer mu.Unlock()

	sink := &hostSink{start: start, chunk: chunk, end: end}
	instance = plugin.New(C.GoString(configDir), sink)
	hostCtx = &hostContext{meta: plugin.Metadata{
		ID:         C.GoString(id),
		Name:       C.GoString(name),
		Version:    C.GoString(version),
		InstanceID: C.GoString(instanceID),
	}}
	return 0
}

//export PluginOnMount
func PluginOnMount() C.int {
	return lifecycle(func(p *plugin.Plugin, ctx *hostContext) error {
		return p.OnMount(ctx)
	})
}

//export PluginOnDispose
func PluginOnDispose() C.int {
	return lifecycle(func(p *plugin.Plugin, ctx *hostContext) error {
		return p.OnDispose(ctx)
	})
}

//export PluginOnConnect
func PluginOnConnect() C.int {
	return lifecycle(func(p *plugin.Plugin, ctx *hostContext) error {
		return p.OnConnect(ctx)
	})
}

//export PluginOnDisconnect
func PluginOnDisconnect() C.int {
	return lifecycle(func(p *plugin.Plugin, ctx *hostContext) error {
		return p.OnDisconnect(ctx)
	})
}

//export PluginSetCredentials
func PluginSetCredentials(apiKey, apiURL *C.char) C.int {
	mu.Lock()
	p := instance
	mu.Unlock()
	if p == nil {
		return 1
	}
	if err := p.SetCredentials(C.GoString(apiKey), C.GoString(apiURL)); err != nil {
		log.Error().Err(err).Msg("failed to set credentials")
		return 1
	}
	return 0
}

// PluginHandleMessage acknowledges the message and streams the reply through
// the registered callbacks. historyJSON is an array of
// {role, content, status, created_at} objects; it may be null.
// The returned string must be freed by the host.
//
//export PluginHandleMessage
func PluginHandleMessage(message, historyJSON *C.char) *C.char {
	mu.Lock()
	p := instance
	ctx := hostCtx
	mu.Unlock()
	if p == nil || ctx == nil {
		return nil
	}

	msgCtx := &hostContext{meta: ctx.meta}
	if historyJSON != nil {
		if err := json.Unmarshal([]byte(C.GoString(historyJSON)), &msgCtx.history); err != nil {
			log.Warn().Err(err).Msg("invalid history payload, ignoring")
		}
	}

	ack, err := p.HandleMessage(C.GoString(message), msgCtx)
	if err != nil {
		log.Error().Err(err).Msg("handle message failed")
		return nil
	}
	return C.CString(ack)
}

func lifecycle(fn func(*plugin.Plugin, *hostContext) error) C.int {
	mu.Lock()
	p := instance
	ctx := hostCtx
	mu.Unlock()
	if p == nil || ctx == nil {
		return 1
	}
	if err := fn(p, ctx); err != nil {
		log.Error().Err(err).Msg("lifecycle call failed")
		return 1
	}
	return 0
}

// main is required for c-shared builds but never runs.
func main() {}
