package plugin

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeInstanceContext provides canned metadata and history.
type fakeInstanceContext struct {
	meta    Metadata
	history []HistoryMessage
}

func (f *fakeInstanceContext) Metadata() Metadata        { return f.meta }
func (f *fakeInstanceContext) History() []HistoryMessage { return f.history }

// recordingSink captures sink calls and signals when the stream ends.
type recordingSink struct {
	mu       sync.Mutex
	started  int
	chunks   []string
	ended    bool
	success  bool
	errMsg   string
	chunkErr error

	done chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{done: make(chan struct{})}
}

func (s *recordingSink) StartStream(ctx InstanceContext) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return NewStreamID(), nil
}

func (s *recordingSink) StreamChunk(streamID, content string, isFinal bool, ctx InstanceContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chunkErr != nil {
		return s.chunkErr
	}
	s.chunks = append(s.chunks, content)
	return nil
}

func (s *recordingSink) EndStream(streamID string, success bool, errMsg string, ctx InstanceContext) error {
	s.mu.Lock()
	s.ended = true
	s.success = success
	s.errMsg = errMsg
	s.mu.Unlock()
	close(s.done)
	return nil
}

func (s *recordingSink) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to end")
	}
}

// sseServer serves the given SSE data payloads followed by [DONE].
func sseServer(t *testing.T, events []string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, event := range events {
			w.Write([]byte("data: " + event + "\n\n"))
			flusher.Flush()
		}
		w.Write([]byte("data: [DONE]\n\n"))
		flusher.Flush()
	}))
	t.Cleanup(server.Close)
	return server
}

func mountedPlugin(t *testing.T, sink StreamSink, endpoint string) (*Plugin, *fakeInstanceContext) {
	t.Helper()
	p := New(t.TempDir(), sink)
	ictx := &fakeInstanceContext{meta: Metadata{ID: "deepseek", Name: "DeepSeek", Version: "1.0.0"}}
	if err := p.OnMount(ictx); err != nil {
		t.Fatalf("OnMount() error = %v", err)
	}
	if err := p.SetCredentials("test-key", endpoint); err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}
	return p, ictx
}

func TestHandleMessageNotConfigured(t *testing.T) {
	p := New(t.TempDir(), newRecordingSink())
	ictx := &fakeInstanceContext{}
	if err := p.OnMount(ictx); err != nil {
		t.Fatalf("OnMount() error = %v", err)
	}

	_, err := p.HandleMessage("hello", ictx)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("HandleMessage() error = %v, want ErrNotConfigured", err)
	}
}

func TestHandleMessageNotMounted(t *testing.T) {
	p := New(t.TempDir(), newRecordingSink())
	p.apiKey = "test-key"

	_, err := p.HandleMessage("hello", &fakeInstanceContext{})
	if !errors.Is(err, ErrNotMounted) {
		t.Errorf("HandleMessage() error = %v, want ErrNotMounted", err)
	}
}

func TestOnConnectRequiresConfiguration(t *testing.T) {
	p := New(t.TempDir(), newRecordingSink())
	ictx := &fakeInstanceContext{}
	if err := p.OnMount(ictx); err != nil {
		t.Fatalf("OnMount() error = %v", err)
	}

	if err := p.OnConnect(ictx); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("OnConnect() error = %v, want ErrNotConfigured", err)
	}
}

func TestHandleMessageStreamsReply(t *testing.T) {
	server := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"index":0,"delta":{"content":"lo!"}}]}`,
	})
	sink := newRecordingSink()
	p, ictx := mountedPlugin(t, sink, server.URL)

	ack, err := p.HandleMessage("hi", ictx)
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if ack == "" {
		t.Error("HandleMessage() returned empty ack")
	}

	sink.waitDone(t)

	if sink.started != 1 {
		t.Errorf("started = %d, want 1", sink.started)
	}
	if got := strings.Join(sink.chunks, ""); got != "Hello!" {
		t.Errorf("streamed content = %q, want Hello!", got)
	}
	if !sink.success {
		t.Errorf("stream ended with success=false, errMsg=%q", sink.errMsg)
	}
}

func TestHandleMessageIncludesHistory(t *testing.T) {
	var payload []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"choices":[{"index":0,"delta":{"content":"ok"}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	t.Cleanup(server.Close)

	sink := newRecordingSink()
	p, ictx := mountedPlugin(t, sink, server.URL)
	ictx.history = []HistoryMessage{
		{Role: "user", Content: "earlier question", Status: "completed"},
		{Role: "plugin", Content: "earlier answer", Status: "completed"},
		{Role: "user", Content: "draft", Status: "pending"},
	}

	if _, err := p.HandleMessage("follow up", ictx); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	sink.waitDone(t)

	body := string(payload)
	if !strings.Contains(body, "earlier question") || !strings.Contains(body, "earlier answer") {
		t.Errorf("request body missing history: %s", body)
	}
	if strings.Contains(body, "draft") {
		t.Errorf("request body includes pending message: %s", body)
	}
	if !strings.Contains(body, "follow up") {
		t.Errorf("request body missing current message: %s", body)
	}
}

func TestHandleMessageNoContentFails(t *testing.T) {
	server := sseServer(t, nil)
	sink := newRecordingSink()
	p, ictx := mountedPlugin(t, sink, server.URL)

	if _, err := p.HandleMessage("hi", ictx); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	sink.waitDone(t)

	if sink.success {
		t.Error("stream should not succeed with no content")
	}
	if sink.errMsg != "no content received" {
		t.Errorf("errMsg = %q, want no content received", sink.errMsg)
	}
}

func TestHandleMessageCancelledStreamStopsQuietly(t *testing.T) {
	server := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"content":"one"}}]}`,
		`{"choices":[{"index":0,"delta":{"content":"two"}}]}`,
	})
	sink := newRecordingSink()
	sink.chunkErr = ErrStreamCancelled
	p, ictx := mountedPlugin(t, sink, server.URL)

	if _, err := p.HandleMessage("hi", ictx); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	// The stream stops without EndStream; dispose waits for the goroutine.
	if err := p.OnDispose(ictx); err != nil {
		t.Fatalf("OnDispose() error = %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.ended {
		t.Error("EndStream should not be called after user cancellation")
	}
}

func TestOnMountLoadsSavedConfig(t *testing.T) {
	dir := t.TempDir()
	sink := newRecordingSink()

	first := New(dir, sink)
	ictx := &fakeInstanceContext{}
	if err := first.OnMount(ictx); err != nil {
		t.Fatalf("OnMount() error = %v", err)
	}
	if err := first.SetCredentials("sk-saved", "https://proxy.example.com/chat"); err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}

	second := New(dir, sink)
	if err := second.OnMount(ictx); err != nil {
		t.Fatalf("OnMount() error = %v", err)
	}
	if err := second.OnConnect(ictx); err != nil {
		t.Errorf("OnConnect() error = %v, want nil after config reload", err)
	}
}
