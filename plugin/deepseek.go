package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/plugforge/deepseek/core"
	"github.com/plugforge/deepseek/logging"
	"github.com/plugforge/deepseek/plugin/config"
	"github.com/plugforge/deepseek/providers/deepseek"
)

const (
	// handleMessageAck is returned immediately while the reply streams in
	// the background.
	handleMessageAck = "Processing your request..."

	// disposeTimeout bounds how long OnDispose waits for in-flight streams.
	disposeTimeout = 5 * time.Second
)

var (
	// ErrNotConfigured is returned when no API key has been set.
	ErrNotConfigured = errors.New("api key not configured")

	// ErrNotMounted is returned when HandleMessage is called before OnMount.
	ErrNotMounted = errors.New("plugin not mounted")
)

// Plugin streams DeepSeek chat completions on behalf of a plugin host.
// It implements Handler.
type Plugin struct {
	mu       sync.Mutex
	apiKey   string
	apiURL   string
	provider *deepseek.Provider

	configMgr *config.Manager
	sink      StreamSink
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a plugin that keeps its config under configDir and delivers
// streamed replies through sink.
func New(configDir string, sink StreamSink) *Plugin {
	return &Plugin{
		apiURL:    config.DefaultAPIURL,
		configMgr: config.NewManager(configDir),
		sink:      sink,
		log:       logging.New("plugin"),
	}
}

// OnMount loads the user config and prepares the provider.
func (p *Plugin) OnMount(ictx InstanceContext) error {
	meta := ictx.Metadata()
	p.log.Info().
		Str("id", meta.ID).
		Str("name", meta.Name).
		Str("version", meta.Version).
		Str("instance_id", meta.InstanceID).
		Msg("plugin mounted")

	p.mu.Lock()
	defer p.mu.Unlock()

	user := p.configMgr.LoadUser()
	if user.APIKey != "" {
		p.apiKey = user.APIKey
		p.log.Info().Msg("loaded api key from config")
	}
	if user.APIURL != "" {
		p.apiURL = user.APIURL
		p.log.Info().Msg("loaded api url from config")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.rebuildProviderLocked()
	return nil
}

// OnDispose cancels in-flight streams and waits briefly for them to finish.
func (p *Plugin) OnDispose(ictx InstanceContext) error {
	meta := ictx.Metadata()
	p.log.Info().
		Str("id", meta.ID).
		Str("instance_id", meta.InstanceID).
		Msg("plugin disposing")

	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.ctx = nil
	p.mu.Unlock()

	if cancel == nil {
		p.log.Warn().Msg("plugin was not mounted, nothing to dispose")
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("all streams stopped")
	case <-time.After(disposeTimeout):
		p.log.Warn().Msg("timed out waiting for streams to stop")
	}
	return nil
}

// OnConnect verifies the plugin is configured before accepting a session.
func (p *Plugin) OnConnect(ictx InstanceContext) error {
	meta := ictx.Metadata()
	p.log.Info().
		Str("id", meta.ID).
		Str("instance_id", meta.InstanceID).
		Msg("plugin connected")

	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.TrimSpace(p.apiKey) == "" || strings.TrimSpace(p.apiURL) == "" {
		p.log.Warn().Msg("api key not configured, please set in plugin settings")
		return ErrNotConfigured
	}
	return nil
}

// OnDisconnect logs the session end.
func (p *Plugin) OnDisconnect(ictx InstanceContext) error {
	meta := ictx.Metadata()
	p.log.Info().
		Str("id", meta.ID).
		Str("instance_id", meta.InstanceID).
		Msg("plugin disconnected")
	return nil
}

// SetCredentials updates the API key and URL, persists them, and rebuilds
// the provider. An empty apiURL keeps the current one.
func (p *Plugin) SetCredentials(apiKey, apiURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.apiKey = apiKey
	if apiURL != "" {
		p.apiURL = apiURL
	}

	if err := p.configMgr.SaveUser(config.UserConfig{
		APIKey: p.apiKey,
		APIURL: p.apiURL,
	}); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	p.rebuildProviderLocked()
	return nil
}

// rebuildProviderLocked recreates the provider from the current credentials.
// The configured URL is the full chat completions endpoint, used verbatim.
func (p *Plugin) rebuildProviderLocked() {
	p.provider = deepseek.New(p.apiKey, deepseek.WithEndpoint(p.apiURL))
}

// HandleMessage acknowledges the message and streams the reply in the
// background through the sink.
func (p *Plugin) HandleMessage(message string, ictx InstanceContext) (string, error) {
	meta := ictx.Metadata()
	p.log.Info().
		Str("id", meta.ID).
		Str("instance_id", meta.InstanceID).
		Msg("received message")

	p.mu.Lock()
	apiKey := p.apiKey
	provider := p.provider
	ctx := p.ctx
	p.mu.Unlock()

	if strings.TrimSpace(apiKey) == "" {
		return "", ErrNotConfigured
	}
	if ctx == nil || provider == nil {
		return "", ErrNotMounted
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.streamRequest(ctx, provider, message, ictx); err != nil {
			p.log.Error().Err(err).Msg("streaming request failed")
		}
	}()

	return handleMessageAck, nil
}

// streamRequest sends the conversation to the API and forwards deltas to the
// sink until the stream ends or the user cancels.
func (p *Plugin) streamRequest(ctx context.Context, provider *deepseek.Provider, message string, ictx InstanceContext) error {
	messages := ExtractCompleted(ictx.History())
	messages = append(messages, core.Message{Role: core.RoleUser, Content: message})

	p.log.Info().Int("messages", len(messages)).Msg("sending streaming request")

	stream, err := provider.StreamChat(ctx, &core.ChatRequest{
		Model:    deepseek.DefaultModel,
		Messages: messages,
	})
	if err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	streamID, err := p.sink.StartStream(ictx)
	if err != nil {
		return fmt.Errorf("start stream delivery: %w", err)
	}

	hasContent := false
	for chunk := range stream.Ch {
		if chunk.Delta == "" {
			continue
		}
		hasContent = true

		if err := p.sink.StreamChunk(streamID, chunk.Delta, false, ictx); err != nil {
			if errors.Is(err, ErrStreamCancelled) {
				p.log.Info().Str("stream_id", streamID).Msg("stream cancelled by user, stopping")
				return nil
			}
			p.log.Warn().Err(err).Msg("failed to deliver stream chunk")
			p.endStream(streamID, false, "Error: "+err.Error(), ictx)
			return err
		}
	}

	if streamErr, ok := <-stream.Err; ok && streamErr != nil {
		if errors.Is(streamErr, context.Canceled) {
			p.log.Info().Str("stream_id", streamID).Msg("stream stopped during shutdown")
			return nil
		}
		p.endStream(streamID, false, "Error: "+streamErr.Error(), ictx)
		return streamErr
	}

	if !hasContent {
		p.endStream(streamID, false, "no content received", ictx)
		return nil
	}

	p.log.Info().Str("stream_id", streamID).Msg("stream completed")
	p.endStream(streamID, true, "", ictx)
	return nil
}

func (p *Plugin) endStream(streamID string, success bool, errMsg string, ictx InstanceContext) {
	if err := p.sink.EndStream(streamID, success, errMsg, ictx); err != nil {
		p.log.Warn().Err(err).Str("stream_id", streamID).Msg("failed to end stream")
	}
}
