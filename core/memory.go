package core

import (
	"context"
	"sync"
)

// Memory is the interface for managing conversation history.
// Implementations provide different storage backends.
type Memory interface {
	// AddMessage appends a message to the conversation history.
	AddMessage(msg Message)

	// AddMessages appends multiple messages to the conversation history.
	AddMessages(msgs []Message)

	// GetHistory returns all messages in the conversation.
	GetHistory() []Message

	// GetLastN returns the last N messages in the conversation.
	GetLastN(n int) []Message

	// Clear removes all messages from the conversation.
	Clear()

	// Len returns the number of messages in the conversation.
	Len() int
}

// InMemoryStore is a thread-safe in-memory implementation of the Memory interface.
// Suitable for single-session conversations that don't require persistence.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

// NewInMemoryStore creates a new in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make([]Message, 0),
	}
}

// AddMessage appends a message to the conversation history.
func (m *InMemoryStore) AddMessage(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// AddMessages appends multiple messages to the conversation history.
func (m *InMemoryStore) AddMessages(msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs...)
}

// GetHistory returns a copy of all messages in the conversation.
func (m *InMemoryStore) GetHistory() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

// GetLastN returns the last N messages in the conversation.
// If N is greater than the number of messages, returns all messages.
func (m *InMemoryStore) GetLastN(n int) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		return nil
	}

	if n >= len(m.messages) {
		result := make([]Message, len(m.messages))
		copy(result, m.messages)
		return result
	}

	start := len(m.messages) - n
	result := make([]Message, n)
	copy(result, m.messages[start:])
	return result
}

// Clear removes all messages from the conversation.
func (m *InMemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = make([]Message, 0)
}

// Len returns the number of messages in the conversation.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Conversation provides a high-level API for multi-turn conversations
// with automatic history management.
type Conversation struct {
	memory Memory
	client *Client
	model  ModelID
	system string // Optional system message
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithSystemMessage sets a system message for the conversation.
func WithSystemMessage(system string) ConversationOption {
	return func(c *Conversation) {
		c.system = system
	}
}

// WithMemoryStore sets a custom memory store for the conversation.
func WithMemoryStore(memory Memory) ConversationOption {
	return func(c *Conversation) {
		c.memory = memory
	}
}

// NewConversation creates a new conversation session with the given client and model.
func NewConversation(client *Client, model ModelID, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		memory: NewInMemoryStore(),
		client: client,
		model:  model,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.system != "" {
		c.memory.AddMessage(Message{
			Role:    RoleSystem,
			Content: c.system,
		})
	}

	return c
}

// Send sends a user message with context and returns the assistant's response.
// Automatically manages conversation history.
func (c *Conversation) Send(ctx context.Context, userMessage string) (*ChatResponse, error) {
	c.memory.AddMessage(Message{
		Role:    RoleUser,
		Content: userMessage,
	})

	resp, err := c.client.Chat(c.model).
		Messages(c.memory.GetHistory()...).
		GetResponse(ctx)
	if err != nil {
		return nil, err
	}

	c.memory.AddMessage(Message{
		Role:    RoleAssistant,
		Content: resp.Output,
	})

	return resp, nil
}

// History returns the accumulated conversation messages.
func (c *Conversation) History() []Message {
	return c.memory.GetHistory()
}

// Reset clears the conversation, re-adding the system message if one was set.
func (c *Conversation) Reset() {
	c.memory.Clear()
	if c.system != "" {
		c.memory.AddMessage(Message{
			Role:    RoleSystem,
			Content: c.system,
		})
	}
}
