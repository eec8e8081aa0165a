// Package toolcalls provides shared streaming tool-call assembly utilities.
package toolcalls

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/plugforge/deepseek/core"
)

// ErrInvalidJSON is returned when assembled tool arguments are not valid JSON.
var ErrInvalidJSON = errors.New("tool args invalid json")

// Fragment represents one streaming tool-call delta fragment.
type Fragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

type assemblingCall struct {
	ID        string
	Name      string
	Arguments strings.Builder
}

// Assembler accumulates fragmented tool calls and emits canonical tool calls.
type Assembler struct {
	calls map[int]*assemblingCall
}

// NewAssembler creates a tool-call assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		calls: make(map[int]*assemblingCall),
	}
}

// AddFragment applies a streaming fragment, creating a call entry if needed.
// ID and Name stick from the first fragment that carries them; Arguments
// accumulate across fragments.
func (a *Assembler) AddFragment(f Fragment) {
	call, exists := a.calls[f.Index]
	if !exists {
		call = &assemblingCall{}
		a.calls[f.Index] = call
	}

	if f.ID != "" {
		call.ID = f.ID
	}
	if f.Name != "" {
		call.Name = f.Name
	}
	if f.Arguments != "" {
		call.Arguments.WriteString(f.Arguments)
	}
}

// Finalize validates and returns assembled tool calls in index order.
func (a *Assembler) Finalize() ([]core.ToolCall, error) {
	if len(a.calls) == 0 {
		return nil, nil
	}

	maxIndex := 0
	for idx := range a.calls {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	result := make([]core.ToolCall, 0, len(a.calls))
	for i := 0; i <= maxIndex; i++ {
		call, exists := a.calls[i]
		if !exists {
			continue
		}

		args := call.Arguments.String()
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			return nil, ErrInvalidJSON
		}

		result = append(result, core.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: json.RawMessage(args),
		})
	}

	return result, nil
}
