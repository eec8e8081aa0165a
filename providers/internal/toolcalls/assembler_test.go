package toolcalls

import (
	"errors"
	"testing"
)

func TestAssemblerAccumulatesFragments(t *testing.T) {
	a := NewAssembler()
	a.AddFragment(Fragment{Index: 0, ID: "call_1", Name: "get_weather"})
	a.AddFragment(Fragment{Index: 0, Arguments: `{"city":`})
	a.AddFragment(Fragment{Index: 0, Arguments: `"Tokyo"}`})

	calls, err := a.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Name != "get_weather" {
		t.Errorf("call = %+v", calls[0])
	}
	if string(calls[0].Arguments) != `{"city":"Tokyo"}` {
		t.Errorf("Arguments = %s", calls[0].Arguments)
	}
}

func TestAssemblerMultipleCallsOrdered(t *testing.T) {
	a := NewAssembler()
	a.AddFragment(Fragment{Index: 1, ID: "call_b", Name: "second", Arguments: `{}`})
	a.AddFragment(Fragment{Index: 0, ID: "call_a", Name: "first", Arguments: `{}`})

	calls, err := a.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(calls))
	}
	if calls[0].ID != "call_a" || calls[1].ID != "call_b" {
		t.Errorf("calls out of order: %+v", calls)
	}
}

func TestAssemblerEmptyArgumentsDefaultsToObject(t *testing.T) {
	a := NewAssembler()
	a.AddFragment(Fragment{Index: 0, ID: "call_1", Name: "ping"})

	calls, err := a.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if string(calls[0].Arguments) != "{}" {
		t.Errorf("Arguments = %s, want {}", calls[0].Arguments)
	}
}

func TestAssemblerInvalidJSON(t *testing.T) {
	a := NewAssembler()
	a.AddFragment(Fragment{Index: 0, ID: "call_1", Name: "broken", Arguments: `{"x":`})

	_, err := a.Finalize()
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("Finalize() error = %v, want ErrInvalidJSON", err)
	}
}

func TestAssemblerNoCalls(t *testing.T) {
	a := NewAssembler()
	calls, err := a.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if calls != nil {
		t.Errorf("calls = %+v, want nil", calls)
	}
}
