package runtime

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestPluginRegistry(t *testing.T) {
	r := NewPluginRegistry()
	factory := func() Plugin { return &emptyPlugin{} }

	if err := r.Register("b.plugin", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("a.plugin", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got := r.IDs(); !reflect.DeepEqual(got, []string{"a.plugin", "b.plugin"}) {
		t.Errorf("Expected sorted ids, got %v", got)
	}

	f, err := r.Lookup("a.plugin")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if f() == nil {
		t.Error("Expected factory to build a plugin")
	}
}

func TestPluginRegistry_Errors(t *testing.T) {
	r := NewPluginRegistry()
	factory := func() Plugin { return &emptyPlugin{} }

	if err := r.Register(" ", factory); err == nil {
		t.Error("Expected error for empty id")
	}
	if err := r.Register("x", nil); err == nil {
		t.Error("Expected error for nil factory")
	}
	r.Register("x", factory)
	if err := r.Register("x", factory); err == nil {
		t.Error("Expected error for duplicate id")
	}

	_, err := r.Lookup("y")
	if !errors.Is(err, ErrUnknownPlugin) {
		t.Fatalf("Expected ErrUnknownPlugin, got %v", err)
	}
	if !strings.Contains(err.Error(), "known: x") {
		t.Errorf("Expected known ids in error, got %v", err)
	}
}
