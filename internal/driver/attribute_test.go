package driver

import (
	"errors"
	"testing"
)

// attachWithAttributes wires a manager with just the attribute surface and
// attaches one line.
func attachWithAttributes(t *testing.T) (*Manager, *AttributeRegistry, *fakeProvider) {
	t.Helper()
	provider := newFakeProvider()
	registry := NewAttributeRegistry()
	m := NewManager(provider, NewAttributeSurface(registry))
	if _, err := m.Attach(testConfig("relay-1")); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	return m, registry, provider
}

func TestValueAttribute_Show(t *testing.T) {
	_, registry, _ := attachWithAttributes(t)

	attr, err := registry.Lookup("relay-1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	got, err := attr.Show()
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got != "0\n" {
		t.Errorf("Show() = %q, want %q", got, "0\n")
	}

	if err := attr.Store("1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err = attr.Show()
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got != "1\n" {
		t.Errorf("Show() = %q, want %q", got, "1\n")
	}
}

func TestValueAttribute_Store(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr error
	}{
		{name: "zero", input: "0", want: false},
		{name: "one", input: "1", want: true},
		{name: "truthy coercion", input: "7", want: true},
		{name: "negative is truthy", input: "-3", want: true},
		{name: "surrounding whitespace", input: "  1\n", want: true},
		{name: "explicit plus sign", input: "+1", want: true},
		{name: "non-numeric", input: "abc", wantErr: ErrInvalidInput},
		{name: "empty", input: "", wantErr: ErrInvalidInput},
		{name: "trailing garbage", input: "1x", wantErr: ErrInvalidInput},
		{name: "float", input: "1.5", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, registry, provider := attachWithAttributes(t)
			attr, err := registry.Lookup("relay-1")
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}

			// Establish a known starting value opposite to the expectation
			// so unchanged-on-error is observable.
			if err := attr.Store("0"); err != nil {
				t.Fatalf("priming Store(0) error = %v", err)
			}

			err = attr.Store(tt.input)
			line := provider.line("PIN_relay-1")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Store(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				if line.currentLevel() {
					t.Error("value changed on invalid input")
				}
				return
			}

			if err != nil {
				t.Fatalf("Store(%q) error = %v", tt.input, err)
			}
			if line.currentLevel() != tt.want {
				t.Errorf("stored value = %v, want %v", line.currentLevel(), tt.want)
			}
		})
	}
}

func TestAttributeRegistry_LookupAfterDetach(t *testing.T) {
	m, registry, _ := attachWithAttributes(t)

	attr, err := registry.Lookup("relay-1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if err := m.Detach("relay-1"); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	if _, err := registry.Lookup("relay-1"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Lookup() after detach = %v, want ErrNotAvailable", err)
	}

	// A caller holding the attribute from before the detach gets a clean
	// failure, not a half-torn-down structure.
	if _, err := attr.Show(); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Show() after detach = %v, want ErrNotAvailable", err)
	}
	if err := attr.Store("1"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Store() after detach = %v, want ErrNotAvailable", err)
	}
}

func TestAttributeSurface_DuplicateRegistration(t *testing.T) {
	registry := NewAttributeRegistry()
	surface := NewAttributeSurface(registry)
	provider := newFakeProvider()

	// Two managers sharing one registry simulate a colliding id.
	m1 := NewManager(provider, surface)
	m2 := NewManager(newFakeProvider(), surface)

	if _, err := m1.Attach(testConfig("relay-1")); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	_, err := m2.Attach(testConfig("relay-1"))
	if !errors.Is(err, ErrRegistration) {
		t.Fatalf("duplicate Attach() error = %v, want ErrRegistration", err)
	}
}
