package typeid

import (
	"strings"
	"testing"
)

func TestNewCarriesPrefix(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"scene", NewSceneID, PrefixScene},
		{"object", NewObjectID, PrefixObject},
		{"light", NewLightID, PrefixLight},
		{"session", NewSessionID, PrefixSession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix+"_") {
				t.Fatalf("id %q lacks prefix %q", id, tt.prefix)
			}
			if err := Validate(id, tt.prefix); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	if err := Validate(NewObjectID(), PrefixScene); err == nil {
		t.Error("expected prefix mismatch error")
	}
	if err := Validate("not an id", PrefixObject); err == nil {
		t.Error("expected parse error")
	}
	if NewObjectID() == NewObjectID() {
		t.Error("ids should be unique")
	}
}
