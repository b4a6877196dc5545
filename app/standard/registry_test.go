package standard

import (
	"bytes"
	"io"
	"slices"
	"testing"

	"github.com/lysyi3m/feedio/app/feed"
)

type stubStandard struct {
	name string
}

func (s *stubStandard) Name() string                                    { return s.name }
func (s *stubStandard) ContentType() string                             { return "text/plain" }
func (s *stubStandard) CanHandle(data []byte) bool                      { return false }
func (s *stubStandard) Parse(r io.Reader, target *feed.Feed) error      { return nil }
func (s *stubStandard) WriteFeed(buf *bytes.Buffer, f *feed.Feed) error { return nil }

func TestRegistryIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry(nil)
	custom := &stubStandard{name: "custom"}
	if err := registry.Add("CuStOm", custom); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, name := range []string{"custom", "CUSTOM", "Custom", "cUSTOm"} {
		got, err := registry.Get(name)
		if err != nil {
			t.Errorf("Expected %s to resolve, got: %v", name, err)
			continue
		}
		if got != custom {
			t.Errorf("Expected registered standard for %s", name)
		}
	}
}

func TestRegistryNotFound(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add("rss", NewRss())

	for _, name := range []string{"atom", "ATOM", "json", "", " rss ", "rss\n"} {
		_, err := registry.Get(name)
		if err == nil {
			t.Errorf("Expected error for %q", name)
			continue
		}
		if !IsNotFound(err) {
			t.Errorf("Expected NotFoundError for %q, got: %v", name, err)
		}
	}
}

func TestRegistryReplaceKeepsOrder(t *testing.T) {
	registry := NewRegistry(nil)
	first := &stubStandard{name: "first"}
	registry.Add("a", first)
	registry.Add("b", &stubStandard{name: "b"})

	replacement := &stubStandard{name: "replacement"}
	registry.Add("A", replacement)

	if got := registry.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got: %v", got)
	}

	standards := registry.Standards()
	if len(standards) != 2 || standards[0] != replacement {
		t.Errorf("Expected replacement in first dispatch position, got: %v", standards)
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	registry := NewRegistry(nil)
	if err := registry.Add("  ", NewRss()); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := registry.Add("rss", nil); err == nil {
		t.Error("Expected error for nil standard")
	}
	if len(registry.Names()) != 0 {
		t.Errorf("Expected nothing registered, got: %v", registry.Names())
	}
}
