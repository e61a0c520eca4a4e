package addresses

import (
	"context"
	"testing"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/errors"
)

type stubLister struct {
	list  []backend.Address
	err   error
	calls int
}

func (s *stubLister) ListAddresses(context.Context) ([]backend.Address, error) {
	s.calls++
	return s.list, s.err
}

func sampleAddresses() []backend.Address {
	return []backend.Address{
		{ID: "addr1", RecipientName: "Lan", Phone: "0901", Street: "12 Le Loi", Ward: "Ben Nghe", District: "1", City: "HCMC"},
		{ID: "addr2", RecipientName: "Minh", Street: "4 Tran Phu", City: "Hue", IsDefault: true},
	}
}

func TestListAndLookup(t *testing.T) {
	lister := &stubLister{list: sampleAddresses()}
	svc := NewService(lister)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr, ok := Lookup(list, "addr1")
	if !ok || addr.RecipientName != "Lan" {
		t.Fatalf("unexpected address %+v", addr)
	}
	if _, ok := Lookup(list, "missing"); ok {
		t.Fatal("expected missing id not to resolve")
	}
	if lister.calls != 1 {
		t.Fatalf("expected one backend call, got %d", lister.calls)
	}
}

func TestListWithoutClient(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.List(context.Background()); errors.CodeOf(err) != errors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	addr, ok := Default(sampleAddresses())
	if !ok || addr.ID != "addr2" {
		t.Fatalf("expected flagged default, got %+v", addr)
	}
	addr, ok = Default(sampleAddresses()[:1])
	if !ok || addr.ID != "addr1" {
		t.Fatalf("expected first address fallback, got %+v", addr)
	}
	if _, ok := Default(nil); ok {
		t.Fatal("expected no default for empty list")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		addr backend.Address
		want string
	}{
		{"full", sampleAddresses()[0], "Lan - 0901, 12 Le Loi, Ben Nghe, 1, HCMC"},
		{"no phone or ward", sampleAddresses()[1], "Minh, 4 Tran Phu, Hue"},
		{"street only", backend.Address{Street: " 9 Hai Ba Trung "}, "9 Hai Ba Trung"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.addr); got != tc.want {
				t.Fatalf("Format() = %q, want %q", got, tc.want)
			}
		})
	}
}
