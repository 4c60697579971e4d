package registry

import (
	"errors"
	"sort"
	"testing"

	"cse-market-data/internal/model"
)

func TestDefaultRegistryIntegrity(t *testing.T) {
	r := Default()

	if r.Len() != 23 {
		t.Fatalf("expected 23 instruments, got %d", r.Len())
	}

	seen := make(map[string]bool)
	for _, inst := range r.All() {
		if seen[inst.Symbol] {
			t.Errorf("duplicate symbol %q", inst.Symbol)
		}
		seen[inst.Symbol] = true

		if !inst.Valid() {
			t.Errorf("%s: invalid reference data: %+v", inst.Symbol, inst)
		}
		if inst.BaseVolume <= 0 {
			t.Errorf("%s: base volume must be positive, got %d", inst.Symbol, inst.BaseVolume)
		}
		if inst.Sector == "" || inst.Name == "" || inst.ISIN == "" {
			t.Errorf("%s: missing reference attributes", inst.Symbol)
		}
	}
}

func TestRegistrySymbolsSorted(t *testing.T) {
	syms := Default().Symbols()
	if !sort.StringsAreSorted(syms) {
		t.Errorf("symbols not sorted: %v", syms)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := Default()

	inst, err := r.Get("MNG")
	if err != nil {
		t.Fatalf("Get(MNG): %v", err)
	}
	if inst.Sector != "Mining" {
		t.Errorf("MNG sector: got %q, want Mining", inst.Sector)
	}

	_, err = r.Get("XXX")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
