package flywheel

import (
	"io"
	"testing"
)

// The five-family scenario and expected filter behavior below is ported
// directly from the original implementation's filter_test.cc.
func registerFilterFamilies(r *Registry) {
	r.Register("NoPrefix", noopBody)
	r.Register("BM_Foo", noopBody)
	r.Register("BM_Bar", noopBody)
	r.Register("BM_FooBar", noopBody)
	r.Register("BM_FooBa", noopBody)
}

func TestFilterNarrowing(t *testing.T) {
	r := &Registry{}
	registerFilterFamilies(r)

	insts, err := r.Find("BM_Foo", io.Discard)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(insts) != 3 {
		t.Fatalf("expected 3 matches, got %d: %v", len(insts), namesOf(insts))
	}
	want := map[string]bool{"BM_Foo": true, "BM_FooBar": true, "BM_FooBa": true}
	for _, inst := range insts {
		if !want[inst.Name] {
			t.Errorf("unexpected match %q", inst.Name)
		}
	}
	for i, inst := range insts {
		if inst.FamilyIndex != i {
			t.Errorf("expected dense family indices 0,1,2; instance %d has FamilyIndex %d", i, inst.FamilyIndex)
		}
	}
}

func TestFilterNegated(t *testing.T) {
	r := &Registry{}
	registerFilterFamilies(r)

	insts, err := r.Find("-BM_", io.Discard)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(insts) != 1 || insts[0].Name != "NoPrefix" {
		t.Fatalf("expected only NoPrefix, got %v", namesOf(insts))
	}
}

func TestFilterEmptyAndAllMatchEverything(t *testing.T) {
	r := &Registry{}
	registerFilterFamilies(r)

	for _, spec := range []string{"", "all"} {
		insts, err := r.Find(spec, io.Discard)
		if err != nil {
			t.Fatalf("Find(%q): %v", spec, err)
		}
		if len(insts) != 5 {
			t.Fatalf("Find(%q): expected 5 matches, got %d", spec, len(insts))
		}
	}
}

func namesOf(insts []*Instance) []string {
	out := make([]string, len(insts))
	for i, inst := range insts {
		out[i] = inst.Name
	}
	return out
}
