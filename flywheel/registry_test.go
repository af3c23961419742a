package flywheel

import (
	"io"
	"testing"
)

func noopBody(st *State) {
	for st.KeepRunning() {
	}
}

func TestRegistryRegisterAndClear(t *testing.T) {
	r := &Registry{}
	r.Register("BM_A", noopBody)
	r.Register("BM_B", noopBody)

	insts, err := r.Find("", io.Discard)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(insts) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(insts))
	}

	r.Clear()
	insts, err = r.Find("", io.Discard)
	if err != nil {
		t.Fatalf("Find after Clear: %v", err)
	}
	if len(insts) != 0 {
		t.Fatalf("expected 0 instances after Clear, got %d", len(insts))
	}
}

func TestFindCartesianProduct(t *testing.T) {
	r := &Registry{}
	r.Register("BM_Sized", noopBody, Args(1), Args(2), Args(3), Threads(1, 2))

	insts, err := r.Find(".", io.Discard)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(insts) != 6 {
		t.Fatalf("expected |A|*|T| = 3*2 = 6 instances, got %d", len(insts))
	}
}

func TestFindBadRegex(t *testing.T) {
	r := &Registry{}
	r.Register("BM_A", noopBody)

	_, err := r.Find("[", io.Discard)
	if err == nil {
		t.Fatal("expected error for unparseable regex")
	}
	var flyErr *Error
	if !asError(err, &flyErr) || flyErr.Kind != KindBadRegex {
		t.Fatalf("expected KindBadRegex, got %v", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
