package qdrantIndex

import "testing"

func TestPointID_Deterministic(t *testing.T) {
	a := pointID("Doc-chunk0")
	b := pointID("Doc-chunk0")
	if a != b {
		t.Errorf("same identifier produced different point ids: %s vs %s", a, b)
	}
}

func TestPointID_DistinctPerIdentifier(t *testing.T) {
	seen := map[string]string{}
	for _, id := range []string{"Doc-chunk0", "Doc-chunk1", "Doc2-chunk0", "A-chunk10", "A-chunk1"} {
		p := pointID(id)
		if prev, ok := seen[p]; ok {
			t.Errorf("collision: %s and %s both map to %s", prev, id, p)
		}
		seen[p] = id
	}
}

func TestValidateVector(t *testing.T) {
	if err := validateVector(nil); err == nil {
		t.Error("expected an error for an empty vector")
	}
	if err := validateVector([]float32{0.1, 0.2}); err != nil {
		t.Errorf("unexpected error for a valid vector: %v", err)
	}
}
