package meshvk

import "testing"

func TestRegistryReleasesInReverse(t *testing.T) {
	r := NewCoreRegistry()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		n := name
		r.Track(n, func() { order = append(order, n) })
	}
	r.Release()
	want := []string{"c", "b", "a"}
	if len(order) != len(want) {
		t.Fatalf("released %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("release %d = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestRegistryReleaseIdempotent(t *testing.T) {
	r := NewCoreRegistry()
	count := 0
	r.Track("x", func() { count++ })
	r.Release()
	r.Release()
	if count != 1 {
		t.Errorf("release ran %d times, want 1", count)
	}
}

func TestRegistryReusableAfterRelease(t *testing.T) {
	r := NewCoreRegistry()
	count := 0
	r.Track("first", func() { count++ })
	r.Release()
	r.Track("second", func() { count += 10 })
	r.Release()
	if count != 11 {
		t.Errorf("count = %d, want 11", count)
	}
	if r.Len() != 0 {
		t.Errorf("len = %d after release, want 0", r.Len())
	}
}
