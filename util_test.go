package meshvk

import "testing"

func TestSafeString(t *testing.T) {
	if got := safeString("main"); got != "main\x00" {
		t.Errorf("safeString = %q", got)
	}
	if got := safeString("main\x00"); got != "main\x00" {
		t.Errorf("already terminated: %q", got)
	}
	if got := safeString(""); got != "\x00" {
		t.Errorf("empty: %q", got)
	}
}

func TestSliceUint32LittleEndian(t *testing.T) {
	words := sliceUint32([]byte{0x03, 0x02, 0x23, 0x07, 0xff, 0x00, 0x00, 0x00})
	if len(words) != 2 {
		t.Fatalf("len = %d, want 2", len(words))
	}
	if words[0] != 0x07230203 {
		t.Errorf("word 0 = %#x, want SPIR-V magic", words[0])
	}
	if words[1] != 0xff {
		t.Errorf("word 1 = %#x, want 0xff", words[1])
	}
}

func TestClampUint32(t *testing.T) {
	tests := []struct{ v, lo, hi, want uint32 }{
		{50, 100, 4096, 100},
		{8000, 100, 4096, 4096},
		{500, 100, 4096, 500},
	}
	for _, tt := range tests {
		if got := clampUint32(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clampUint32(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
