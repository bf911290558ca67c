package repository

import "testing"

func TestNumParts(t *testing.T) {
	tests := []struct {
		total, partSize int64
		want            int
	}{
		{0, 64, 0},
		{64, 64, 1},
		{65, 64, 2},
		{128, 64, 2},
		{129, 64, 3},
	}
	for _, tt := range tests {
		if got := NumParts(tt.total, tt.partSize); got != tt.want {
			t.Errorf("NumParts(%d, %d) = %d, want %d", tt.total, tt.partSize, got, tt.want)
		}
	}
}

func TestPartBounds(t *testing.T) {
	size, pos := PartBounds(1, 150, 64)
	if size != 64 || pos != 0 {
		t.Errorf("part 1: got size=%d pos=%d, want size=64 pos=0", size, pos)
	}

	size, pos = PartBounds(2, 150, 64)
	if size != 64 || pos != 64 {
		t.Errorf("part 2: got size=%d pos=%d, want size=64 pos=64", size, pos)
	}

	size, pos = PartBounds(3, 150, 64)
	if size != 22 || pos != 128 {
		t.Errorf("final part: got size=%d pos=%d, want size=22 pos=128", size, pos)
	}
}
