package util

import (
	"testing"
)

func TestNameUUID(t *testing.T) {
	for _, tc := range []struct {
		name string
		want string
	}{
		// md5 of empty input
		{"", "d41d8cd9-8f00-3204-a980-0998ecf8427e"},
		{"1Food", "7f9ef08f-a760-32ce-8b6d-97a16cd199eb"},
		{"103Restaurant", "d73fcc20-47cd-3d0d-b26b-eb792389e819"},
	} {
		u := NameUUID(tc.name)
		if u.String() != tc.want {
			t.Errorf("NameUUID(%q) = %s, want %s", tc.name, u, tc.want)
		}
		if u.Version() != 3 {
			t.Errorf("unexpected version %d", u.Version())
		}
	}
}
