package version

import "testing"

func TestNewerThan(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"0.3.1", "0.3.0", true},
		{"0.4.0", "0.3.9", true},
		{"1.0.0", "0.9.9", true},
		{"v1.2.3", "1.2.2", true},
		{"0.3.0", "0.3.0", false},
		{"0.3.0", "0.3.1", false},
		{"0.3", "0.3.0", false},
		{"garbage", "0.3.0", false},
	}
	for _, tt := range tests {
		if got := newerThan(tt.a, tt.b); got != tt.want {
			t.Errorf("newerThan(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
