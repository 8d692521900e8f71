package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		local  string
		remote string
		want   Ordering
	}{
		{"1.2.16", "1.2.16", Equal},
		{"1.0", "1.0", Equal},
		{"1.2.16", "1.2.17", Less},
		{"1.2.17", "1.2.16", Greater},
		{"1.10", "1.9", Greater}, // numeric, not lexical
		{"1.9", "1.10", Less},
		{"1.2", "1.2.0", Less},    // fewer components
		{"1.2.0", "1.2", Greater}, // more components
		{"2", "1.9.9", Greater},
		{"1.a", "1.1", Less}, // non-numeric counts as 0
		{"1.1", "1.a", Greater},
		{"", "", Equal},
		{"", "0", Equal},
		{"", "1", Less},
		{"1", "", Greater},
		{"1.2.3", "1.2.3.4", Less},
		{"1.3", "1.2.9", Greater},
		{"01.002", "1.2", Equal},
	}

	for _, tt := range tests {
		got := Compare(tt.local, tt.remote)
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %v; want %v", tt.local, tt.remote, got, tt.want)
		}
	}
}

func TestCompareOnlyWalksLocalComponents(t *testing.T) {
	// Remote's extra components are never inspected; only the count decides.
	if got := Compare("1.2", "1.2.0.0"); got != Less {
		t.Fatalf("Compare(1.2, 1.2.0.0) = %v; want less", got)
	}
	if got := Compare("1.3", "1.2.99"); got != Greater {
		t.Fatalf("Compare(1.3, 1.2.99) = %v; want greater", got)
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		local  string
		remote string
		want   bool
	}{
		{"1.2.16", "1.3.0", true},
		{"1.3.0", "1.3.0", false},
		{"1.3.1", "1.3.0", false},
		{"1.2", "1.2.0", true},
	}

	for _, tt := range tests {
		if got := IsNewer(tt.local, tt.remote); got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v; want %v", tt.local, tt.remote, got, tt.want)
		}
	}
}

func TestOrderingString(t *testing.T) {
	if Less.String() != "less" || Equal.String() != "equal" || Greater.String() != "greater" {
		t.Fatalf("unexpected names: %s %s %s", Less, Equal, Greater)
	}
}
