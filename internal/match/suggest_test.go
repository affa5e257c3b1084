package match

import (
	"slices"
	"testing"
)

func TestRank(t *testing.T) {
	ranked := Rank("CustmerName", []string{"ID", "FullName", "CustomerName", "Email"})

	if len(ranked) == 0 || ranked[0].Name != "CustomerName" {
		t.Fatalf("Rank = %v, want CustomerName first", ranked)
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Errorf("Rank not sorted at %d: %v", i, ranked)
		}
	}
}

func TestRank_TiesSortByName(t *testing.T) {
	ranked := Rank("zz", []string{"b", "a"})

	if ranked[0].Name != "a" || ranked[1].Name != "b" {
		t.Errorf("ties should sort by name, got %v", ranked)
	}
}

func TestSuggest(t *testing.T) {
	known := []string{"ID", "Email", "FullName", "Address", "IsActive", "Initial"}

	tests := []struct {
		want     string
		limit    int
		expected []string
	}{
		{"Emaill", 3, []string{"Email"}},
		{"full_name", 3, []string{"FullName"}},
		{"Adress", 1, []string{"Address"}},
		{"Email", 3, nil},
		{"Zzzzzz", 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Suggest(tt.want, known, tt.limit); !slices.Equal(got, tt.expected) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.want, got, tt.expected)
			}
		})
	}
}
