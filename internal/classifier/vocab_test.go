package classifier

import (
	"strings"
	"testing"
)

func TestParseVocabulary_Success(t *testing.T) {
	csv := `index,mid,display_name
0,/m/09x0r,Speech
1,/m/04rlf,Music
2,/m/0jbk,Animal
`
	names, err := parseVocabulary(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseVocabulary: %v", err)
	}
	want := []string{"Speech", "Music", "Animal"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q; want %q", i, names[i], want[i])
		}
	}
}

func TestParseVocabulary_Errors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"empty input", ""},
		{"header only", "index,mid,display_name\n"},
		{"non-contiguous index", "index,mid,display_name\n0,/m/a,A\n2,/m/b,B\n"},
		{"out of order", "index,mid,display_name\n1,/m/a,A\n0,/m/b,B\n"},
		{"non-numeric index", "index,mid,display_name\nx,/m/a,A\n"},
		{"wrong column count", "index,mid,display_name\n0,/m/a\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseVocabulary(strings.NewReader(tc.csv)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
