package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExpand(t *testing.T) {
	tests := map[string]struct {
		tmpl   string
		data   any
		exp    string
		expErr string
	}{
		"plain text": {
			tmpl: "no markers here",
			exp:  "no markers here",
		},
		"field": {
			tmpl: "{{ .Actor }} joined",
			data: struct{ Actor string }{"alice"},
			exp:  "alice joined",
		},
		"sprig func": {
			tmpl: "{{ .Name | upper }} {{ add1 .N }}",
			data: map[string]any{"Name": "bob", "N": 1},
			exp:  "BOB 2",
		},
		"parse error": {
			tmpl:   "{{ .Broken",
			expErr: "parsing template",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Expand(tt.tmpl, tt.data)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", got, tt.exp)
		})
	}
}

func TestRender(t *testing.T) {
	tmpl := MustParse("list", "{{ range $i, $c := . }}{{ add1 $i }}. {{ $c }}\n{{ end }}")
	got, err := Render(tmpl, []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "output", got, "1. alice\n2. bob")
}

func TestTable(t *testing.T) {
	got := Table([][]string{{"a", "longer", "x"}, {"bbb", "c", "y"}})
	lines := strings.Split(got, "\n")
	testutil.AssertEqual(t, "line count", len(lines), 2)
	testutil.AssertEqual(t, "first", lines[0], "a    longer  x")
	testutil.AssertEqual(t, "second", lines[1], "bbb  c       y")
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("word ", 40)
	for _, line := range strings.Split(Wrap(long), "\n") {
		if len(strings.TrimSpace(line)) > DefaultWidth {
			t.Errorf("line longer than %d: %q", DefaultWidth, line)
		}
	}
	testutil.AssertEqual(t, "capitalize", Capitalize("alice"), "Alice")
}
