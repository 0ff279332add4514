package gateway

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Just a headline", "Just a headline"},
		{"tags", "<p>Breaking: <b>big</b> news</p>", "Breaking: big news"},
		{"entity", "Rock &amp; Roll", "Rock & Roll"},
		{"whitespace", "  <div>\n  spaced   out\n</div>  ", "spaced out"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("%s: stripHTML(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
