package progtest

import (
	"testing"
)

func TestOutput(t *testing.T) {
	tests := []struct {
		o    output
		s    string
		want bool
	}{
		{output{"foo", false}, "foo", true},
		{output{"foo", false}, "foobar", false},
		{output{"foo", true}, "a foo b", true},
		{output{"", false}, "", true},
		{output{"", false}, "x", false},
	}
	for _, test := range tests {
		if got := test.o.matches(test.s); got != test.want {
			t.Errorf("%+v.matches(%q) = %v, want %v", test.o, test.s, got, test.want)
		}
	}
}

func TestCaseBuilders(t *testing.T) {
	c := ThatLoam("a", "b").WithStdin("in").ExitsWith(2).
		WritesStdout("out").WritesStderrContaining("err")
	if got := c.args; len(got) != 3 || got[0] != "loam" {
		t.Errorf("args = %q", got)
	}
	want := result{2, output{"out", false}, output{"err", true}}
	if c.stdin != "in" || c.want != want {
		t.Errorf("case = %+v", c)
	}
}
