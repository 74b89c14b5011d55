package page

import "testing"

func TestSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want int
		ok   bool
	}{
		{0, DefaultSize, true},
		{-3, DefaultSize, true},
		{10, 10, true},
		{MaxSize, MaxSize, true},
		{MaxSize + 1, 0, false},
	}
	for _, tc := range cases {
		got, ok := Size(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Size(%d) = (%d, %t), want (%d, %t)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	if got, ok := Offset(""); got != 0 || !ok {
		t.Fatalf("expected empty token to start at 0")
	}
	if got, ok := Offset("40"); got != 40 || !ok {
		t.Fatalf("expected offset 40, got %d", got)
	}
	for _, token := range []string{"-1", "abc", "1.5"} {
		if _, ok := Offset(token); ok {
			t.Errorf("expected token %q to be rejected", token)
		}
	}
}

func TestTrim(t *testing.T) {
	t.Parallel()

	items, next := Trim([]int{1, 2, 3}, 4, 2)
	if len(items) != 2 || next != "6" {
		t.Fatalf("expected 2 items and token 6, got %v %q", items, next)
	}

	items, next = Trim([]int{1, 2}, 0, 2)
	if len(items) != 2 || next != "" {
		t.Fatalf("expected full last page without token, got %v %q", items, next)
	}
}
