package types

import "testing"

func TestStoneMarginContains(t *testing.T) {
	m := StoneMargin{RangeStart: 1, RangeEnd: 5}

	cases := []struct {
		name  string
		value float64
		want  bool
	}{
		{name: "below", value: 0.99, want: false},
		{name: "start_inclusive", value: 1, want: true},
		{name: "inside", value: 3.2, want: true},
		{name: "end_exclusive", value: 5, want: false},
		{name: "above", value: 5.01, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Contains(tc.value); got != tc.want {
				t.Fatalf("Contains(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
