package vendors

import "testing"

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		name   string
		raw    interface{}
		want   string
		wantOK bool
	}{
		{name: "valid_upper", raw: "D", want: "D", wantOK: true},
		{name: "valid_lower", raw: "j", want: "J", wantOK: true},
		{name: "padded", raw: " F ", want: "F", wantOK: true},
		{name: "out_of_enum", raw: "Z", wantOK: false},
		{name: "fancy_color", raw: "Fancy Yellow", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
		{name: "nil", raw: nil, wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeColor(tc.raw)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("NormalizeColor(%v) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestNormalizeClarity(t *testing.T) {
	cases := []struct {
		name   string
		raw    interface{}
		want   string
		wantOK bool
	}{
		{name: "flawless", raw: "FL", want: "FL", wantOK: true},
		{name: "lowercase", raw: "vvs1", want: "VVS1", wantOK: true},
		{name: "si3_allowed", raw: "SI3", want: "SI3", wantOK: true},
		{name: "i3_floor", raw: "I3", want: "I3", wantOK: true},
		{name: "unknown_grade", raw: "SI9", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeClarity(tc.raw)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("NormalizeClarity(%v) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	item := RawItem{
		"number":  1.52,
		"string":  "2.01",
		"padded":  " 3.5 ",
		"garbage": "one carat",
		"missing": nil,
	}

	if f, ok := parseFloat(item, "number"); !ok || f != 1.52 {
		t.Fatalf("parseFloat(number) = (%v, %v)", f, ok)
	}
	if f, ok := parseFloat(item, "string"); !ok || f != 2.01 {
		t.Fatalf("parseFloat(string) = (%v, %v)", f, ok)
	}
	if f, ok := parseFloat(item, "padded"); !ok || f != 3.5 {
		t.Fatalf("parseFloat(padded) = (%v, %v)", f, ok)
	}
	if _, ok := parseFloat(item, "garbage"); ok {
		t.Fatal("parseFloat(garbage) should not parse")
	}
	if _, ok := parseFloat(item, "missing"); ok {
		t.Fatal("parseFloat(missing) should not parse")
	}
	if _, ok := parseFloat(item, "absent"); ok {
		t.Fatal("parseFloat(absent) should not parse")
	}

	if f := floatOr(item, "garbage"); f != 0 {
		t.Fatalf("floatOr(garbage) = %v, want 0", f)
	}
}

func TestStrHelpers(t *testing.T) {
	item := RawItem{
		"id":    float64(98765),
		"name":  " Round ",
		"blank": "",
	}
	if got := str(item, "id"); got != "98765" {
		t.Fatalf("str(id) = %q", got)
	}
	if got := str(item, "name"); got != "Round" {
		t.Fatalf("str(name) = %q", got)
	}
	if got := strOr(item, "blank", "Unknown"); got != "Unknown" {
		t.Fatalf("strOr(blank) = %q", got)
	}
	if got := firstStr(item, "blank", "name"); got != "Round" {
		t.Fatalf("firstStr = %q", got)
	}
}
