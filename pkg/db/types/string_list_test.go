package dbtypes

import "testing"

func TestStringListScanVariants(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want []string
	}{
		{name: "nil", src: nil, want: []string{}},
		{name: "string", src: `["rudraksha","mala"]`, want: []string{"rudraksha", "mala"}},
		{name: "bytes", src: []byte(`["https://img/1.png"]`), want: []string{"https://img/1.png"}},
		{name: "empty bytes", src: []byte{}, want: []string{}},
		{name: "json null", src: "null", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var l StringList
			if err := l.Scan(tc.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if len(l) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, l)
			}
			for i := range tc.want {
				if l[i] != tc.want[i] {
					t.Fatalf("index %d: expected %q got %q", i, tc.want[i], l[i])
				}
			}
		})
	}
}

func TestStringListScanRejectsUnknownType(t *testing.T) {
	var l StringList
	if err := l.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}

func TestStringListValuePreservesOrder(t *testing.T) {
	v, err := StringList{"b", "a"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["b","a"]` {
		t.Fatalf("unexpected value %v", v)
	}
	empty, _ := StringList(nil).Value()
	if empty != "[]" {
		t.Fatalf("expected [] for nil list, got %v", empty)
	}
}
