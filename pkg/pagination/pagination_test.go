package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		in       Params
		wantPage int
		wantSize int
	}{
		{"zero values", Params{}, 1, DefaultSize},
		{"negative page", Params{Page: -3, Size: 10}, 1, 10},
		{"oversized", Params{Page: 2, Size: 5000}, 2, MaxSize},
		{"in range", Params{Page: 4, Size: 50}, 4, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Size != tc.wantSize {
				t.Fatalf("Normalize() = %+v, want page=%d size=%d", got, tc.wantPage, tc.wantSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Size: 20}).Offset(); got != 40 {
		t.Fatalf("Offset() = %d, want 40", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("Offset() = %d, want 0", got)
	}
}

func TestNewPageNeverReturnsNilRecords(t *testing.T) {
	page := NewPage[string](nil, 0, Params{})
	if page.Records == nil {
		t.Fatal("records should be an empty slice, not nil")
	}
	if page.Page != 1 || page.Size != DefaultSize {
		t.Fatalf("unexpected page meta: %+v", page)
	}
}
