package vision

import "testing"

func TestParseColor(t *testing.T) {
	for _, c := range []Color{Red, Yellow, Blue, Black} {
		got, err := ParseColor(c.String())
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseColor(%q) = %v, want %v", c.String(), got, c)
		}
	}

	if _, err := ParseColor("magenta"); err == nil {
		t.Error("ParseColor accepted an unsupported color")
	}
}

func TestBandContains(t *testing.T) {
	band := Band{Min: 300, Max: 5000}

	tests := []struct {
		v    float64
		want bool
	}{
		{299.9, false},
		{300, true},
		{2500, true},
		{5000, true},
		{5000.1, false},
	}

	for _, tt := range tests {
		if got := band.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSortByArea(t *testing.T) {
	objects := []Object{
		{Color: Red, Area: 1200},
		{Color: Blue, Area: 4800},
		{Color: Yellow, Area: 600},
	}

	sortByArea(objects)

	if objects[0].Area != 4800 || objects[1].Area != 1200 || objects[2].Area != 600 {
		t.Errorf("areas after sort: %v %v %v, want descending",
			objects[0].Area, objects[1].Area, objects[2].Area)
	}
}

func TestBlockColorsExcludeBlack(t *testing.T) {
	for _, c := range BlockColors() {
		if c == Black {
			t.Error("black is a sheet color only")
		}
	}
}
