/*
Copyright © 2024 the GaussPlume authors.
This file is part of GaussPlume.

GaussPlume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GaussPlume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GaussPlume.  If not, see <http://www.gnu.org/licenses/>.
*/

package stability

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseClass(t *testing.T) {
	for _, s := range []string{"A", "b", " C ", "d", "E", "f"} {
		c, err := ParseClass(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if !c.Valid() {
			t.Errorf("%q: invalid class %d", s, c)
		}
	}
	for _, s := range []string{"", "G", "AB", "1"} {
		if _, err := ParseClass(s); !errors.Is(err, ErrUnclassified) {
			t.Errorf("%q: want ErrUnclassified, got %v", s, err)
		}
	}
}

func TestStable(t *testing.T) {
	want := map[Class]float64{A: 0, B: 0, C: 0, D: 0, E: 0.020, F: 0.035}
	for c, s := range want {
		if c.Stable() != (s != 0) {
			t.Errorf("%v: Stable()=%v", c, c.Stable())
		}
		if c.StabilityParameter() != s {
			t.Errorf("%v: s=%g, want %g", c, c.StabilityParameter(), s)
		}
	}
}

func TestParseArea(t *testing.T) {
	if a, err := ParseArea("Urban"); err != nil || a != Urban {
		t.Errorf("urban: %v, %v", a, err)
	}
	if a, err := ParseArea("rural"); err != nil || a != Rural {
		t.Errorf("rural: %v, %v", a, err)
	}
	if _, err := ParseArea("suburban"); !errors.Is(err, ErrUnclassified) {
		t.Errorf("want ErrUnclassified, got %v", err)
	}
}

func TestText(t *testing.T) {
	type s struct {
		Class Class
		Area  Area
	}
	b, err := json.Marshal(s{Class: E, Area: Urban})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"Class":"E","Area":"urban"}` {
		t.Errorf("got %s", b)
	}
	var r s
	if err := json.Unmarshal([]byte(`{"Class":"f","Area":"RURAL"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Class != F || r.Area != Rural {
		t.Errorf("got %+v", r)
	}
	if _, err := json.Marshal(s{}); err == nil {
		t.Error("zero values should not marshal")
	}
}
