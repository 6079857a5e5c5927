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

package gaussplume

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gaussplume/science/stability"
)

func TestTrace(t *testing.T) {
	s := testScenario()
	r, err := s.Evaluate(Receptor{X: 1000})
	if err != nil {
		t.Fatal(err)
	}
	tr := r.Trace()
	names := []string{
		"wind speed at stack height",
		"horizontal dispersion",
		"vertical dispersion",
		"plume rise",
		"effective height",
		"effective dispersion",
		"vertical term",
		"decay term",
		"concentration",
	}
	if len(tr) != len(names) {
		t.Fatalf("have %d stages, want %d", len(tr), len(names))
	}
	for i, n := range names {
		if tr[i].Name != n {
			t.Errorf("stage %d: have %q, want %q", i, tr[i].Name, n)
		}
	}
	if tr[3].Note != "unstable/buoyancy" || tr[4].Note != "final rise" {
		t.Errorf("notes: %q, %q", tr[3].Note, tr[4].Note)
	}
	last := tr[len(tr)-1].Values[0]
	if last.Name != "C" || last.Value.(float64) != r.Concentration {
		t.Errorf("last value: %+v", last)
	}

	str := tr.String()
	if !strings.HasPrefix(str, "1. wind speed at stack height (rural D): p=0.15 Us=5.092\n") {
		t.Errorf("string:\n%s", str)
	}

	buf := new(bytes.Buffer)
	l := logrus.New()
	l.Out = buf
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true, DisableColors: true}
	tr.Log(l)
	if n := strings.Count(buf.String(), "\n"); n != len(names) {
		t.Errorf("have %d log lines, want %d:\n%s", n, len(names), buf.String())
	}
	if !strings.Contains(buf.String(), `msg="plume rise"`) {
		t.Errorf("missing plume rise:\n%s", buf.String())
	}
}

func TestTraceBranches(t *testing.T) {
	s := testScenario()
	s.Class = stability.A
	r, err := s.Evaluate(Receptor{X: 5000})
	if err != nil {
		t.Fatal(err)
	}
	if n := r.Trace()[2].Note; n != "rural, class A beyond 3.11 km" {
		t.Errorf("note: %q", n)
	}
	s.Area = stability.Urban
	r, err = s.Evaluate(Receptor{X: 5000})
	if err != nil {
		t.Fatal(err)
	}
	if n := r.Trace()[1].Note; n != "urban" {
		t.Errorf("note: %q", n)
	}

	r, err = s.Evaluate(Receptor{X: -5})
	if err == nil {
		t.Fatal("want error")
	}
	if tr := r.Trace(); len(tr) != 1 || tr[0].Name != "receptor" {
		t.Errorf("invalid receptor trace: %v", tr)
	}
}

func TestTraceDegenerate(t *testing.T) {
	r, err := testScenario().Evaluate(Receptor{X: 1000})
	if err != nil {
		t.Fatal(err)
	}
	r.Degenerate = true
	r.Concentration = math.Inf(1)
	tr := r.Trace()
	if n := tr[len(tr)-1].Note; n != "zero denominator" {
		t.Errorf("note: %q", n)
	}
	b, err := json.Marshal(tr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `{"Name":"C","Value":"+Inf"}`) {
		t.Errorf("json: %s", b)
	}
}
