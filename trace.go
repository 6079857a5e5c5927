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
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Value is a named intermediate value.
type Value struct {
	Name  string
	Value interface{}
}

// MarshalJSON implements json.Marshaler. Non-finite numbers are
// encoded as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if f, ok := v.Value.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return json.Marshal(struct {
			Name  string
			Value string
		}{v.Name, strconv.FormatFloat(f, 'g', -1, 64)})
	}
	type value Value
	return json.Marshal(value(v))
}

// Stage is one step of a concentration calculation.
type Stage struct {
	Name   string
	Note   string
	Values []Value
}

// Trace is the ordered sequence of calculation stages that produced a Result.
type Trace []Stage

// Trace returns the stages of the calculation that produced r.
func (r *Result) Trace() Trace {
	if r.Invalid {
		note := "downwind distance must be positive"
		if r.X > 0 {
			note = "receptor must be at or above ground with finite coordinates"
		}
		return Trace{{
			Name:   "receptor",
			Note:   note,
			Values: []Value{{"x", r.X}, {"y", r.Y}, {"z", r.Z}},
		}}
	}
	d := r.Dispersion
	t := Trace{
		{
			Name:   "wind speed at stack height",
			Note:   fmt.Sprintf("%v %v", d.Area, d.Class),
			Values: []Value{{"p", r.WindExponent}, {"Us", r.Us}},
		},
	}

	sy := Stage{Name: "horizontal dispersion", Values: []Value{{"x", r.X}}}
	sz := Stage{Name: "vertical dispersion"}
	if d.Csy != 0 {
		sy.Note = "urban"
		sy.Values = append(sy.Values, Value{"Csy", d.Csy})
		sz.Note = "urban"
	} else {
		sy.Note = "rural"
		sy.Values = append(sy.Values, Value{"c", d.C}, Value{"d", d.D})
		switch {
		case d.ZFixed:
			sz.Note = "rural, class A beyond 3.11 km"
		case d.ZCapped:
			sz.Note = "rural, capped"
			sz.Values = append(sz.Values, Value{"a", d.A}, Value{"b", d.B})
		default:
			sz.Note = "rural"
			sz.Values = append(sz.Values, Value{"a", d.A}, Value{"b", d.B})
		}
	}
	sy.Values = append(sy.Values, Value{"σy", d.SigmaY})
	sz.Values = append(sz.Values, Value{"σz", d.SigmaZ})
	t = append(t, sy, sz)

	rise := r.Rise
	final := "gradual rise"
	if r.FinalRise {
		final = "final rise"
	}
	t = append(t,
		Stage{
			Name: "plume rise",
			Note: rise.Regime(),
			Values: []Value{
				{"Fb", rise.Fb}, {"ΔTc", rise.ΔTc}, {"Δh", rise.Δh}, {"xf", rise.Xf},
			},
		},
		Stage{
			Name:   "effective height",
			Note:   final,
			Values: []Value{{"h's", rise.StackHeight}, {"downwash", rise.Downwash}, {"he", r.He}},
		},
		Stage{
			Name:   "effective dispersion",
			Values: []Value{{"σye", r.SigmaYe}, {"σze", r.SigmaZe}},
		},
		Stage{Name: "vertical term", Values: []Value{{"V", r.V}}},
		Stage{Name: "decay term", Values: []Value{{"D", r.D}}},
	)
	conc := Stage{Name: "concentration", Values: []Value{{"C", r.Concentration}}}
	if r.Degenerate {
		conc.Note = "zero denominator"
	}
	return append(t, conc)
}

// Log writes each stage of t to l.
func (t Trace) Log(l logrus.FieldLogger) {
	for i, s := range t {
		f := logrus.Fields{"step": i + 1}
		if s.Note != "" {
			f["note"] = s.Note
		}
		for _, v := range s.Values {
			f[v.Name] = v.Value
		}
		l.WithFields(f).Info(s.Name)
	}
}

func (t Trace) String() string {
	b := new(bytes.Buffer)
	for i, s := range t {
		fmt.Fprintf(b, "%d. %s", i+1, s.Name)
		if s.Note != "" {
			fmt.Fprintf(b, " (%s)", s.Note)
		}
		b.WriteString(":")
		for _, v := range s.Values {
			switch x := v.Value.(type) {
			case float64:
				fmt.Fprintf(b, " %s=%.4g", v.Name, x)
			default:
				fmt.Fprintf(b, " %s=%v", v.Name, x)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
