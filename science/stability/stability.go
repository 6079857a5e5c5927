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

// Package stability holds the Pasquill-Gifford atmospheric stability classes
// and the land-use area types that select between dispersion parameterizations.
package stability

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnclassified is returned when a stability class or area type
// is not one of the recognized values.
var ErrUnclassified = errors.New("stability: unclassified stability class or area type")

// Class is a Pasquill-Gifford stability class, from A (very unstable)
// to F (moderately stable).
type Class int

// The six stability classes.
const (
	A Class = iota + 1
	B
	C
	D
	E
	F
)

var classNames = [...]string{"", "A", "B", "C", "D", "E", "F"}

// Valid reports whether c is one of A through F.
func (c Class) Valid() bool { return c >= A && c <= F }

// Stable reports whether c is one of the stable classes (E or F).
func (c Class) Stable() bool { return c == E || c == F }

// StabilityParameter returns the Briggs stability parameter s (s⁻²)
// used for plume rise in stable conditions. It is zero for
// non-stable classes.
func (c Class) StabilityParameter() float64 {
	switch c {
	case F:
		return 0.035
	case E:
		return 0.020
	default:
		return 0
	}
}

func (c Class) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// ParseClass converts a one-letter class name (case insensitive)
// to a Class.
func ParseClass(s string) (Class, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	for i := A; i <= F; i++ {
		if classNames[i] == t {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: class %q", ErrUnclassified, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: class %d", ErrUnclassified, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	v, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Area is the land-use type of the area surrounding the source.
type Area int

// Area types.
const (
	Rural Area = iota + 1
	Urban
)

// Valid reports whether a is Rural or Urban.
func (a Area) Valid() bool { return a == Rural || a == Urban }

func (a Area) String() string {
	switch a {
	case Rural:
		return "rural"
	case Urban:
		return "urban"
	default:
		return fmt.Sprintf("Area(%d)", int(a))
	}
}

// ParseArea converts "rural" or "urban" (case insensitive) to an Area.
func ParseArea(s string) (Area, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rural":
		return Rural, nil
	case "urban":
		return Urban, nil
	}
	return 0, fmt.Errorf("%w: area type %q", ErrUnclassified, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Area) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: area type %d", ErrUnclassified, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Area) UnmarshalText(b []byte) error {
	v, err := ParseArea(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
