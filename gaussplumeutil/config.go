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

package gaussplumeutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/unit"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/gaussplume"
	"github.com/spatialmodel/gaussplume/science/stability"
)

// kilogramPerSecond is the dimension of an emission rate.
var kilogramPerSecond = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1}

// emissionUnits holds conversion factors from the supported emission rate
// units to kg/s.
var emissionUnits = map[string]float64{
	"g/s":       1.e-3,
	"kg/s":      1,
	"kg/year":   1. / (3600 * 8760),
	"tons/year": 907.18474 / (3600 * 8760),
	"ug/s":      1.e-9,
	"μg/s":      1.e-9,
}

// checkEmissionUnits expands any environment variables in the emissions
// units and ensures that an acceptable value was specified.
func checkEmissionUnits(u string) (string, error) {
	u = os.ExpandEnv(u)
	if _, ok := emissionUnits[u]; !ok {
		return u, fmt.Errorf("the Scenario.EmissionUnits variable in the configuration file "+
			"needs to be set to either g/s, kg/s, kg/year, tons/year, ug/s, or μg/s, but is currently set to `%s`",
			u)
	}
	return u, nil
}

// emissionRate converts emission rate v in units u to g/s.
func emissionRate(v float64, u string) (float64, error) {
	u, err := checkEmissionUnits(u)
	if err != nil {
		return 0, err
	}
	q := unit.New(v*emissionUnits[u], kilogramPerSecond)
	if err := q.Check(kilogramPerSecond); err != nil {
		return 0, fmt.Errorf("gaussplume: converting emission rate: %v", err)
	}
	return q.Value() * 1000, nil
}

// exitVelocity calculates stack exit velocity [m/s] from volumetric flow
// rate qs [m³/s] and stack diameter ds [m].
func exitVelocity(qs, ds float64) (float64, error) {
	flow := unit.New(qs, unit.Meter3PerSecond)
	area := unit.New(math.Pi*ds*ds/4, unit.Meter2)
	v := unit.Div(flow, area)
	if err := v.Check(unit.MeterPerSecond); err != nil {
		return 0, fmt.Errorf("gaussplume: calculating exit velocity: %v", err)
	}
	return v.Value(), nil
}

// ScenarioFromConfig creates a new validated scenario from the
// "Scenario" configuration variables in cfg.
func ScenarioFromConfig(cfg *viper.Viper) (gaussplume.Scenario, error) {
	var s gaussplume.Scenario
	var err error

	s.Class, err = stability.ParseClass(os.ExpandEnv(cfg.GetString("Scenario.Class")))
	if err != nil {
		return s, err
	}
	s.Area, err = stability.ParseArea(os.ExpandEnv(cfg.GetString("Scenario.Area")))
	if err != nil {
		return s, err
	}
	s.EmissionRate, err = emissionRate(cfg.GetFloat64("Scenario.EmissionRate"), cfg.GetString("Scenario.EmissionUnits"))
	if err != nil {
		return s, err
	}
	s.WindSpeed = cfg.GetFloat64("Scenario.WindSpeed")
	s.ReferenceHeight = cfg.GetFloat64("Scenario.ReferenceHeight")
	s.MixingHeight = cfg.GetFloat64("Scenario.MixingHeight")
	s.StackDiameter = cfg.GetFloat64("Scenario.StackDiameter")
	s.StackHeight = cfg.GetFloat64("Scenario.StackHeight")
	s.StackTemperature = cfg.GetFloat64("Scenario.StackTemperature")
	s.AmbientTemperature = cfg.GetFloat64("Scenario.AmbientTemperature")
	s.HalfLife = cfg.GetFloat64("Scenario.HalfLife")

	s.ExitVelocity = cfg.GetFloat64("Scenario.ExitVelocity")
	if qs := cfg.GetFloat64("Scenario.FlowRate"); qs != 0 {
		if s.ExitVelocity != 0 {
			return s, fmt.Errorf("gaussplume: only one of Scenario.ExitVelocity and Scenario.FlowRate may be specified")
		}
		if s.StackDiameter > 0 {
			s.ExitVelocity, err = exitVelocity(qs, s.StackDiameter)
			if err != nil {
				return s, err
			}
		}
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// ReceptorFromConfig returns the receptor specified by the "Receptor"
// configuration variables in cfg.
func ReceptorFromConfig(cfg *viper.Viper) gaussplume.Receptor {
	return gaussplume.Receptor{
		X: cfg.GetFloat64("Receptor.X"),
		Y: cfg.GetFloat64("Receptor.Y"),
		Z: cfg.GetFloat64("Receptor.Z"),
	}
}

// FieldConfigFromConfig returns the receptor grid specified by the "Field"
// configuration variables in cfg.
func FieldConfigFromConfig(cfg *viper.Viper) (gaussplume.FieldConfig, error) {
	fc := gaussplume.FieldConfig{
		XMin:   cfg.GetFloat64("Field.XMin"),
		XMax:   cfg.GetFloat64("Field.XMax"),
		YMin:   cfg.GetFloat64("Field.YMin"),
		YMax:   cfg.GetFloat64("Field.YMax"),
		Nx:     cfg.GetInt("Field.Nx"),
		Ny:     cfg.GetInt("Field.Ny"),
		Height: cfg.GetFloat64("Field.Height"),
	}
	return fc, fc.Validate()
}

// checkOutputFile expands any environment variables in f and makes sure
// that the output directory exists and the file type is supported.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.png")`)
	}
	f = os.ExpandEnv(f)
	if _, ok := fieldWriters[strings.ToLower(filepath.Ext(f))]; !ok {
		return f, fmt.Errorf("gaussplume: unsupported OutputFile type %q; supported types are %s",
			filepath.Ext(f), strings.Join(outputTypes(), ", "))
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("gaussplume: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}
