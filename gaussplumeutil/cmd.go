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

// Package gaussplumeutil provides the command-line interface, configuration
// handling, output writers, and web server for the gaussplume model.
package gaussplumeutil

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/gaussplume"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	scenarioFlags := []*pflag.FlagSet{pointCmd.Flags(), fieldCmd.Flags()}
	fieldFlags := []*pflag.FlagSet{fieldCmd.Flags()}
	defaultField := gaussplume.DefaultFieldConfig()

	// Options are the configuration options available to GaussPlume.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the desired logfile location. It can
              include environment variables. For the field command, the default
              is the OutputFile path with a ".log" extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Scenario.EmissionRate",
			usage: `
              Scenario.EmissionRate is the pollutant emission rate, in the units
              specified by Scenario.EmissionUnits.`,
			shorthand:  "q",
			defaultVal: 0.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.EmissionUnits",
			usage: `
              Scenario.EmissionUnits gives the units that the emission rate is in.
              Acceptable values are 'g/s', 'kg/s', 'kg/year', 'tons/year', 'ug/s',
              and 'μg/s'.`,
			defaultVal: "g/s",
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.WindSpeed",
			usage: `
              Scenario.WindSpeed is the wind speed in m/s measured at
              Scenario.ReferenceHeight.`,
			shorthand:  "u",
			defaultVal: 4.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.ReferenceHeight",
			usage: `
              Scenario.ReferenceHeight is the height in m of the wind speed measurement.`,
			defaultVal: 10.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.Class",
			usage: `
              Scenario.Class is the Pasquill-Gifford atmospheric stability class,
              from A (very unstable) to F (moderately stable).`,
			shorthand:  "c",
			defaultVal: "D",
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.Area",
			usage: `
              Scenario.Area is the land use type around the source, either 'rural'
              or 'urban'.`,
			defaultVal: "rural",
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.MixingHeight",
			usage: `
              Scenario.MixingHeight is the boundary layer height in m.`,
			defaultVal: 1000.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.StackDiameter",
			usage: `
              Scenario.StackDiameter is the inner diameter of the stack in m.`,
			defaultVal: 1.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.StackHeight",
			usage: `
              Scenario.StackHeight is the physical stack height in m.`,
			defaultVal: 50.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.StackTemperature",
			usage: `
              Scenario.StackTemperature is the stack gas exit temperature in K.`,
			defaultVal: 400.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.AmbientTemperature",
			usage: `
              Scenario.AmbientTemperature is the ambient air temperature in K.`,
			defaultVal: 293.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.ExitVelocity",
			usage: `
              Scenario.ExitVelocity is the stack gas exit velocity in m/s. Either
              this or Scenario.FlowRate must be specified.`,
			defaultVal: 0.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.FlowRate",
			usage: `
              Scenario.FlowRate is the volumetric stack gas flow rate in m³/s. If
              specified, it is used with Scenario.StackDiameter to calculate the
              exit velocity.`,
			defaultVal: 0.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Scenario.HalfLife",
			usage: `
              Scenario.HalfLife is the pollutant half life in s. Zero means that
              the pollutant does not decay.`,
			defaultVal: 0.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Receptor.X",
			usage: `
              Receptor.X is the downwind distance from the source to the
              receptor in m. It must be positive.`,
			shorthand:  "x",
			defaultVal: 1000.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Receptor.Y",
			usage: `
              Receptor.Y is the crosswind distance from the plume centerline
              to the receptor in m.`,
			shorthand:  "y",
			defaultVal: 0.,
			flagsets:   scenarioFlags,
		},
		{
			name: "Receptor.Z",
			usage: `
              Receptor.Z is the receptor height above ground in m.`,
			shorthand:  "z",
			defaultVal: 0.,
			flagsets:   scenarioFlags,
		},
		{
			name: "trace",
			usage: `
              trace specifies whether to log each step of the calculation.`,
			shorthand:  "t",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location. The file
              type is determined by the extension: .nc (NetCDF), .shp (shapefile),
              .png (image), .csv, or .xlsx. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "gaussplume.png",
			flagsets:   fieldFlags,
		},
		{
			name: "Field.XMin",
			usage: `
              Field.XMin is the smallest downwind distance in the receptor grid in m.`,
			defaultVal: defaultField.XMin,
			flagsets:   fieldFlags,
		},
		{
			name: "Field.XMax",
			usage: `
              Field.XMax is the largest downwind distance in the receptor grid in m.`,
			defaultVal: defaultField.XMax,
			flagsets:   fieldFlags,
		},
		{
			name: "Field.YMin",
			usage: `
              Field.YMin is the smallest crosswind distance in the receptor grid in m.`,
			defaultVal: defaultField.YMin,
			flagsets:   fieldFlags,
		},
		{
			name: "Field.YMax",
			usage: `
              Field.YMax is the largest crosswind distance in the receptor grid in m.`,
			defaultVal: defaultField.YMax,
			flagsets:   fieldFlags,
		},
		{
			name: "Field.Nx",
			usage: `
              Field.Nx is the number of receptors in the downwind direction.`,
			defaultVal: defaultField.Nx,
			flagsets:   fieldFlags,
		},
		{
			name: "Field.Ny",
			usage: `
              Field.Ny is the number of receptors in the crosswind direction.`,
			defaultVal: defaultField.Ny,
			flagsets:   fieldFlags,
		},
		{
			name: "Field.Height",
			usage: `
              Field.Height is the height of the receptor grid above ground in m.`,
			defaultVal: defaultField.Height,
			flagsets:   fieldFlags,
		},
		{
			name: "addr",
			usage: `
              addr is the address for the web server to listen on.`,
			defaultVal: "localhost:7171",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "open",
			usage: `
              open specifies whether to open the web server address in a browser.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize is the number of rendered field images the web server
              keeps in memory. Zero or less disables caching.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GAUSSPLUME")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, v, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, v, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, v, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, v, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(pointCmd)
	Root.AddCommand(fieldCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gaussplume: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// newLogger returns a logger that writes to the command output and,
// if logFile is not empty, to logFile. The returned function closes
// the log file.
func newLogger(cmd *cobra.Command, logFile string) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.Out = cmd.OutOrStdout()
	if logFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(os.ExpandEnv(logFile))
	if err != nil {
		return nil, nil, fmt.Errorf("gaussplume: problem creating log file: %v", err)
	}
	log.Out = io.MultiWriter(cmd.OutOrStdout(), f)
	return log, f.Close, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gaussplume",
	Short: "A Gaussian plume air dispersion model.",
	Long: `GaussPlume estimates steady-state pollutant concentrations downwind of
an elevated point source using a Gaussian plume model with Pasquill-Gifford
and Briggs dispersion coefficients and Briggs plume rise.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GAUSSPLUME_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of GaussPlume.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GaussPlume v%s\n", gaussplume.Version)
	},
	DisableAutoGenTag: true,
}

// pointCmd calculates the concentration at a single receptor.
var pointCmd = &cobra.Command{
	Use:   "point",
	Short: "Calculate the concentration at a receptor.",
	Long: `point calculates the concentration at the receptor specified by
Receptor.X, Receptor.Y, and Receptor.Z. Use --trace to print each step of the
calculation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ScenarioFromConfig(Cfg)
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cmd, Cfg.GetString("LogFile"))
		if err != nil {
			return err
		}
		defer closeLog()
		return Point(cmd.OutOrStdout(), log, s, ReceptorFromConfig(Cfg), cast.ToBool(Cfg.Get("trace")))
	},
	DisableAutoGenTag: true,
}

// Point calculates the concentration at receptor r and writes it to w.
// If trace is true, each step of the calculation is written to log.
func Point(w io.Writer, log logrus.FieldLogger, s gaussplume.Scenario, r gaussplume.Receptor, trace bool) error {
	res, err := s.Evaluate(r)
	if err != nil {
		return err
	}
	if trace {
		res.Trace().Log(log)
	}
	if res.Degenerate || math.IsInf(res.Concentration, 0) {
		fmt.Fprintf(w, "Concentration at (%g, %g, %g) m is undefined (zero denominator)\n", r.X, r.Y, r.Z)
		return nil
	}
	fmt.Fprintf(w, "Concentration at (%g, %g, %g) m: %.6g μg/m³\n", r.X, r.Y, r.Z, res.Concentration)
	return nil
}

// fieldCmd calculates concentrations on a grid of receptors.
var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Calculate concentrations on a grid of receptors.",
	Long: `field calculates concentrations on the grid of receptors specified by
the Field configuration variables and writes them to OutputFile. The receptor
specified by the Receptor variables is marked on image outputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ScenarioFromConfig(Cfg)
		if err != nil {
			return err
		}
		fc, err := FieldConfigFromConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cmd, checkLogFile(Cfg.GetString("LogFile"), outputFile))
		if err != nil {
			return err
		}
		defer closeLog()
		return RunField(log, outputFile, s, fc, ReceptorFromConfig(Cfg))
	},
	DisableAutoGenTag: true,
}

// RunField calculates concentrations on the receptor grid specified by fc
// and writes them to outputFile. The receptor r is marked on image outputs.
func RunField(log logrus.FieldLogger, outputFile string, s gaussplume.Scenario, fc gaussplume.FieldConfig, r gaussplume.Receptor) error {
	log.WithFields(logrus.Fields{
		"nx": fc.Nx, "ny": fc.Ny, "height": fc.Height,
	}).Info("calculating concentration field")
	f, err := s.Field(fc)
	if err != nil {
		return err
	}
	if f.Gaps > 0 {
		log.WithField("receptors", f.Gaps).Warn("receptors between σz table brackets set to zero")
	}
	max, at, err := f.Max()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"concentration": max, "x": at.X, "y": at.Y,
	}).Info("maximum concentration")

	meta := Metadata{Version: gaussplume.Version, Scenario: s, Field: fc, Receptor: r}
	if err := WriteField(outputFile, f, meta); err != nil {
		return err
	}
	log.WithField("file", outputFile).Info("wrote concentration field")
	return nil
}

// serveCmd starts the web server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server.",
	Long: `serve starts a web server that calculates concentrations at receptors
(POST /evaluate) and renders concentration fields (POST /field). Usage
statistics are available at /stats.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := newLogger(cmd, Cfg.GetString("LogFile"))
		if err != nil {
			return err
		}
		defer closeLog()
		s := NewServer(Cfg.GetInt("CacheSize"))
		s.Log = log
		addr := Cfg.GetString("addr")
		log.WithField("addr", addr).Info("starting web server")
		if Cfg.GetBool("open") {
			if err := open.Run("http://" + addr); err != nil {
				log.WithError(err).Warn("could not open browser")
			}
		}
		return http.ListenAndServe(addr, s)
	},
	DisableAutoGenTag: true,
}
