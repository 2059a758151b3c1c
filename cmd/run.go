/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/model_problems/FerroX"
	"github.com/notargets/goferrox/utils"
)

type RunOptions struct {
	InputFile     string
	Overrides     []string
	Units         int
	AlwaysWarn    bool
	WarningsYAML  string
	CPUProfileDir string
	Perf          bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run <inputs> [key=value ...]",
	Short: "Initialize the device and evolve the polarization",
	Long: `Reads the inputs file, builds the geometry and boundary conditions,
then relaxes the ferroelectric polarization for the requested number of steps.
Warnings are reported after initialization and at the end of the run.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ro := &RunOptions{
			InputFile:     args[0],
			Overrides:     args[1:],
			Units:         viper.GetInt("run.units"),
			AlwaysWarn:    viper.GetBool("run.always-warn"),
			WarningsYAML:  viper.GetString("run.warnings-yaml"),
			CPUProfileDir: viper.GetString("run.cpuprofile"),
			Perf:          viper.GetBool("run.perf"),
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := RunFerroX(ctx, ro, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().IntP("units", "u", 0, "number of execution units, 0 uses one per CPU")
	RunCmd.Flags().BoolP("always-warn", "w", false, "log every warning immediately as well as in the reports, regardless of --log")
	RunCmd.Flags().String("warnings-yaml", "", "also write each global warning report to this file as YAML")
	RunCmd.Flags().String("cpuprofile", "", "write a pprof CPU profile into this directory")
	RunCmd.Flags().Bool("perf", false, "count CPU instructions spent in InitData (linux)")
	for _, name := range []string{"units", "always-warn", "warnings-yaml", "cpuprofile", "perf"} {
		_ = viper.BindPFlag("run."+name, RunCmd.Flags().Lookup(name))
	}
}

func RunFerroX(ctx context.Context, ro *RunOptions, out io.Writer) (err error) {
	if ro.CPUProfileDir != "" {
		defer utils.StartCPUProfile(ro.CPUProfileDir)()
	}
	opts := []FerroX.Option{
		FerroX.WithUnits(ro.Units),
		FerroX.WithAlwaysWarnImmediately(ro.AlwaysWarn),
		FerroX.WithLocalOutput(out),
		FerroX.WithGlobalOutput(out),
	}
	if ro.WarningsYAML != "" {
		var f *os.File
		if f, err = os.Create(ro.WarningsYAML); err != nil {
			return fmt.Errorf("warnings file: %w", err)
		}
		defer f.Close()
		opts = append(opts, FerroX.WithWarningsYAML(f))
	}

	FerroX.SetInputSource(func() (*InputParameters.Reader, error) {
		return readInputs(ro.InputFile, ro.Overrides)
	}, opts...)
	defer FerroX.ResetInstance()

	fx, err := FerroX.GetInstance()
	if err != nil {
		return err
	}
	if ro.Perf {
		var count uint64
		count, err = utils.CountInstructions(fx.InitData)
		switch {
		case errors.Is(err, utils.ErrPerfUnsupported):
			logrus.Warnf("%v", err)
		case err != nil:
			return err
		default:
			logrus.Infof("InitData: %d CPU instructions", count)
		}
	} else if err = fx.InitData(); err != nil {
		return err
	}
	if fx.State() != FerroX.Initialized {
		return FerroX.ErrNotInitialized
	}
	fx.PrintLocalWarnings("after InitData")
	fx.PrintGlobalWarnings("after InitData")

	lk := FerroX.NewHomogeneousLK()
	if err = fx.Run(ctx, lk); err != nil {
		return err
	}
	fmt.Fprintf(out, "Step %d: mean ferroelectric polarization %g\n", fx.Timestep, lk.Mean(fx.Geom))
	logrus.Debugf("%s", utils.GetMemUsage())
	utils.DefaultProfiler.Print(out)
	return nil
}
