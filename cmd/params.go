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
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goferrox/InputParameters"
)

type ParamsOptions struct {
	InputFile  string
	Overrides  []string
	YAML       bool
	Preamble   bool
	UseFloat32 bool
}

// ParamsCmd represents the params command
var ParamsCmd = &cobra.Command{
	Use:   "params <inputs> [key=value ...]",
	Short: "Check an inputs file and print the resulting parameters",
	Long: `Ingests and validates the parameters of an inputs file without running.
The result is printed as a table, as YAML, or as the preprocessor preamble
handed to device kernels.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		po := &ParamsOptions{
			InputFile:  args[0],
			Overrides:  args[1:],
			YAML:       viper.GetBool("params.yaml"),
			Preamble:   viper.GetBool("params.preamble"),
			UseFloat32: viper.GetBool("params.float32"),
		}
		if err := PrintParams(po, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ParamsCmd)
	ParamsCmd.Flags().Bool("yaml", false, "print the parameters as YAML")
	ParamsCmd.Flags().Bool("preamble", false, "print the kernel preprocessor preamble")
	ParamsCmd.Flags().Bool("float32", false, "use single precision in the preamble")
	for _, name := range []string{"yaml", "preamble", "float32"} {
		_ = viper.BindPFlag("params."+name, ParamsCmd.Flags().Lookup(name))
	}
}

func PrintParams(po *ParamsOptions, out io.Writer) error {
	r, err := readInputs(po.InputFile, po.Overrides)
	if err != nil {
		return err
	}
	p, err := InputParameters.Ingest(r)
	if err != nil {
		return err
	}
	if err = p.Validate(); err != nil {
		return err
	}
	switch {
	case po.Preamble:
		fmt.Fprint(out, p.KernelPreamble(po.UseFloat32))
	case po.YAML:
		data, err := p.ToYAML()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		p.Print(out)
	}
	return nil
}
