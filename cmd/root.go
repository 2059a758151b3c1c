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
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goferrox/InputParameters"
)

var (
	cfgFile string
	Version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goferrox",
	Short: "Phase-field simulation of ferroelectric devices",
	Long: `goferrox reads an inputs file of "key = value" lines, sets up the
dielectric, ferroelectric and semiconductor regions of a device and evolves
the polarization in time. Trailing key=value arguments override the file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setLogLevel(viper.GetString("log"))
	},
}

// versionCmd prints the build version and the compiled dimensionality
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "goferrox %s (SpaceDim = %d)\n", Version, InputParameters.SpaceDim)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.goferrox.yaml)")
	rootCmd.PersistentFlags().String("log", "info", "log level: trace, debug, info, warn, error")
	_ = viper.BindPFlag("log", rootCmd.PersistentFlags().Lookup("log"))

	rootCmd.AddCommand(versionCmd)
}

func setLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".goferrox" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".goferrox")
	}

	viper.SetEnvPrefix("goferrox")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}

// readInputs loads the inputs file and applies command line overrides.
func readInputs(path string, overrides []string) (*InputParameters.Reader, error) {
	r, err := InputParameters.NewReaderFromFile(path)
	if err != nil {
		return nil, err
	}
	if err = r.Override(overrides); err != nil {
		return nil, err
	}
	return r, nil
}
