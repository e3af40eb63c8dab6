/*
   Copyright @ 2024 The anaconda backend authors.

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

package run

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carlzhc/anaconda/pkg/version"
	"github.com/carlzhc/anaconda/utils"
)

var config struct {
	listenAddr  string
	metricsAddr string
	development bool
}

var rootCmd = &cobra.Command{
	Use:     "anaconda-backend",
	Version: version.Version,
	Short:   "OS installer backend",
	Long: `anaconda-backend runs the modular backend of the OS installer.
It exposes the storage, partitioning, bootloader and network modules
over an HTTP publication surface for installer frontends.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return subMain()
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
	fs := rootCmd.Flags()
	fs.StringVar(&config.listenAddr, "listen-addr", utils.DefaultListenAddr, "Listen address for the publication surface")
	fs.StringVar(&config.metricsAddr, "metrics-addr", utils.DefaultMetricsAddr, "Listen address for metrics")
	fs.BoolVar(&config.development, "development", false, "Use development logger config")
}
