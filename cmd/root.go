// Package cmd implements vecbuild's command-line surface: a thin
// cobra wrapper around the orchestrator, generalized from the
// teacher's cmd package (same config-file discovery, same
// viper-prefixed-env convention).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vecbuild",
	Short: "Remote vector index build orchestrator",
	Long: `vecbuild offloads ANN vector index construction from a search-engine
data node to a remote build service via object storage, with a
guaranteed local fallback when the remote path fails.

Environment Variables:
  VECBUILD_REMOTE_BUILD_USERNAME   Basic auth username for the build service
  VECBUILD_REMOTE_BUILD_PASSWORD   Basic auth password for the build service`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is vecbuild.yaml in $HOME, then in the current directory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set. Config
// loading priority: CLI flags > environment variables > config file >
// defaults.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("vecbuild")
	}

	viper.SetEnvPrefix("VECBUILD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
