package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pulseone/pulse-admin/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "pulse-admin",
	Short:        "Manage devices, alarms, data and exports of a PulseOne backend",
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		if err := config.LoadDotEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load .env file - %+v\n", err)
		}
	})
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().String(config.ApiBaseUrl, config.DefaultApiBaseUrl, `PulseOne backend url, e.g. "http://<hostname>:3000"`)
	rootCmd.PersistentFlags().String(config.ApiToken, "", `Bearer token sent with every request`)
	rootCmd.PersistentFlags().Duration(config.ApiTimeout, config.DefaultApiTimeout, `Timeout of a single request including retries`)
	rootCmd.PersistentFlags().Int(config.ApiRetries, config.DefaultApiRetries, `Number of retries for failed requests`)

	rootCmd.PersistentFlags().Bool(config.PreferencesEnabled, true, `Remember the page and page size of each listing`)
	rootCmd.PersistentFlags().String(config.PreferencesPath, config.DefaultPreferencesPath(), `Directory of the preferences store`)

	rootCmd.PersistentFlags().Int(config.PaginationPageSize, config.DefaultPageSize, `Default page size of listings`)
	rootCmd.PersistentFlags().Int(config.PaginationMaxPageSize, config.DefaultMaxPageSize, `Largest accepted page size`)
	rootCmd.PersistentFlags().Int(config.PaginationMaxVisible, config.DefaultMaxVisible, `Number of page links shown in the footer`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, config.DefaultPrometheusPort, `The port to serve /metrics on while watching`)

	// setup sub commands
	rootCmd.AddCommand(runVersionCmd)
	rootCmd.AddCommand(protocolsCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(alarmsCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
