// Command taskloop runs, resumes and inspects task sessions.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "taskloop",
	Short:         "Crash-safe task orchestration for tool-using models",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(viper.GetString("env-file")); err != nil {
			return err
		}
		return setupLogging(logLevel(), viper.GetString("log-format"))
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		syncLogging()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a JSON or YAML config file")
	flags.String("env-file", ".env", "Environment file with API_URL, API_KEY, MODEL_NAME")
	flags.String("log-level", "", "Log level (debug|info|warn|error) [default: info]")
	flags.String("log-format", "text", "Log format (text|json)")
	flags.String("session-backend", "", "Session store backend (sqlite|file|memory)")
	flags.String("session-path", "", "Session store location")

	for _, name := range []string{"config", "env-file", "log-level", "log-format", "session-backend", "session-path"} {
		mustBind(rootCmd, name)
	}

	viper.SetEnvPrefix("TASKLOOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(runCmd, resumeCmd, sessionsCmd, serveCmd, capabilitiesCmd)
}

// mustBind binds a flag of cmd to the viper key of the same name.
func mustBind(cmd *cobra.Command, name string) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if err := viper.BindPFlag(name, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
		os.Exit(1)
	}
}
