package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/neurlang/trainkit/logging"
)

type app struct {
	v      *viper.Viper
	logger *zap.Logger
	prof   *profile
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("TRAINKIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "trainkit",
		Short:         "Assemble training pipelines from experiment documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if a.v.GetBool("verbose") {
				level = "debug"
			}
			var err error
			a.logger, err = logging.New(logging.Options{Level: level, JSON: a.v.GetBool("json-logs")})
			if err != nil {
				return err
			}
			if path := a.v.GetString("cpuprofile"); path != "" {
				if a.prof, err = startProfile(path); err != nil {
					return err
				}
				a.logger.Debug("cpu profiling", zap.String("path", path))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := a.prof.stop(); err != nil && a.logger != nil {
				a.logger.Warn("failed to write cpu profile", zap.Error(err))
			}
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolP("verbose", "v", false, "log every assembly stage")
	flags.Bool("json-logs", false, "log as JSON")
	flags.String("cpuprofile", "", "write a CPU profile to this file")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(a.assembleCmd(), a.componentsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "trainkit:", err)
		os.Exit(1)
	}
}
