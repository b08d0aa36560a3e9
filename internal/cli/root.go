// Package cli implements the hxres command: rendering resource documents
// from the shell and serving them over HTTP.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pthm/hxres"
	_ "github.com/pthm/hxres/lib/format/collectionjson"
	_ "github.com/pthm/hxres/lib/format/hal"
	_ "github.com/pthm/hxres/lib/format/html"
	_ "github.com/pthm/hxres/lib/format/jsonapi"
)

// Version is set at build time with -ldflags "-X".
var Version = "0.1.0"

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by subcommands, set up before any of them runs.
type app struct {
	viper    *viper.Viper
	settings Settings
	logger   *zap.Logger
	config   *hxres.Config
}

func newRootCmd() *cobra.Command {
	a := &app{viper: newViper()}
	var configFile string

	cmd := &cobra.Command{
		Use:          "hxres",
		Short:        "Render hypermedia resources as HAL, JSON:API, Collection+JSON or HTML",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, configFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "settings file (yaml, json or toml)")
	flags.Bool("debug", false, "log every pipeline step")
	flags.String("default-format", hxres.DefaultFormatName, "format used when negotiation finds nothing")
	flags.String("rel-template", "{rel}", `template deriving association relations, e.g. "ex:{rel}"`)
	flags.String("encoding", "json", "encoding of JSON formats: json, json-compact or msgpack")

	cmd.AddCommand(
		renderCmd(a),
		serveCmd(a),
		formatsCmd(a),
		versionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	if err := bindFlags(a.viper, cmd.Flags()); err != nil {
		return err
	}
	s, err := LoadSettings(a.viper, configFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(s.Debug)
	if err != nil {
		return err
	}
	hxres.SetLogger(logger)

	cfg, err := s.Apply(logger)
	if err != nil {
		return err
	}
	a.settings, a.logger, a.config = s, logger, cfg
	return nil
}
