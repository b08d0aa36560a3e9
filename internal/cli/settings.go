package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pthm/hxres"
	"github.com/pthm/hxres/lib/encoding"
)

// Settings are the CLI settings, read from flags, HXRES_* environment
// variables and an optional config file, in that order of precedence.
//
//	default_format: json_api
//	rel_template: "ex:{rel}"
//	encoding: json-compact
//	listen: ":8080"
//	format_options:
//	  hal:
//	    plural_links: [item]
type Settings struct {
	DefaultFormat string                    `mapstructure:"default_format"`
	RelTemplate   string                    `mapstructure:"rel_template"`
	Encoding      string                    `mapstructure:"encoding"`
	Listen        string                    `mapstructure:"listen"`
	Debug         bool                      `mapstructure:"debug"`
	FormatOptions map[string]map[string]any `mapstructure:"format_options"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("default_format", hxres.DefaultFormatName)
	v.SetDefault("rel_template", "{rel}")
	v.SetDefault("encoding", "json")
	v.SetDefault("listen", ":8080")
	v.SetEnvPrefix("hxres")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags binds flags to their settings keys; "default-format" sets
// "default_format".
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		err = errors.CombineErrors(err, v.BindPFlag(key, f))
	})
	return err
}

// LoadSettings reads the config file, when one is set, and decodes v.
func LoadSettings(v *viper.Viper, configFile string) (Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.Wrapf(err, "reading %s", configFile)
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "decoding settings")
	}
	return s, nil
}

// Apply builds the Config the settings describe.
func (s Settings) Apply(logger *zap.Logger) (*hxres.Config, error) {
	policy := hxres.NewPolicy(
		hxres.WithDefaultFormat(s.DefaultFormat),
		hxres.WithRelTemplate(s.RelTemplate),
	)
	opts := []hxres.Option{hxres.WithPolicy(policy), hxres.WithLogger(logger)}
	if s.Encoding != "" {
		if s.Encoding == "html" {
			return nil, errors.Newf("encoding %q can't encode JSON formats", s.Encoding)
		}
		ser, err := encoding.ByName(s.Encoding)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hxres.WithSerializer(hxres.KindJSON, ser))
	}
	cfg := hxres.NewConfig(opts...)

	if _, ok := cfg.Formats().Lookup(s.DefaultFormat); !ok {
		return nil, errors.Wrapf(hxres.ErrUnknownFormat, "default format %q", s.DefaultFormat)
	}
	for name, fo := range s.FormatOptions {
		cfg.FormatOptions(name, hxres.FormatOptions(fo))
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
