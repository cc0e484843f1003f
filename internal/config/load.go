package config

import (
	"context"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/relcut/internal/errors"
)

// envPrefix prefixes every environment override, e.g. RELCUT_STORAGE_BUCKET.
const envPrefix = "RELCUT"

// layer is one config file in the precedence chain. Later layers override
// earlier ones key by key.
type layer struct {
	name string
	path string
	// required layers fail when the file is missing.
	required bool
}

// Load reads configuration from all available sources with proper precedence.
// explicitPath is the --config file; it must exist when set. Missing global
// and project files are skipped silently.
func Load(ctx context.Context, explicitPath string) (*Config, error) {
	var layers []layer
	if global, err := GlobalConfigPath(); err == nil {
		layers = append(layers, layer{name: "global", path: global})
	}
	layers = append(layers, layer{name: "project", path: ProjectConfigPath()})
	if explicitPath != "" {
		layers = append(layers, layer{name: "explicit", path: explicitPath, required: true})
	}
	return load(ctx, layers)
}

// LoadFromPaths loads configuration from specific file paths, skipping the
// home and working directory lookup. projectConfigPath overrides
// globalConfigPath; either may be empty.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	var layers []layer
	if globalConfigPath != "" {
		layers = append(layers, layer{name: "global", path: globalConfigPath})
	}
	if projectConfigPath != "" {
		layers = append(layers, layer{name: "project", path: projectConfigPath})
	}
	return load(ctx, layers)
}

func load(ctx context.Context, layers []layer) (*Config, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	v := newViperInstance()

	for _, l := range layers {
		loaded, err := mergeLayer(v, l)
		if err != nil {
			return nil, err
		}
		if loaded {
			logger.Debug().Str("layer", l.name).Str("path", l.path).Msg("config layer merged")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	logger.Debug().
		Str("repo.remote", cfg.Repo.Remote).
		Str("storage.bucket", cfg.Storage.Bucket).
		Str("registry.repository", cfg.Registry.Repository).
		Str("hosting.owner", cfg.Hosting.Owner).
		Dur("buildstatus.timeout", cfg.BuildStatus.Timeout).
		Msg("configuration loaded")

	return &cfg, nil
}

// mergeLayer merges l into v and reports whether a file was read.
func mergeLayer(v *viper.Viper, l layer) (bool, error) {
	if _, err := os.Stat(l.path); err != nil {
		if l.required {
			return false, errors.Wrapf(err, "failed to read %s config: %s", l.name, l.path)
		}
		return false, nil
	}

	v.SetConfigFile(l.path)
	if err := v.MergeInConfig(); err != nil {
		return false, errors.Wrapf(err, "failed to read %s config: %s", l.name, l.path)
	}
	return true, nil
}

// newViperInstance returns a viper with the RELCUT_ env binding and defaults.
// The prefix must be set before setDefaults binds the list keys.
func newViperInstance() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// viperDecoderOption decodes durations from strings like "30s" and lists
// from comma-separated environment values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
