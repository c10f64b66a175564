// Package viper loads extraction rules from a configuration file.
package viper

import (
	"errors"
	"fmt"
	"os"

	"github.com/fwojciec/logiris"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override rule keys.
// LOGIRIS_ORIGIN overrides origin.
const EnvPrefix = "LOGIRIS"

type selectorConfig struct {
	Name      string `mapstructure:"name"`
	Tag       string `mapstructure:"tag"`
	Attr      string `mapstructure:"attr"`
	MinLength *int   `mapstructure:"min_length"`
}

type markerConfig struct {
	Text string `mapstructure:"text"`
	Kind string `mapstructure:"kind"`
}

type rulesConfig struct {
	Origin          string           `mapstructure:"origin"`
	Selectors       []selectorConfig `mapstructure:"selectors"`
	Markers         []markerConfig   `mapstructure:"markers"`
	HeaderTags      []string         `mapstructure:"header_tags"`
	ContainerTags   []string         `mapstructure:"container_tags"`
	ProtectedWindow int              `mapstructure:"protected_window"`
	ClosingMarkup   *string          `mapstructure:"closing_markup"`
}

// LoadRules reads rules from the file at path. Keys left out of the file
// keep their default values. A non-empty list replaces the default list
// as a whole. An empty path returns the defaults.
func LoadRules(path string) (logiris.Rules, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindEnv("origin"); err != nil {
		return logiris.Rules{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				return logiris.Rules{}, logiris.Errorf(logiris.ENOTFOUND, "rules file %s not found", path)
			}
			return logiris.Rules{}, logiris.Errorf(logiris.EINVALID, "reading rules %s: %v", path, err)
		}
	}

	var cfg rulesConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return logiris.Rules{}, fmt.Errorf("parsing rules %s: %w", path, err)
	}

	rules := apply(logiris.DefaultRules(), cfg)
	if err := rules.Validate(); err != nil {
		return logiris.Rules{}, err
	}
	return rules, nil
}

func apply(rules logiris.Rules, cfg rulesConfig) logiris.Rules {
	if cfg.Origin != "" {
		rules.Origin = cfg.Origin
	}
	if len(cfg.Selectors) > 0 {
		rules.Selectors = make([]logiris.BodySelector, len(cfg.Selectors))
		for i, s := range cfg.Selectors {
			minLength := logiris.DefaultMinLength
			if s.MinLength != nil {
				minLength = *s.MinLength
			}
			name := s.Name
			if name == "" {
				name = s.Tag
			}
			rules.Selectors[i] = logiris.BodySelector{Name: name, Tag: s.Tag, Attr: s.Attr, MinLength: minLength}
		}
	}
	if len(cfg.Markers) > 0 {
		rules.Markers = make([]logiris.Marker, len(cfg.Markers))
		for i, m := range cfg.Markers {
			kind := logiris.MarkerKind(m.Kind)
			if kind == "" {
				kind = logiris.MarkerBoilerplate
			}
			rules.Markers[i] = logiris.Marker{Text: m.Text, Kind: kind}
		}
	}
	if len(cfg.HeaderTags) > 0 {
		rules.HeaderTags = cfg.HeaderTags
	}
	if len(cfg.ContainerTags) > 0 {
		rules.ContainerTags = cfg.ContainerTags
	}
	if cfg.ProtectedWindow != 0 {
		rules.ProtectedWindow = cfg.ProtectedWindow
	}
	if cfg.ClosingMarkup != nil {
		rules.ClosingMarkup = *cfg.ClosingMarkup
	}
	return rules
}
