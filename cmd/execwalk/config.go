package main

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/desertwitch/execwalk/internal/flags"
	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// validate is shared, it caches the parsed struct tags.
var validate = validator.New(validator.WithRequiredStructEnabled())

type configFile struct {
	Run   *configFileRun   `yaml:"run"`
	Walk  *configFileWalk  `yaml:"walk"`
	Serve *configFileServe `yaml:"serve"`
}

func parseConfigFile(fsys afero.Fs, path string) (*configFile, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	yamlConfig := &configFile{}
	if err := decoder.Decode(&yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}

	if err := validate.Struct(yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to validate: %w", err)
	}

	return yamlConfig, nil
}

type configFileRun struct {
	DryRun    *bool             `yaml:"dry-run"`
	Dir       *string           `yaml:"dir"       validate:"omitempty,min=1"`
	Env       map[string]string `yaml:"env"       validate:"omitempty,dive,keys,min=1,endkeys"`
	Header    *string           `yaml:"header"`
	Separator *string           `yaml:"separator"`
	HideBody  *bool             `yaml:"hide-body"`
	Color     *bool             `yaml:"color"`

	LogLevel *flags.LogLevel `yaml:"log-level"`
	WantJSON *bool           `yaml:"json"`
}

func (yamlCfg *configFileRun) Merge(cfg *RunOptions, logs *logging.Options, setFlags map[string]bool) {
	if yamlCfg.DryRun != nil && !setFlags["dry-run"] {
		cfg.DryRun = *yamlCfg.DryRun
	}
	if yamlCfg.Dir != nil && !setFlags["dir"] {
		cfg.Dir = *yamlCfg.Dir
	}
	if yamlCfg.Env != nil && !setFlags["env"] {
		cfg.Env = maps.Clone(yamlCfg.Env)
	}
	if yamlCfg.Header != nil && !setFlags["header"] {
		cfg.Header = *yamlCfg.Header
	}
	if yamlCfg.Separator != nil && !setFlags["separator"] {
		cfg.Separator = *yamlCfg.Separator
	}
	if yamlCfg.HideBody != nil && !setFlags["hide-body"] {
		cfg.HideBody = *yamlCfg.HideBody
	}
	if yamlCfg.Color != nil && !setFlags["color"] {
		cfg.Color = *yamlCfg.Color
	}
	if yamlCfg.LogLevel != nil && !setFlags["log-level"] {
		logs.LogLevel = *yamlCfg.LogLevel
	}
	if yamlCfg.WantJSON != nil && !setFlags["json"] {
		logs.WantJSON = *yamlCfg.WantJSON
	}
}

type configFileWalk struct {
	DryRun      *bool             `yaml:"dry-run"`
	Env         map[string]string `yaml:"env"          validate:"omitempty,dive,keys,min=1,endkeys"`
	Color       *bool             `yaml:"color"`
	Kind        *flags.EntryKind  `yaml:"kind"`
	Walker      *flags.WalkerKind `yaml:"walker"`
	Exclude     *[]string         `yaml:"exclude"      validate:"omitempty,dive,min=1"`
	MaxDepth    *int              `yaml:"max-depth"    validate:"omitempty,gte=0"`
	IncludeRoot *bool             `yaml:"include-root"`
	NoIgnore    *bool             `yaml:"no-ignore"`
	Chdir       *bool             `yaml:"chdir"`
	Report      *string           `yaml:"report"       validate:"omitempty,min=1"`

	LogLevel *flags.LogLevel `yaml:"log-level"`
	WantJSON *bool           `yaml:"json"`
}

func (yamlCfg *configFileWalk) Merge(cfg *WalkOptions, logs *logging.Options, setFlags map[string]bool) {
	if yamlCfg.DryRun != nil && !setFlags["dry-run"] {
		cfg.DryRun = *yamlCfg.DryRun
	}
	if yamlCfg.Env != nil && !setFlags["env"] {
		cfg.Env = maps.Clone(yamlCfg.Env)
	}
	if yamlCfg.Color != nil && !setFlags["color"] {
		cfg.Color = *yamlCfg.Color
	}
	if yamlCfg.Kind != nil && !setFlags["kind"] {
		cfg.Kind = *yamlCfg.Kind
	}
	if yamlCfg.Walker != nil && !setFlags["walker"] {
		cfg.Walker = *yamlCfg.Walker
	}
	if yamlCfg.Exclude != nil && !setFlags["exclude"] {
		cfg.Exclude = slices.Clone(*yamlCfg.Exclude)
	}
	if yamlCfg.MaxDepth != nil && !setFlags["max-depth"] {
		cfg.MaxDepth = *yamlCfg.MaxDepth
	}
	if yamlCfg.IncludeRoot != nil && !setFlags["include-root"] {
		cfg.IncludeRoot = *yamlCfg.IncludeRoot
	}
	if yamlCfg.NoIgnore != nil && !setFlags["no-ignore"] {
		cfg.NoIgnore = *yamlCfg.NoIgnore
	}
	if yamlCfg.Chdir != nil && !setFlags["chdir"] {
		cfg.Chdir = *yamlCfg.Chdir
	}
	if yamlCfg.Report != nil && !setFlags["report"] {
		cfg.Report = *yamlCfg.Report
	}
	if yamlCfg.LogLevel != nil && !setFlags["log-level"] {
		logs.LogLevel = *yamlCfg.LogLevel
	}
	if yamlCfg.WantJSON != nil && !setFlags["json"] {
		logs.WantJSON = *yamlCfg.WantJSON
	}
}

type configFileServe struct {
	Dir          *string           `yaml:"dir"           validate:"omitempty,min=1"`
	Env          map[string]string `yaml:"env"           validate:"omitempty,dive,keys,min=1,endkeys"`
	Host         *string           `yaml:"host"          validate:"omitempty,hostname_rfc1123|ip"`
	Port         *int              `yaml:"port"          validate:"omitempty,min=1,max=65535"`
	Timeout      *flags.Duration   `yaml:"timeout"`
	PollInterval *flags.Duration   `yaml:"poll-interval"`

	LogLevel *flags.LogLevel `yaml:"log-level"`
	WantJSON *bool           `yaml:"json"`
}

func (yamlCfg *configFileServe) Merge(cfg *ServeOptions, logs *logging.Options, setFlags map[string]bool) {
	if yamlCfg.Dir != nil && !setFlags["dir"] {
		cfg.Dir = *yamlCfg.Dir
	}
	if yamlCfg.Env != nil && !setFlags["env"] {
		cfg.Env = maps.Clone(yamlCfg.Env)
	}
	if yamlCfg.Host != nil && !setFlags["host"] {
		cfg.Host = *yamlCfg.Host
	}
	if yamlCfg.Port != nil && !setFlags["port"] {
		cfg.Port = *yamlCfg.Port
	}
	if yamlCfg.Timeout != nil && !setFlags["timeout"] {
		cfg.Timeout = *yamlCfg.Timeout
	}
	if yamlCfg.PollInterval != nil && !setFlags["poll-interval"] {
		cfg.PollInterval = *yamlCfg.PollInterval
	}
	if yamlCfg.LogLevel != nil && !setFlags["log-level"] {
		logs.LogLevel = *yamlCfg.LogLevel
	}
	if yamlCfg.WantJSON != nil && !setFlags["json"] {
		logs.WantJSON = *yamlCfg.WantJSON
	}
}
