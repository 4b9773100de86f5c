package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/chumicat/SecureChangeRequestFormatter/internal/types"

	"gopkg.in/yaml.v3"
)

// ReplaceRule is one literal pattern -> replacement substitution applied to
// the service field after normalization. Rules run in file order.
type ReplaceRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Config maps logical fields to the literal header text a customer's
// spreadsheets use. Src through Rm are required; Usg and Cmt are optional.
type Config struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
	Srv string `yaml:"srv"`
	Add string `yaml:"add"`
	Rm  string `yaml:"rm"`
	Usg string `yaml:"usg"`
	Cmt string `yaml:"cmt"`

	ServiceReplace []ReplaceRule `yaml:"service_replace"`
}

// Load reads and validates the field mapping from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports every required field left unmapped. A config that fails
// validation aborts the run before any workbook is opened.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range types.RequiredFields {
		if c.Header(f) == "" {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Header returns the configured header text for a logical field, or "" if
// the field is unmapped.
func (c *Config) Header(f types.Field) string {
	switch f {
	case types.FieldSource:
		return c.Src
	case types.FieldDestination:
		return c.Dst
	case types.FieldService:
		return c.Srv
	case types.FieldAdd:
		return c.Add
	case types.FieldRemove:
		return c.Rm
	case types.FieldUsage:
		return c.Usg
	case types.FieldComment:
		return c.Cmt
	}
	return ""
}

// ReverseIndex builds the header-text -> logical-field lookup used by the
// schema resolver. Substitution rules are not headers and never appear here.
func (c *Config) ReverseIndex() map[string]types.Field {
	idx := make(map[string]types.Field)
	fields := []types.Field{
		types.FieldSource, types.FieldDestination, types.FieldService,
		types.FieldAdd, types.FieldRemove, types.FieldUsage, types.FieldComment,
	}
	for _, f := range fields {
		if h := c.Header(f); h != "" {
			idx[h] = f
		}
	}
	return idx
}
