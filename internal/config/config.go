// Package config loads the YAML description of a batch of root-finding runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"rootfind/internal/rootfind"
)

// Config is the top-level run file.
type Config struct {
	// Function selects f and the fixed-point map. Empty means the built-in cubic.
	Function FunctionConfig `yaml:"function"`
	// Runs are executed and reported in order.
	Runs []RunConfig `yaml:"runs" validate:"required,min=1,dive"`
}

// FunctionConfig names the expression source. Text and file are exclusive.
type FunctionConfig struct {
	Expr     string `yaml:"expr" validate:"excluded_with=ExprFile"`
	ExprFile string `yaml:"expr_file"`
	Phi      string `yaml:"phi" validate:"excluded_with=PhiFile"`
	PhiFile  string `yaml:"phi_file"`
}

// RunConfig is one method invocation. A and B are the bracket, or the two
// secant seeds; X0 is the Newton / fixed-point guess.
type RunConfig struct {
	Method  string  `yaml:"method" validate:"required,method"`
	A       float64 `yaml:"a"`
	B       float64 `yaml:"b"`
	X0      float64 `yaml:"x0"`
	Tol     float64 `yaml:"tol" validate:"gt=0"`
	MaxIter int     `yaml:"max_iter" validate:"min=1"`
}

// Spec converts the run to a search spec.
func (r RunConfig) Spec() (rootfind.Spec, error) {
	m, err := rootfind.ParseMethod(r.Method)
	if err != nil {
		return rootfind.Spec{}, err
	}
	return rootfind.Spec{Method: m, A: r.A, B: r.B, X0: r.X0, Tol: r.Tol, MaxIter: r.MaxIter}, nil
}

// Default returns the five standard runs on the built-in cubic.
func Default() *Config {
	return &Config{
		Runs: []RunConfig{
			{Method: string(rootfind.Bisection), A: 0, B: 1, Tol: 1e-5, MaxIter: 50},
			{Method: string(rootfind.FixedPoint), X0: 0.5, Tol: 0.0005, MaxIter: 50},
			{Method: string(rootfind.Newton), X0: 0.5, Tol: 1e-5, MaxIter: 50},
			{Method: string(rootfind.Secant), A: 0, B: 1, Tol: 0.0001, MaxIter: 50},
			{Method: string(rootfind.RegulaFalsi), A: 0, B: 1, Tol: 0.0001, MaxIter: 50},
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML strictly, so unknown fields are errors, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("method", func(fl validator.FieldLevel) bool {
		_, err := rootfind.ParseMethod(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ve := NewValidationError("config")
			for _, fe := range verrs {
				ve.AddError(fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return ve
		}
		return fmt.Errorf("struct validation failed: %w", err)
	}

	custom := c.Function.Expr != "" || c.Function.ExprFile != ""
	hasPhi := c.Function.Phi != "" || c.Function.PhiFile != ""
	if custom && !hasPhi {
		for i, r := range c.Runs {
			if m, _ := rootfind.ParseMethod(r.Method); m == rootfind.FixedPoint {
				ve := NewValidationError("config")
				ve.AddError(fmt.Sprintf("Config.Runs[%d]: fixed_point with a custom expression needs phi or phi_file", i))
				return ve
			}
		}
	}
	return nil
}

// ValidationError collects every validation failure of one entity.
type ValidationError struct {
	Entity string
	Errors []string
}

func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %s", e.Entity, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }
