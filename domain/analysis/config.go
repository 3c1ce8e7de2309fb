package analysis

import (
	"encoding/json"
	"fmt"
)

// Per-type configuration shapes. The set of tags is closed: each analysis
// type maps to exactly one configuration shape.

type DescriptiveConfig struct {
	Variables []string `json:"variables,omitempty"`
	Outliers  bool     `json:"outliers,omitempty"`
}

type ReliabilityConfig struct {
	Groups []string `json:"groups,omitempty"`
}

type EFAConfig struct {
	NFactors       int    `json:"n_factors,omitempty"`
	Rotation       string `json:"rotation,omitempty"`
	ExtractionType string `json:"extraction_type,omitempty"`
}

type CFAConfig struct {
	ModelSpec string `json:"model_spec,omitempty"`
	Estimator string `json:"estimator,omitempty"`
}

type CorrelationConfig struct {
	Method    string   `json:"method,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

type TTestConfig struct {
	GroupingVariable string  `json:"grouping_variable,omitempty"`
	Paired           bool    `json:"paired,omitempty"`
	Alpha            float64 `json:"alpha,omitempty"`
}

type ANOVAConfig struct {
	Factor   string `json:"factor,omitempty"`
	PostHoc  string `json:"post_hoc,omitempty"`
	Levene   bool   `json:"levene,omitempty"`
	Welch    bool   `json:"welch,omitempty"`
	TwoWay   bool   `json:"two_way,omitempty"`
	Factor2  string `json:"factor2,omitempty"`
	Interact bool   `json:"interact,omitempty"`
}

type RegressionConfig struct {
	Dependent    string   `json:"dependent,omitempty"`
	Independents []string `json:"independents,omitempty"`
	Method       string   `json:"method,omitempty"`
}

type SEMConfig struct {
	ModelSpec string `json:"model_spec,omitempty"`
	Estimator string `json:"estimator,omitempty"`
	Bootstrap int    `json:"bootstrap,omitempty"`
}

// Config is a discriminated union keyed by analysis type: for a given Type
// at most the matching shape pointer is set.
type Config struct {
	Type        Type               `json:"type"`
	Descriptive *DescriptiveConfig `json:"descriptive,omitempty"`
	Reliability *ReliabilityConfig `json:"reliability,omitempty"`
	EFA         *EFAConfig         `json:"efa,omitempty"`
	CFA         *CFAConfig         `json:"cfa,omitempty"`
	Correlation *CorrelationConfig `json:"correlation,omitempty"`
	TTest       *TTestConfig       `json:"ttest,omitempty"`
	ANOVA       *ANOVAConfig       `json:"anova,omitempty"`
	Regression  *RegressionConfig  `json:"regression,omitempty"`
	SEM         *SEMConfig         `json:"sem,omitempty"`
}

// EmptyConfig returns the fallback configuration for a type with nothing
// stored: the tag with no shape, serialized as {} parameters.
func EmptyConfig(t Type) Config {
	return Config{Type: t}
}

// Validate checks that only the shape matching the tag is populated
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("unknown analysis type %q", c.Type)
	}
	set := map[Type]bool{
		TypeDescriptive: c.Descriptive != nil,
		TypeReliability: c.Reliability != nil,
		TypeEFA:         c.EFA != nil,
		TypeCFA:         c.CFA != nil,
		TypeCorrelation: c.Correlation != nil,
		TypeTTest:       c.TTest != nil,
		TypeANOVA:       c.ANOVA != nil,
		TypeRegression:  c.Regression != nil,
		TypeSEM:         c.SEM != nil,
	}
	for t, populated := range set {
		if populated && t != c.Type {
			return fmt.Errorf("config tagged %s carries a %s shape", c.Type, t)
		}
	}
	return nil
}

// Params returns the type-specific shape as a JSON object for the dispatch
// payload, falling back to {} when no shape is stored.
func (c Config) Params() (json.RawMessage, error) {
	var shape interface{}
	switch c.Type {
	case TypeDescriptive:
		shape = c.Descriptive
	case TypeReliability:
		shape = c.Reliability
	case TypeEFA:
		shape = c.EFA
	case TypeCFA:
		shape = c.CFA
	case TypeCorrelation:
		shape = c.Correlation
	case TypeTTest:
		shape = c.TTest
	case TypeANOVA:
		shape = c.ANOVA
	case TypeRegression:
		shape = c.Regression
	case TypeSEM:
		shape = c.SEM
	default:
		return nil, fmt.Errorf("unknown analysis type %q", c.Type)
	}
	if shape == nil || isNilPointer(shape) {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(shape)
}

func isNilPointer(v interface{}) bool {
	switch p := v.(type) {
	case *DescriptiveConfig:
		return p == nil
	case *ReliabilityConfig:
		return p == nil
	case *EFAConfig:
		return p == nil
	case *CFAConfig:
		return p == nil
	case *CorrelationConfig:
		return p == nil
	case *TTestConfig:
		return p == nil
	case *ANOVAConfig:
		return p == nil
	case *RegressionConfig:
		return p == nil
	case *SEMConfig:
		return p == nil
	}
	return false
}
