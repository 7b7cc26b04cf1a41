// Package ruleset loads and parses rule-set documents.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"gopkg.in/yaml.v3"
)

// document mirrors the YAML layout. Unknown keys are ignored; see UnknownKeys.
type document struct {
	QueryDQ []querySource `yaml:"query_dq"`
	Rules   []genericRule `yaml:"rules"`
}

type querySource struct {
	Route      string         `yaml:"route"`
	Parameters map[string]any `yaml:"parameters"`
	RulesDQ    []expectation  `yaml:"rules_dq"`
}

type genericRule struct {
	Parameters   *core.TableParameters `yaml:"parameters"`
	Expectations []expectation         `yaml:"expectations"`
}

// expectation decodes a declaration, splitting rule and severity from the
// rule-specific parameters.
type expectation core.Expectation

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *expectation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expectation must be a mapping", value.Line)
	}

	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	rule, ok := raw["rule"].(string)
	if !ok || rule == "" {
		return fmt.Errorf("line %d: expectation is missing a rule name", value.Line)
	}
	delete(raw, "rule")

	var severity core.Severity
	if v, present := raw["severity"]; present {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("line %d: severity must be a string", value.Line)
		}
		parsed, err := core.ParseSeverity(s)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		severity = parsed
		delete(raw, "severity")
	}

	*e = expectation{Rule: rule, Severity: severity, Params: raw}
	return nil
}

// Parse decodes a rule-set document. An empty document is valid and has no
// sections.
func Parse(data []byte) (*core.RuleSetDocument, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &core.RuleSetDocument{}, nil
		}
		return nil, &DocumentError{Message: "invalid rule-set YAML", Err: err}
	}

	out := &core.RuleSetDocument{}
	for i, qs := range doc.QueryDQ {
		if qs.Route == "" {
			return nil, &DocumentError{
				Path:    fmt.Sprintf("%s[%d].route", core.SectionQueries, i),
				Message: "route is required",
			}
		}
		out.QuerySources = append(out.QuerySources, core.QuerySource{
			Route:        qs.Route,
			Parameters:   qs.Parameters,
			Expectations: convert(qs.RulesDQ),
		})
	}

	for i, r := range doc.Rules {
		if r.Parameters == nil && len(r.Expectations) == 0 {
			return nil, &DocumentError{
				Path:    fmt.Sprintf("%s[%d]", core.SectionRules, i),
				Message: "item declares neither parameters nor expectations",
			}
		}
		if r.Parameters != nil && r.Parameters.TableName == "" {
			return nil, &DocumentError{
				Path:    fmt.Sprintf("%s[%d].parameters.table_name", core.SectionRules, i),
				Message: "table_name is required",
			}
		}
		out.Rules = append(out.Rules, core.GenericRule{
			Parameters:   r.Parameters,
			Expectations: convert(r.Expectations),
		})
	}

	return out, nil
}

func convert(in []expectation) []core.Expectation {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.Expectation, len(in))
	for i, e := range in {
		out[i] = core.Expectation(e)
	}
	return out
}

// knownKeys lists the keys read at each level of a rule-set.
var (
	documentKeys  = []string{core.SectionQueries, core.SectionRules}
	sourceKeys    = []string{"route", "parameters", "rules_dq"}
	ruleItemKeys  = []string{"parameters", "expectations"}
	tableParamKeys = []string{"table_name", "database_input"}
)

// UnknownKeys returns the paths of keys Parse ignores, such as a top-level
// description or an owner under a table's parameters. Query source
// parameters and expectation entries accept any key.
func UnknownKeys(data []byte) []string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}

	var unknown []string
	top := root.Content[0]
	unknown = appendUnknown(unknown, "", top, documentKeys)
	for i, src := range sequence(mapValue(top, core.SectionQueries)) {
		unknown = appendUnknown(unknown, fmt.Sprintf("%s[%d].", core.SectionQueries, i), src, sourceKeys)
	}
	for i, item := range sequence(mapValue(top, core.SectionRules)) {
		prefix := fmt.Sprintf("%s[%d].", core.SectionRules, i)
		unknown = appendUnknown(unknown, prefix, item, ruleItemKeys)
		unknown = appendUnknown(unknown, prefix+"parameters.", mapValue(item, "parameters"), tableParamKeys)
	}
	return unknown
}

func appendUnknown(out []string, prefix string, n *yaml.Node, known []string) []string {
	if n == nil || n.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := n.Content[i].Value; !slices.Contains(known, key) {
			out = append(out, prefix+key)
		}
	}
	return out
}

func mapValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func sequence(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}
