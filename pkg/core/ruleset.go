package core

// Rule-set document sections.
const (
	SectionQueries = "query_dq"
	SectionRules   = "rules"
)

// ParamDatabase is the query-source parameter naming the warehouse database
// a rendered query runs against.
const ParamDatabase = "database_input"

// RuleSetDocument is a parsed rule-set. Both sections are optional; a document
// with neither is a valid no-op.
type RuleSetDocument struct {
	QuerySources []QuerySource
	Rules        []GenericRule
}

// IsEmpty reports whether the document declares nothing to run.
func (d *RuleSetDocument) IsEmpty() bool {
	return d == nil || (len(d.QuerySources) == 0 && len(d.Rules) == 0)
}

// QuerySource is one `query_dq` entry: a SQL template location, the
// parameters it is rendered with, and the expectations run against its result.
type QuerySource struct {
	Route        string
	Parameters   map[string]any
	Expectations []Expectation
}

// Database returns the database_input parameter, if declared.
func (q QuerySource) Database() string {
	if v, ok := q.Parameters[ParamDatabase].(string); ok {
		return v
	}
	return ""
}

// Expectation is a single declared check. Params holds every key of the
// declaration other than rule and severity.
type Expectation struct {
	Rule     string
	Severity Severity
	Params   map[string]any
}

// Column returns the declared column parameter, if any.
func (e Expectation) Column() string {
	if v, ok := e.Params["column"].(string); ok {
		return v
	}
	return ""
}

// TableParameters is the `parameters` block of a generic rule item.
type TableParameters struct {
	TableName string `yaml:"table_name"`
	Database  string `yaml:"database_input"`
}

// GenericRule is one item of the `rules` list as declared.
type GenericRule struct {
	Parameters   *TableParameters
	Expectations []Expectation
}

// RuleGroup binds a table to the expectations validated against it.
// Each group owns the frame fetched for its table.
type RuleGroup struct {
	Table        string
	Database     string
	Expectations []Expectation
}
