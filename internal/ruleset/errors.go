package ruleset

import "fmt"

// DocumentError describes a rule-set that is not valid YAML or does not match
// the document structure. Path locates the offending entry, e.g.
// "query_dq[1].route".
type DocumentError struct {
	Path    string
	Message string
	Err     error
}

func (e *DocumentError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, msg)
	}
	return msg
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
