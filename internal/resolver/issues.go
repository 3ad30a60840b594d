package resolver

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Issue is a metric-semantics finding on a resolved query.
type Issue struct {
	RuleID   string
	Name     string
	Severity core.Severity
	Message  string
	Path     ResolutionPath
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s (%s)", i.Severity, i.RuleID, i.Message, i.Path)
}

// IssueSet is the issues of one query in discovery order.
type IssueSet []Issue

// HasErrors reports whether any issue has error severity.
func (s IssueSet) HasErrors() bool {
	for _, i := range s {
		if i.Severity == core.SeverityError {
			return true
		}
	}
	return false
}

// BySeverity returns the issues with the given severity.
func (s IssueSet) BySeverity(sev core.Severity) IssueSet {
	var out IssueSet
	for _, i := range s {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// ByRule returns the issues raised by one rule.
func (s IssueSet) ByRule(ruleID string) IssueSet {
	var out IssueSet
	for _, i := range s {
		if i.RuleID == ruleID {
			out = append(out, i)
		}
	}
	return out
}
