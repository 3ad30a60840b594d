// Package validation runs metric-semantics rules over resolved queries.
//
// Rules register themselves with the global registry from init() functions
// (see the rules subpackage). An Analyzer runs every registered rule that is
// not disabled, applies severity overrides, and implements resolver.Validator
// so it can be passed to resolver.Config.
package validation
