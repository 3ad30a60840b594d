package naming

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Grammar:
//
//	item     → call { '.' method '(' args ')' }
//	call     → IDENT '(' args ')'
//	args     → [ arg { ',' arg } [ ',' ] ]
//	arg      → [ IDENT '=' ] value
//	value    → STRING | list | True | False | None
//	list     → '[' [ STRING { ',' STRING } [ ',' ] ] ']'

type valueKind int

const (
	valueString valueKind = iota
	valueList
	valueBool
	valueNone
)

type value struct {
	kind   valueKind
	str    string
	list   []string
	b      bool
	offset int
}

func (v value) describe() string {
	switch v.kind {
	case valueString:
		return "string"
	case valueList:
		return "list"
	case valueBool:
		return "bool"
	default:
		return "None"
	}
}

// callArgs holds the arguments of one call, before they are bound to parameter names.
type callArgs struct {
	positional []value
	keyword    map[string]value
	offset     int
}

// methodCall is a chained builder call such as .grain('month').
type methodCall struct {
	name string
	args callArgs
}

type itemExpr struct {
	call    string
	args    callArgs
	methods []methodCall
}

// parser reads one object-builder item expression.
type parser struct {
	input string
	lexer *lexer
	token token // current token
	peek  token // lookahead token
	err   *ParseTemplateError
}

func newParser(input string) *parser {
	p := &parser{input: input, lexer: newLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.nextToken()
}

func (p *parser) check(t tokenType) bool {
	return p.token.typ == t
}

func (p *parser) match(t tokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records an error.
func (p *parser) expect(t tokenType) bool {
	if p.match(t) {
		return true
	}
	p.unexpected(t.String())
	return false
}

func (p *parser) unexpected(expected string) {
	if p.token.typ == tokenIllegal && p.token.lit == errUnterminatedString {
		p.fail(p.token.offset, errUnterminatedString)
		return
	}
	p.failf(p.token.offset, errUnexpectedToken, p.token, expected)
}

func (p *parser) fail(offset int, msg string) {
	if p.err == nil {
		p.err = &ParseTemplateError{Input: p.input, Offset: offset, Message: msg}
	}
}

func (p *parser) failf(offset int, format string, args ...any) {
	p.fail(offset, fmt.Sprintf(format, args...))
}

// parseItem parses a whole input. The first error stops parsing.
func (p *parser) parseItem() (itemExpr, error) {
	var item itemExpr
	if !p.check(tokenIdent) {
		p.unexpected("Dimension, TimeDimension, Entity or Metric")
		return item, p.err
	}
	item.call = p.token.lit
	callOffset := p.token.offset
	p.nextToken()
	if _, ok := callSignatures[item.call]; !ok {
		p.failf(callOffset, errUnknownCall, item.call)
		return item, p.err
	}
	item.args = p.parseArgs()

	for p.err == nil && p.match(tokenDot) {
		if !p.check(tokenIdent) {
			p.unexpected("method name")
			break
		}
		m := methodCall{name: p.token.lit}
		methodOffset := p.token.offset
		p.nextToken()
		if _, ok := methodSignatures[m.name]; !ok {
			p.failf(methodOffset, errUnknownMethod, m.name)
			break
		}
		m.args = p.parseArgs()
		item.methods = append(item.methods, m)
	}
	if p.err == nil && !p.check(tokenEOF) {
		p.unexpected("end of input")
	}
	if p.err != nil {
		return itemExpr{}, p.err
	}
	return item, nil
}

func (p *parser) parseArgs() callArgs {
	args := callArgs{keyword: make(map[string]value), offset: p.token.offset}
	if !p.expect(tokenLParen) {
		return args
	}
	for p.err == nil && !p.check(tokenRParen) {
		if p.check(tokenIdent) && p.peek.typ == tokenAssign {
			key := p.token.lit
			keyOffset := p.token.offset
			p.nextToken()
			p.nextToken()
			if _, dup := args.keyword[key]; dup {
				p.failf(keyOffset, "duplicate argument %q", key)
				return args
			}
			args.keyword[key] = p.parseValue()
		} else {
			if len(args.keyword) > 0 {
				p.fail(p.token.offset, "positional argument follows keyword argument")
				return args
			}
			args.positional = append(args.positional, p.parseValue())
		}
		if !p.match(tokenComma) {
			break
		}
	}
	p.expect(tokenRParen)
	return args
}

func (p *parser) parseValue() value {
	v := value{offset: p.token.offset}
	switch {
	case p.check(tokenString):
		v.kind = valueString
		v.str = p.token.lit
		p.nextToken()
	case p.check(tokenLBracket):
		v.kind = valueList
		p.nextToken()
		for p.err == nil && !p.check(tokenRBracket) {
			if !p.check(tokenString) {
				p.unexpected("string")
				return v
			}
			v.list = append(v.list, p.token.lit)
			p.nextToken()
			if !p.match(tokenComma) {
				break
			}
		}
		p.expect(tokenRBracket)
	case p.check(tokenIdent) && (p.token.lit == "True" || p.token.lit == "False"):
		v.kind = valueBool
		v.b = p.token.lit == "True"
		p.nextToken()
	case p.check(tokenIdent) && p.token.lit == "None":
		v.kind = valueNone
		p.nextToken()
	default:
		p.unexpected("string, list, True, False or None")
	}
	return v
}

// signature lists the parameter names of a call in positional order.
type signature []string

var callSignatures = map[string]signature{
	"Dimension":     {"name", "entity_path"},
	"TimeDimension": {"time_dimension_name", "time_granularity_name", "entity_path", "descending", "date_part_name"},
	"Entity":        {"entity_name", "entity_path"},
	"Metric":        {"metric_name", "group_by", "descending"},
}

var methodSignatures = map[string]signature{
	"grain":      {"time_granularity"},
	"date_part":  {"date_part_name"},
	"descending": {"is_descending"},
}

// bind maps positional and keyword arguments to parameter names.
func (a callArgs) bind(input, call string, sig signature) (map[string]value, error) {
	if len(a.positional) > len(sig) {
		return nil, &ParseTemplateError{Input: input, Offset: a.offset,
			Message: fmt.Sprintf("%s() takes at most %d arguments, got %d", call, len(sig), len(a.positional))}
	}
	bound := make(map[string]value, len(a.positional)+len(a.keyword))
	for i, v := range a.positional {
		bound[sig[i]] = v
	}
	for key, v := range a.keyword {
		if !sig.has(key) {
			return nil, &ParseTemplateError{Input: input, Offset: v.offset, Message: fmt.Sprintf(errUnknownArgument, call, key)}
		}
		if _, dup := bound[key]; dup {
			return nil, &ParseTemplateError{Input: input, Offset: v.offset,
				Message: fmt.Sprintf("%s() got multiple values for argument %q", call, key)}
		}
		bound[key] = v
	}
	for key, v := range bound {
		if v.kind == valueNone {
			delete(bound, key)
		}
	}
	return bound, nil
}

func (s signature) has(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// ObjectBuilderScheme reads and writes call-style items such as
// "TimeDimension('metric_time', 'month')".
type ObjectBuilderScheme struct {
	grains GrainResolver
}

// NewObjectBuilderScheme creates the object-builder scheme. A nil resolver knows standard grains only.
func NewObjectBuilderScheme(grains GrainResolver) *ObjectBuilderScheme {
	if grains == nil {
		grains = StandardGrains{}
	}
	return &ObjectBuilderScheme{grains: grains}
}

// Name returns "object_builder".
func (s *ObjectBuilderScheme) Name() string { return "object_builder" }

// Accepts reports whether input looks like a call.
func (s *ObjectBuilderScheme) Accepts(input string) bool {
	return strings.Contains(input, "(")
}

// Parse reads one object-builder item. Grammar violations, unknown calls and unknown
// methods are *ParseTemplateError; invalid names, grains and date parts are
// *InvalidQuerySyntaxError.
func (s *ObjectBuilderScheme) Parse(input string) (Description, error) {
	expr, err := newParser(input).parseItem()
	if err != nil {
		return Description{}, err
	}
	return s.describe(input, expr)
}

func (s *ObjectBuilderScheme) describe(input string, expr itemExpr) (Description, error) {
	params, err := expr.args.bind(input, expr.call, callSignatures[expr.call])
	if err != nil {
		return Description{}, err
	}

	d := Description{}
	var nameParam string
	switch expr.call {
	case "Dimension":
		d.Kind, nameParam = ItemDimension, "name"
	case "TimeDimension":
		d.Kind, nameParam = ItemTimeDimension, "time_dimension_name"
	case "Entity":
		d.Kind, nameParam = ItemEntity, "entity_name"
	case "Metric":
		d.Kind, nameParam = ItemMetric, "metric_name"
	}

	rawName, err := stringParam(input, expr.call, params, nameParam, true)
	if err != nil {
		return Description{}, err
	}
	name, err := splitDunder(input, rawName, s.grains)
	if err != nil {
		return Description{}, err
	}
	d.ElementName = name.ElementName
	d.GrainName = name.GranularityName

	entityPath, err := listParam(input, expr.call, params, "entity_path")
	if err != nil {
		return Description{}, err
	}
	d.EntityLinks = append(lower(entityPath), name.EntityLinkNames...)
	if len(d.EntityLinks) == 0 {
		d.EntityLinks = nil
	}

	grain, err := stringParam(input, expr.call, params, "time_granularity_name", false)
	if err != nil {
		return Description{}, err
	}
	datePart, err := stringParam(input, expr.call, params, "date_part_name", false)
	if err != nil {
		return Description{}, err
	}
	if desc, ok := params["descending"]; ok {
		if desc.kind != valueBool {
			return Description{}, syntaxErrorf(input, "descending must be True or False, got %s", desc.describe())
		}
		d.Descending = desc.b
	}
	if d.Kind == ItemMetric {
		groupBy, err := listParam(input, expr.call, params, "group_by")
		if err != nil {
			return Description{}, err
		}
		if len(groupBy) == 0 {
			return Description{}, syntaxErrorf(input, "Metric() requires group_by")
		}
		d.GroupBy = lower(groupBy)
	}

	for _, m := range expr.methods {
		mp, err := m.args.bind(input, m.name, methodSignatures[m.name])
		if err != nil {
			return Description{}, err
		}
		switch m.name {
		case "grain":
			v, err := stringParam(input, m.name, mp, "time_granularity", true)
			if err != nil {
				return Description{}, err
			}
			if grain != "" && !strings.EqualFold(grain, v) {
				return Description{}, syntaxErrorf(input, "granularity set twice: %q and %q", grain, v)
			}
			grain = v
		case "date_part":
			v, err := stringParam(input, m.name, mp, "date_part_name", true)
			if err != nil {
				return Description{}, err
			}
			if datePart != "" && !strings.EqualFold(datePart, v) {
				return Description{}, syntaxErrorf(input, "date part set twice: %q and %q", datePart, v)
			}
			datePart = v
		case "descending":
			v, ok := mp["is_descending"]
			if !ok {
				d.Descending = true
				continue
			}
			if v.kind != valueBool {
				return Description{}, syntaxErrorf(input, "descending() takes True or False, got %s", v.describe())
			}
			d.Descending = v.b
		}
	}

	if err := s.applyTimeParams(input, &d, grain, datePart); err != nil {
		return Description{}, err
	}
	return d, nil
}

// applyTimeParams checks the explicit grain and date part against the name and the item kind.
func (s *ObjectBuilderScheme) applyTimeParams(input string, d *Description, grain, datePart string) error {
	if grain != "" {
		grain = strings.ToLower(grain)
		if !s.grains.IsGranularityName(grain) {
			return syntaxErrorf(input, "unknown time granularity %q", grain)
		}
		if d.GrainName != "" && d.GrainName != grain {
			return syntaxErrorf(input, "name has granularity %q but %q was requested", d.GrainName, grain)
		}
		d.GrainName = grain
	}
	if datePart != "" {
		part, ok := core.ParseDatePart(datePart)
		if !ok {
			return syntaxErrorf(input, "unknown date part %q", datePart)
		}
		d.DatePart = &part
	}
	if d.GrainName != "" && d.DatePart != nil {
		return syntaxErrorf(input, "a time granularity and a date part cannot both be set")
	}
	if (d.Kind == ItemEntity || d.Kind == ItemMetric) && (d.GrainName != "" || d.DatePart != nil) {
		return syntaxErrorf(input, "%s() does not take a time granularity or date part", d.Kind)
	}
	return nil
}

func stringParam(input, call string, params map[string]value, key string, required bool) (string, error) {
	v, ok := params[key]
	if !ok {
		if required {
			return "", syntaxErrorf(input, "%s() missing required argument %q", call, key)
		}
		return "", nil
	}
	if v.kind != valueString {
		return "", syntaxErrorf(input, "%s() argument %q must be a string, got %s", call, key, v.describe())
	}
	if required && v.str == "" {
		return "", syntaxErrorf(input, "%s() argument %q is empty", call, key)
	}
	return v.str, nil
}

func listParam(input, call string, params map[string]value, key string) ([]string, error) {
	v, ok := params[key]
	if !ok {
		return nil, nil
	}
	switch v.kind {
	case valueList:
		return v.list, nil
	case valueString:
		return []string{v.str}, nil
	default:
		return nil, syntaxErrorf(input, "%s() argument %q must be a list of strings, got %s", call, key, v.describe())
	}
}

func lower(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}
