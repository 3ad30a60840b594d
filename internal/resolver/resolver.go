// Package resolver resolves the group-by items, filters and order-by of a
// metric query against the items each metric can be grouped by.
//
// Each query builds a resolution DAG: a Query root over its metrics, metrics
// over their input metrics, and measure sources at the leaves. Candidate sets
// are computed bottom-up; the root set is the intersection of the requested
// metrics. Failures carry the path to the node that lacks the item. Issues
// found by validators are returned as values alongside a successful result.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapmetrics/internal/linkable"
	"github.com/leapstack-labs/leapmetrics/internal/manifest"
	"github.com/leapstack-labs/leapmetrics/internal/naming"
	"github.com/leapstack-labs/leapmetrics/internal/pattern"
	"github.com/leapstack-labs/leapmetrics/internal/semgraph"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/spec"
)

// Query is a metric query as written by a user.
type Query struct {
	Metrics []string `yaml:"metrics" json:"metrics"`
	// GroupBy holds dunder names or object-builder calls.
	GroupBy []string `yaml:"group_by" json:"group_by"`
	// Where holds filter templates with {{ ... }} item references.
	Where []string `yaml:"where" json:"where"`
	// OrderBy holds metric names or group-by items; a leading "-" sorts descending.
	OrderBy []string `yaml:"order_by" json:"order_by"`
}

// ResolvedItem is a group-by or filter input and the spec it resolved to.
type ResolvedItem struct {
	Input      string
	Spec       spec.LinkableInstanceSpec
	Descending bool
}

// ResolvedFilter is a where filter and the items it references.
type ResolvedFilter struct {
	Where string
	// Path is the node whose inputs the filter applies to.
	Path  ResolutionPath
	Items []ResolvedItem
}

// OrderByItem is a resolved order-by entry. Exactly one of Metric and Spec is set.
type OrderByItem struct {
	Input      string
	Metric     string
	Spec       spec.LinkableInstanceSpec
	Descending bool
}

// Resolution is the result of resolving one query.
type Resolution struct {
	RequestID string
	Query     Query
	DAG       *ResolutionDAG
	// Available is every item the query may be grouped by.
	Available linkable.Set
	GroupBy   []ResolvedItem
	Specs     spec.LinkableSpecSet
	Filters   []ResolvedFilter
	OrderBy   []OrderByItem
	Issues    IssueSet
}

// Validator checks a resolved query for metric-semantics problems.
type Validator interface {
	Validate(res *Resolution) []Issue
}

// Config holds resolver dependencies.
type Config struct {
	Index      *manifest.Index
	Sets       *semgraph.LinkableSets
	Validators []Validator
	Logger     *slog.Logger
}

// Resolver resolves queries against one manifest. It holds only read-only state
// and is safe for concurrent use.
type Resolver struct {
	idx        *manifest.Index
	sets       *semgraph.LinkableSets
	validators []Validator
	logger     *slog.Logger
	schemes    []naming.Scheme
}

// New creates a resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Index == nil {
		return nil, errors.New("resolver: index is required")
	}
	if cfg.Sets == nil {
		return nil, errors.New("resolver: linkable sets are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		idx:        cfg.Index,
		sets:       cfg.Sets,
		validators: cfg.Validators,
		logger:     logger,
		schemes:    naming.Schemes(cfg.Index),
	}, nil
}

// Options configures NewForManifest.
type Options struct {
	MaxEntityLinks int
	Validators     []Validator
	Logger         *slog.Logger
}

// NewForManifest indexes a manifest, builds its semantic graph and item sets,
// and returns a resolver over them.
func NewForManifest(m *core.Manifest, opts Options) (*Resolver, error) {
	idx, err := manifest.NewIndex(m)
	if err != nil {
		return nil, err
	}
	g, err := semgraph.Build(idx, semgraph.Config{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	sets, err := semgraph.NewLinkableSets(g, idx, semgraph.SetsConfig{MaxEntityLinks: opts.MaxEntityLinks, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	return New(Config{Index: idx, Sets: sets, Validators: opts.Validators, Logger: opts.Logger})
}

// Index returns the manifest index.
func (r *Resolver) Index() *manifest.Index {
	return r.idx
}

// Sets returns the per-measure item sets.
func (r *Resolver) Sets() *semgraph.LinkableSets {
	return r.sets
}

// Available returns every item a query over metrics may be grouped by.
func (r *Resolver) Available(metrics []string) (linkable.Set, error) {
	d, errs := buildDAG(r.idx, metrics, nil)
	if len(errs) > 0 {
		return linkable.Set{}, &QueryResolutionError{Errors: errs}
	}
	candidates, err := computeCandidates(d, r.sets)
	if err != nil {
		return linkable.Set{}, err
	}
	return candidates[d.Root().ID], nil
}

// Resolve resolves every group-by item, filter and order-by entry of q.
// All failures are collected into a *QueryResolutionError. Validator issues do
// not fail resolution; they are returned in Resolution.Issues.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	requestID := uuid.NewString()
	logger := r.logger.With(slog.String("request_id", requestID))
	logger.Debug("resolving query",
		slog.Any("metrics", q.Metrics),
		slog.Any("group_by", q.GroupBy))

	d, errs := buildDAG(r.idx, q.Metrics, q.Where)
	if len(errs) > 0 {
		return nil, &QueryResolutionError{RequestID: requestID, Errors: errs}
	}
	candidates, err := computeCandidates(d, r.sets)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		RequestID: requestID,
		Query:     q,
		DAG:       d,
		Available: candidates[d.Root().ID],
	}

	for _, input := range q.GroupBy {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := r.resolveInput(input, d.Root(), candidates)
		if err != nil {
			logger.Debug("group-by item failed", slog.String("input", input), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		logger.Debug("resolved group-by item", slog.String("input", input), slog.String("item", item.Spec.QualifiedName()))
		res.GroupBy = append(res.GroupBy, item)
	}
	specs := make([]spec.LinkableInstanceSpec, len(res.GroupBy))
	for i, item := range res.GroupBy {
		specs[i] = item.Spec
	}
	res.Specs = spec.NewLinkableSpecSet(specs...)

	for _, n := range d.Nodes() {
		for _, where := range n.Filters {
			filter, filterErrs := r.resolveFilter(where, n, candidates)
			errs = append(errs, filterErrs...)
			if len(filterErrs) == 0 {
				res.Filters = append(res.Filters, filter)
			}
		}
	}

	for _, input := range q.OrderBy {
		item, err := r.resolveOrderBy(input, res)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.OrderBy = append(res.OrderBy, item)
	}

	if len(errs) > 0 {
		logger.Debug("query resolution failed", slog.Int("errors", len(errs)))
		return nil, &QueryResolutionError{RequestID: requestID, Errors: errs}
	}

	for _, v := range r.validators {
		res.Issues = append(res.Issues, v.Validate(res)...)
	}
	logger.Debug("resolved query",
		slog.Int("group_by", len(res.GroupBy)),
		slog.Int("filters", len(res.Filters)),
		slog.Int("issues", len(res.Issues)))
	return res, nil
}

// scheme returns the naming scheme input is written in.
func (r *Resolver) scheme(input string) naming.Scheme {
	for _, s := range r.schemes {
		if s.Accepts(input) {
			return s
		}
	}
	return r.schemes[len(r.schemes)-1]
}

// resolveInput resolves one group-by string at node n.
func (r *Resolver) resolveInput(input string, n *Node, candidates candidateSets) (ResolvedItem, error) {
	d, err := naming.Parse(input, r.idx)
	if err != nil {
		return ResolvedItem{}, err
	}
	s, err := r.match(input, d, n, candidates)
	if err != nil {
		return ResolvedItem{}, err
	}
	return ResolvedItem{Input: input, Spec: s, Descending: d.Descending}, nil
}

// match selects the single item d refers to in the candidate set of n.
func (r *Resolver) match(input string, d naming.Description, n *Node, candidates candidateSets) (spec.LinkableInstanceSpec, error) {
	patterns := []linkable.Pattern{d.Pattern()}
	if d.GrainName == "" && d.DatePart == nil {
		patterns = append(patterns, pattern.MinimumTimeGrain{})
	}

	matched := candidates[n.ID].FilterBySpecPatterns(patterns...)
	switch matched.Len() {
	case 1:
		return matched.Items()[0].Spec, nil
	case 0:
		return nil, &NoMatchFoundError{
			Input:       input,
			Path:        locate(n, patterns, candidates),
			Suggestions: r.suggest(input, candidates[n.ID]),
		}
	default:
		return nil, &AmbiguousResolutionError{Input: input, Matches: matched.QualifiedNames(), Path: n.Path}
	}
}

// locate walks down from n to the deepest node whose candidate set lacks the item.
func locate(n *Node, patterns []linkable.Pattern, candidates candidateSets) ResolutionPath {
	for _, in := range n.inputs {
		if candidates[in.ID].FilterBySpecPatterns(patterns...).IsEmpty() {
			return locate(in, patterns, candidates)
		}
	}
	return n.Path
}

// suggest renders the candidates in the scheme of input and picks the closest.
func (r *Resolver) suggest(input string, set linkable.Set) []string {
	s := r.scheme(input)
	names := make([]string, 0, set.Len())
	for _, c := range set.Specs() {
		if rendered, ok := s.Render(c); ok {
			names = append(names, rendered)
		}
	}
	return suggestSimilar(input, names)
}

func (r *Resolver) resolveFilter(where string, n *Node, candidates candidateSets) (ResolvedFilter, []error) {
	filter := ResolvedFilter{Where: where, Path: n.Path}
	refs, err := naming.ParseWhereFilter(where, r.idx)
	if err != nil {
		return filter, []error{fmt.Errorf("%s: %w", n.Path, err)}
	}
	var errs []error
	for _, ref := range refs {
		s, err := r.match(ref.Expr, ref.Description, n, candidates)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		filter.Items = append(filter.Items, ResolvedItem{Input: ref.Expr, Spec: s})
	}
	return filter, errs
}

// resolveOrderBy matches an order-by entry against the query metrics and the
// resolved group-by items.
func (r *Resolver) resolveOrderBy(input string, res *Resolution) (OrderByItem, error) {
	raw := strings.TrimSpace(input)
	descending := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	for _, m := range res.Query.Metrics {
		if strings.EqualFold(raw, m) {
			return OrderByItem{Input: input, Metric: m, Descending: descending}, nil
		}
	}

	d, err := naming.Parse(raw, r.idx)
	if err != nil {
		return OrderByItem{}, err
	}
	groupBy := res.Specs.Specs()
	matched := d.Pattern().Match(groupBy)
	switch len(matched) {
	case 1:
		return OrderByItem{Input: input, Spec: matched[0], Descending: descending || d.Descending}, nil
	case 0:
		candidates := append([]string(nil), res.Query.Metrics...)
		for _, g := range groupBy {
			candidates = append(candidates, g.QualifiedName())
		}
		return OrderByItem{}, &NoMatchFoundError{
			Input:       input,
			Path:        res.DAG.Root().Path,
			Suggestions: suggestSimilar(raw, candidates),
		}
	default:
		names := make([]string, len(matched))
		for i, m := range matched {
			names[i] = m.QualifiedName()
		}
		return OrderByItem{}, &AmbiguousResolutionError{Input: input, Matches: names, Path: res.DAG.Root().Path}
	}
}
