// Package semgraph builds the semantic graph of a manifest and finds the
// group-by items reachable from each measure.
//
// Nodes are interned in an arena owned by the graph, so structurally equal
// nodes share one NodeID. The graph is built once and is read-only afterwards.
package semgraph

import (
	"fmt"
)

// NodeKind is the closed set of semantic graph node variants.
type NodeKind int

// Node kinds.
const (
	// NodeMeasure is the start node of a measure's item search.
	NodeMeasure NodeKind = iota
	// NodeModel is a semantic model read without any entity link.
	NodeModel
	// NodeEntity is an entity of a model in a given role.
	NodeEntity
	// NodeDimension is a categorical dimension attribute.
	NodeDimension
	// NodeTimeDimension is a time dimension attribute of a model.
	NodeTimeDimension
	// NodeKeyAttribute is an entity used as a group-by item.
	NodeKeyAttribute
	// NodeTimeEntity is the synthetic node behind metric_time.
	NodeTimeEntity
	// NodeTimeSpine seeds metric_time for queries without metrics.
	NodeTimeSpine
	// NodeTimeGrain is a metric_time grain attribute.
	NodeTimeGrain
	// NodeDatePart is a metric_time date part attribute.
	NodeDatePart
	// NodeGroupByMetric is a metric grouped by one entity.
	NodeGroupByMetric
	// NodeMetric is the start node of a cumulative metric's item search.
	NodeMetric
)

func (k NodeKind) String() string {
	switch k {
	case NodeMeasure:
		return "measure"
	case NodeModel:
		return "model"
	case NodeEntity:
		return "entity"
	case NodeDimension:
		return "dimension"
	case NodeTimeDimension:
		return "time_dimension"
	case NodeKeyAttribute:
		return "key_attribute"
	case NodeTimeEntity:
		return "time_entity"
	case NodeTimeSpine:
		return "time_spine"
	case NodeTimeGrain:
		return "time_grain"
	case NodeDatePart:
		return "date_part"
	case NodeGroupByMetric:
		return "group_by_metric"
	case NodeMetric:
		return "metric"
	default:
		return "unknown"
	}
}

// IsAttribute reports whether nodes of this kind yield group-by items.
func (k NodeKind) IsAttribute() bool {
	switch k {
	case NodeDimension, NodeTimeDimension, NodeKeyAttribute, NodeTimeGrain, NodeDatePart, NodeGroupByMetric:
		return true
	default:
		return false
	}
}

// EntityRole distinguishes how an entity node was reached.
type EntityRole int

// Entity roles.
const (
	// RoleNone is used by every non-entity node.
	RoleNone EntityRole = iota
	// RoleLocal is an entity of the model being read.
	RoleLocal
	// RoleJoined is the right side of a join; its model's attributes are reachable.
	RoleJoined
	// RoleLink is another entity of a joined model, used only to join onwards.
	RoleLink
)

func (r EntityRole) String() string {
	switch r {
	case RoleLocal:
		return "local"
	case RoleJoined:
		return "joined"
	case RoleLink:
		return "link"
	default:
		return ""
	}
}

// NodeKey is the structural identity of a node.
type NodeKey struct {
	Kind NodeKind
	// Model is the owning semantic model, if any.
	Model string
	// Name is the measure, entity, dimension, grain, date part or metric name.
	Name string
	Role EntityRole
	// Entity is the grouping entity of a group-by metric node.
	Entity string
}

func (k NodeKey) String() string {
	switch k.Kind {
	case NodeEntity:
		return fmt.Sprintf("entity(%s.%s, %s)", k.Model, k.Name, k.Role)
	case NodeGroupByMetric:
		return fmt.Sprintf("group_by_metric(%s by %s)", k.Name, k.Entity)
	case NodeTimeEntity, NodeTimeSpine:
		return k.Kind.String()
	}
	if k.Model != "" {
		return fmt.Sprintf("%s(%s.%s)", k.Kind, k.Model, k.Name)
	}
	return fmt.Sprintf("%s(%s)", k.Kind, k.Name)
}

// NodeID is the arena index of an interned node.
type NodeID int32

// arena interns node keys. Each graph owns one.
type arena struct {
	ids  map[NodeKey]NodeID
	keys []NodeKey
}

func newArena() *arena {
	return &arena{ids: make(map[NodeKey]NodeID)}
}

func (a *arena) intern(k NodeKey) NodeID {
	if id, ok := a.ids[k]; ok {
		return id
	}
	id := NodeID(len(a.keys))
	a.ids[k] = id
	a.keys = append(a.keys, k)
	return id
}

func (a *arena) lookup(k NodeKey) (NodeID, bool) {
	id, ok := a.ids[k]
	return id, ok
}

// Node key constructors.

func measureKey(measure string) NodeKey { return NodeKey{Kind: NodeMeasure, Name: measure} }
func modelKey(model string) NodeKey     { return NodeKey{Kind: NodeModel, Name: model} }
func metricKey(metric string) NodeKey   { return NodeKey{Kind: NodeMetric, Name: metric} }
func timeEntityKey() NodeKey            { return NodeKey{Kind: NodeTimeEntity} }
func timeSpineKey() NodeKey             { return NodeKey{Kind: NodeTimeSpine} }

func entityKey(model, entity string, role EntityRole) NodeKey {
	return NodeKey{Kind: NodeEntity, Model: model, Name: entity, Role: role}
}

func groupByMetricKey(metric, entity string) NodeKey {
	return NodeKey{Kind: NodeGroupByMetric, Name: metric, Entity: entity}
}
