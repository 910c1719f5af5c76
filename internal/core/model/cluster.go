package model

// Cluster method tags, recorded on clusters and in fusion evidence.
const (
	MethodSimilarity = "similarity_based"
	MethodSingleton  = "singleton"
)

// EntityCluster is a transient group of candidate entities judged similar
// enough to merge. Built and consumed within one fusion pass.
type EntityCluster struct {
	ClusterID      string
	Entities       []Entity
	Representative Entity
	Confidence     float64
	Method         string
}

// RelationCluster is the relation counterpart of EntityCluster.
type RelationCluster struct {
	ClusterID      string
	Relations      []Relation
	Representative Relation
	Confidence     float64
	Method         string
}

// EntityFusionResult is produced once per cluster and immutable afterward.
type EntityFusionResult struct {
	Fused      Entity
	Sources    []Entity
	Confidence float64
	Evidence   map[string]any
}

// RelationFusionResult is produced once per relation cluster.
type RelationFusionResult struct {
	Fused      Relation
	Sources    []Relation
	Confidence float64
	Evidence   map[string]any
}
