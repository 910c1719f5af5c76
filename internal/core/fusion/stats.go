package fusion

import "github.com/graphloom/loom/internal/core/model"

// Stats summarizes one fusion pass: how many clusters fused, confidence
// distribution, and how many sources fed each fused item.
type Stats struct {
	TotalFusions       int            `json:"total_fusions"`
	SingletonCount     int            `json:"singleton_count"`
	MultiSourceCount   int            `json:"multi_source_count"`
	AverageConfidence  float64        `json:"average_confidence"`
	HighConfidence     int            `json:"high_confidence"`   // > 0.8
	MediumConfidence   int            `json:"medium_confidence"` // (0.5, 0.8]
	LowConfidence      int            `json:"low_confidence"`    // <= 0.5
	SourceDistribution map[int]int    `json:"source_distribution"`
	TypeDistribution   map[string]int `json:"type_distribution,omitempty"`
}

func newStats() Stats {
	return Stats{
		SourceDistribution: make(map[int]int),
		TypeDistribution:   make(map[string]int),
	}
}

func (s *Stats) record(sourceCount int, confidence float64, itemType string) {
	s.TotalFusions++
	if sourceCount == 1 {
		s.SingletonCount++
	} else {
		s.MultiSourceCount++
	}
	s.SourceDistribution[sourceCount]++
	if itemType != "" {
		s.TypeDistribution[itemType]++
	}
	switch {
	case confidence > 0.8:
		s.HighConfidence++
	case confidence > 0.5:
		s.MediumConfidence++
	default:
		s.LowConfidence++
	}
	s.AverageConfidence += confidence
}

func (s *Stats) finish() {
	if s.TotalFusions > 0 {
		s.AverageConfidence /= float64(s.TotalFusions)
	}
}

// Statistics summarizes a batch of entity fusion results.
func (e *EntityEngine) Statistics(results []model.EntityFusionResult) Stats {
	stats := newStats()
	for _, r := range results {
		stats.record(len(r.Sources), r.Confidence, r.Fused.Type)
	}
	stats.finish()
	return stats
}

// Statistics summarizes a batch of relation fusion results.
func (e *RelationEngine) Statistics(results []model.RelationFusionResult) Stats {
	stats := newStats()
	for _, r := range results {
		stats.record(len(r.Sources), r.Confidence, r.Fused.Type)
	}
	stats.finish()
	return stats
}
