package graph

import (
	"log"

	"github.com/graphloom/loom/internal/core/fusion"
	"github.com/graphloom/loom/internal/core/model"
)

// MergeReport summarizes a Merge or Ingest run.
type MergeReport struct {
	EntitiesIn       int `json:"entities_in"`
	EntitiesOut      int `json:"entities_out"`
	RelationsIn      int `json:"relations_in"`
	RelationsOut     int `json:"relations_out"`
	RelationsDropped int `json:"relations_dropped"`
}

// Merge folds the other store into the receiver. Both entity sets are
// concatenated and re-fused, every relation endpoint is rewritten
// through the resulting id remap, relations whose remapped endpoint no
// longer exists are dropped, the combined relations are re-fused, and
// the receiver is cleared and re-ingested. The whole combined graph is
// reprocessed, nothing is incremental. Nil engines get defaults.
func (s *Store) Merge(other *Store, entityEngine *fusion.EntityEngine, relationEngine *fusion.RelationEngine) MergeReport {
	entities := append(s.Entities(), other.Entities()...)
	relations := append(s.Relations(), other.Relations()...)
	report := s.ingest(entities, relations, entityEngine, relationEngine, true)
	return report
}

// Ingest fuses candidate entities and relations and adds the fused
// results to the store without clearing it. Relation endpoints are
// rewritten through the fusion id remap; a relation whose endpoint
// survives neither the remap nor the store is dropped and counted.
func (s *Store) Ingest(entities []model.Entity, relations []model.Relation, entityEngine *fusion.EntityEngine, relationEngine *fusion.RelationEngine) MergeReport {
	return s.ingest(entities, relations, entityEngine, relationEngine, false)
}

func (s *Store) ingest(entities []model.Entity, relations []model.Relation, entityEngine *fusion.EntityEngine, relationEngine *fusion.RelationEngine, clear bool) MergeReport {
	if entityEngine == nil {
		entityEngine = fusion.NewEntityEngine()
	}
	if relationEngine == nil {
		relationEngine = fusion.NewRelationEngine()
	}

	report := MergeReport{EntitiesIn: len(entities), RelationsIn: len(relations)}

	entityResults := entityEngine.BatchFuse(entities)
	remap := make(map[string]string)
	fusedEntities := make(map[string]struct{})
	for _, result := range entityResults {
		fusedEntities[result.Fused.ID] = struct{}{}
		for _, source := range result.Sources {
			remap[source.ID] = result.Fused.ID
		}
	}

	var remapped []model.Relation
	for _, r := range relations {
		if headID, ok := remap[r.HeadEntityID]; ok {
			r.HeadEntityID = headID
		}
		if tailID, ok := remap[r.TailEntityID]; ok {
			r.TailEntityID = tailID
		}
		if !s.endpointSurvives(r.HeadEntityID, fusedEntities, clear) ||
			!s.endpointSurvives(r.TailEntityID, fusedEntities, clear) {
			report.RelationsDropped++
			continue
		}
		remapped = append(remapped, r)
	}

	relationResults := relationEngine.BatchFuse(remapped)

	if clear {
		s.Clear()
	}
	for _, result := range entityResults {
		s.AddEntity(result.Fused)
	}
	for _, result := range relationResults {
		if err := s.AddRelation(result.Fused); err != nil {
			log.Printf("ingest: dropping relation %s: %v", result.Fused.ID, err)
			report.RelationsDropped += len(result.Sources)
			continue
		}
		report.RelationsOut++
	}
	report.EntitiesOut = len(entityResults)
	return report
}

// endpointSurvives reports whether a remapped endpoint will exist after
// ingestion. When the store is about to be cleared only the fused set
// counts; otherwise existing entities count too.
func (s *Store) endpointSurvives(id string, fused map[string]struct{}, clear bool) bool {
	if _, ok := fused[id]; ok {
		return true
	}
	if clear {
		return false
	}
	_, ok := s.entities[id]
	return ok
}
