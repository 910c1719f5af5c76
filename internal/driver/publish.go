package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/graphloom/loom/internal/core/graph"
)

// PublishReport counts what a Publish run wrote to the database.
type PublishReport struct {
	EntitiesWritten  int `json:"entities_written"`
	RelationsWritten int `json:"relations_written"`
	Failed           int `json:"failed"`
}

// Publish mirrors the store into the graph database. Entities first so
// every relation's endpoints exist when its MERGE runs. Individual
// write failures are logged and counted, the publish continues.
func Publish(ctx context.Context, d GraphDriver, s *graph.Store) (PublishReport, error) {
	report := PublishReport{}

	for _, e := range s.Entities() {
		props, err := json.Marshal(e.Properties)
		if err != nil {
			return report, fmt.Errorf("encode entity %s properties: %w", e.ID, err)
		}
		params := map[string]interface{}{
			"id":         e.ID,
			"name":       e.Name,
			"type":       e.Type,
			"aliases":    e.Aliases,
			"properties": string(props),
		}
		if _, err := d.ExecuteQuery(ctx, SaveEntityQuery, params); err != nil {
			log.Printf("publish: entity %s: %v", e.ID, err)
			report.Failed++
			continue
		}
		report.EntitiesWritten++
	}

	for _, r := range s.Relations() {
		props, err := json.Marshal(r.Properties)
		if err != nil {
			return report, fmt.Errorf("encode relation %s properties: %w", r.ID, err)
		}
		params := map[string]interface{}{
			"id":         r.ID,
			"type":       r.Type,
			"head_id":    r.HeadEntityID,
			"tail_id":    r.TailEntityID,
			"confidence": r.Confidence,
			"properties": string(props),
		}
		if _, err := d.ExecuteQuery(ctx, SaveRelationQuery, params); err != nil {
			log.Printf("publish: relation %s: %v", r.ID, err)
			report.Failed++
			continue
		}
		report.RelationsWritten++
	}

	return report, nil
}
