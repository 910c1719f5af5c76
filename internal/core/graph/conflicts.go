package graph

import "github.com/graphloom/loom/internal/core/conflict"

// DetectAndResolveConflicts runs conflict detection over the store's
// live entities and relations and resolves everything found with the
// resolver's configured strategies. Store ids are unique, so entity
// conflicts only arise from relation groups; the entity pass still runs
// for callers that loaded overlapping snapshots. The store itself is
// not mutated, resolved values are returned for the caller to apply.
func (s *Store) DetectAndResolveConflicts(r *conflict.Resolver) []conflict.Conflict {
	detected := r.DetectEntityConflicts(s.Entities())
	detected = append(detected, r.DetectRelationConflicts(s.Relations())...)
	return r.BatchResolve(detected)
}
