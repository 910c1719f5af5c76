package driver

const (
	SaveEntityQuery = `
		MERGE (n:Entity {id: $id})
		SET n.name = $name,
			n.type = $type,
			n.aliases = $aliases,
			n.properties = $properties
		RETURN n.id AS id
	`

	SaveRelationQuery = `
		MATCH (head:Entity {id: $head_id})
		MATCH (tail:Entity {id: $tail_id})
		MERGE (head)-[r:RELATES_TO {id: $id}]->(tail)
		SET r.type = $type,
			r.confidence = $confidence,
			r.properties = $properties
		RETURN r.id AS id
	`

	DeleteEntityQuery = `
		MATCH (n:Entity {id: $id})
		DETACH DELETE n
	`

	ClearGraphQuery = `
		MATCH (n:Entity)
		DETACH DELETE n
	`

	CountEntitiesQuery = `
		MATCH (n:Entity)
		RETURN count(n) AS count
	`
)
