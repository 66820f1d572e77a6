package driver

var IndexQueries = []string{
	"CREATE INDEX ON :MindNode(id);",
	"CREATE INDEX ON :MindNode(map);",
}

const (
	SaveMindNodeQuery = `
		MERGE (n:MindNode {id: $id, map: $map})
		SET n.label = $label,
			n.type = $type,
			n.x = $x,
			n.y = $y,
			n.content = $content,
			n.paths = $paths,
			n.timestamp = $timestamp,
			n.confidence = $confidence,
			n.tags = $tags
		RETURN n.id AS id
	`

	SaveConnectionQuery = `
		MATCH (a:MindNode {id: $from, map: $map})
		MATCH (b:MindNode {id: $to, map: $map})
		MERGE (a)-[r:CONNECTS {id: $id}]->(b)
		SET r.type = $type,
			r.strength = $strength,
			r.map = $map
		RETURN r.id AS id
	`

	DeleteMapQuery = `
		MATCH (n:MindNode {map: $map})
		DETACH DELETE n
	`

	GetMapNodesQuery = `
		MATCH (n:MindNode {map: $map})
		RETURN n.id AS id, n.label AS label, n.type AS type, n.x AS x, n.y AS y,
			n.content AS content, n.paths AS paths, n.timestamp AS timestamp,
			n.confidence AS confidence, n.tags AS tags
		ORDER BY n.timestamp, n.id
	`

	GetMapConnectionsQuery = `
		MATCH (a:MindNode {map: $map})-[r:CONNECTS]->(b:MindNode {map: $map})
		RETURN r.id AS id, a.id AS from, b.id AS to, r.type AS type, r.strength AS strength
		ORDER BY r.id
	`
)
