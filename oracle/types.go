package oracle

import "github.com/wing9900/war-tycoon-oracle-bot/index"

// ContextRecord is a retrieved record together with its retrieval
// provenance. Direct marks records obtained by fetch-by-id rather than
// similarity search; their Score is a synthetic priority, not a metric
// similarity.
type ContextRecord struct {
	index.Record
	Direct bool
}

// Intent captures what the keyword heuristics detected in a question.
type Intent struct {
	ListAll     bool
	WantsSpeed  bool
	WantsHealth bool
}
