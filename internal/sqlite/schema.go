// Schema DDL for the walkthrough store.
//
// All statements are idempotent (IF NOT EXISTS) so schema initialization
// is safe to run on every open. Foreign-key cascades from user_progress
// and analytics to walkthroughs are enforced by the engine; enforcement
// is enabled per connection through the DSN pragma in store.go.
package sqlite

const (
	createWalkthroughs = `CREATE TABLE IF NOT EXISTS walkthroughs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    steps_json TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createUserProgress = `CREATE TABLE IF NOT EXISTS user_progress (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    walkthrough_id TEXT NOT NULL,
    current_step INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (walkthrough_id) REFERENCES walkthroughs(id) ON DELETE CASCADE
);`

	createAnalytics = `CREATE TABLE IF NOT EXISTS analytics (
    id TEXT PRIMARY KEY,
    walkthrough_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    step_id TEXT NOT NULL,
    action TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    metadata_json TEXT,
    FOREIGN KEY (walkthrough_id) REFERENCES walkthroughs(id) ON DELETE CASCADE
);`
)

// Index DDL. The unique index on (user_id, walkthrough_id) is what makes
// the one-progress-row-per-pair invariant hold under concurrent creation;
// ProgressRepo relies on it for its upsert write.
const (
	idxProgressUserWalkthrough = `CREATE UNIQUE INDEX IF NOT EXISTS idx_user_progress_user_walkthrough
    ON user_progress(user_id, walkthrough_id);`

	idxAnalyticsWalkthroughUser = `CREATE INDEX IF NOT EXISTS idx_analytics_walkthrough_user
    ON analytics(walkthrough_id, user_id);`
)

// schemaStatements lists every DDL statement in creation order.
var schemaStatements = []string{
	createWalkthroughs,
	createUserProgress,
	createAnalytics,
	idxProgressUserWalkthrough,
	idxAnalyticsWalkthroughUser,
}

// dropStatements lists the tables in dependency order, children first,
// for Reset.
var dropStatements = []string{
	`DROP TABLE IF EXISTS analytics;`,
	`DROP TABLE IF EXISTS user_progress;`,
	`DROP TABLE IF EXISTS walkthroughs;`,
}
