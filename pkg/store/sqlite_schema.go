package store

// SchemaVersion is the current schema version. Bump when the schema
// changes and add a migration in initialize().
const SchemaVersion = 1

// Schema is the SQLite schema for the result store. The unique index
// on (session_id, rule_id) backs the idempotent upsert.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_info (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rule_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	contract_id TEXT NOT NULL DEFAULT '',
	rule_id INTEGER NOT NULL,
	rule_index INTEGER NOT NULL DEFAULT 0,
	rule_name TEXT NOT NULL DEFAULT '',
	risk_level TEXT NOT NULL DEFAULT '',
	risk_ordinal INTEGER NOT NULL DEFAULT -1,
	risk_attribution_id INTEGER NOT NULL DEFAULT 0,
	risk_attribution_name TEXT NOT NULL DEFAULT '',
	rule_group_id INTEGER NOT NULL DEFAULT 0,
	rule_group_name TEXT NOT NULL DEFAULT '',
	review_result TEXT NOT NULL,
	rule_confirm_result TEXT NOT NULL DEFAULT '',
	verbatim_text_list TEXT NOT NULL DEFAULT '[]',
	matched_content TEXT NOT NULL DEFAULT '[]',
	suggestions TEXT NOT NULL DEFAULT '[]',
	issues TEXT NOT NULL DEFAULT '[]',
	revise_opinion TEXT NOT NULL DEFAULT '',
	analysis TEXT NOT NULL DEFAULT '',
	confidence_score REAL NOT NULL DEFAULT 0,
	user_feedback TEXT NOT NULL DEFAULT 'none',
	is_deleted INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,

	UNIQUE (session_id, rule_id)
);

CREATE INDEX IF NOT EXISTS idx_rule_results_session
	ON rule_results (session_id, is_deleted);

CREATE INDEX IF NOT EXISTS idx_rule_results_created_at
	ON rule_results (created_at);
`
