package storage

import "time"

// RejectionRecord is an audit row for a solution submission that failed
// decoding or validation
type RejectionRecord struct {
	RejectionID  int64     `db:"rejection_id"`
	InstanceID   int64     `db:"instance_id"`
	NumRounds    int       `db:"num_rounds"`
	ErrorKind    string    `db:"error_kind"`
	Message      string    `db:"message"`
	DetailsJSON  string    `db:"details_json"`
	SubmitterRef string    `db:"submitter_ref"`
	CreatedAt    time.Time `db:"created_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS instances (
	instance_id INTEGER PRIMARY KEY AUTOINCREMENT,
	num_groups INTEGER NOT NULL CHECK(num_groups >= 2),
	group_size INTEGER NOT NULL CHECK(group_size >= 2),
	CHECK(num_groups >= group_size),
	UNIQUE(num_groups, group_size)
);

CREATE TABLE IF NOT EXISTS constructions (
	construction_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	PRIMARY KEY (construction_id, version)
);

CREATE TABLE IF NOT EXISTS submissions (
	submission_id TEXT PRIMARY KEY,
	citation TEXT NOT NULL DEFAULT '',
	submitter_name TEXT NOT NULL DEFAULT '',
	submitter_email TEXT NOT NULL DEFAULT '',
	construction_id TEXT,
	construction_version INTEGER,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (construction_id, construction_version)
		REFERENCES constructions(construction_id, version) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_submissions_construction ON submissions(construction_id, construction_version);

CREATE TABLE IF NOT EXISTS bounds (
	bound_id INTEGER PRIMARY KEY AUTOINCREMENT,
	instance_id INTEGER NOT NULL,
	submission_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('upper', 'lower')),
	num_rounds INTEGER NOT NULL CHECK(num_rounds > 0),
	FOREIGN KEY (instance_id) REFERENCES instances(instance_id),
	FOREIGN KEY (submission_id) REFERENCES submissions(submission_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_bounds_instance_id ON bounds(instance_id);
CREATE INDEX IF NOT EXISTS idx_bounds_submission_id ON bounds(submission_id);

CREATE TABLE IF NOT EXISTS solutions (
	bound_id INTEGER PRIMARY KEY,
	solution_text TEXT NOT NULL,
	normalised_text TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (bound_id) REFERENCES bounds(bound_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rejections (
	rejection_id INTEGER PRIMARY KEY AUTOINCREMENT,
	instance_id INTEGER NOT NULL,
	num_rounds INTEGER NOT NULL,
	error_kind TEXT NOT NULL,
	message TEXT NOT NULL,
	details_json TEXT NOT NULL DEFAULT '{}',
	submitter_ref TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (instance_id) REFERENCES instances(instance_id)
);

CREATE INDEX IF NOT EXISTS idx_rejections_instance_id ON rejections(instance_id);
`
