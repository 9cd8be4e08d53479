package sqlsink

// Schema creates the tables the sink writes to. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS objectives (
	id             BIGSERIAL PRIMARY KEY,
	objective_name TEXT NOT NULL UNIQUE,
	display_name   TEXT NOT NULL,
	criteria_name  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id          BIGSERIAL PRIMARY KEY,
	player_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS stats (
	score          BIGINT NOT NULL,
	player_name    TEXT NOT NULL REFERENCES players (player_name),
	objective_name TEXT NOT NULL REFERENCES objectives (objective_name),
	time           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const (
	insertPlayer = `INSERT INTO players (player_name) VALUES ($1) ON CONFLICT (player_name) DO NOTHING`

	insertObjective = `INSERT INTO objectives (objective_name, display_name, criteria_name) VALUES ($1, $2, $3) ON CONFLICT (objective_name) DO NOTHING`

	insertStat = `INSERT INTO stats (score, player_name, objective_name) VALUES ($1, $2, $3)`

	insertStatAt = `INSERT INTO stats (score, player_name, objective_name, time) VALUES ($1, $2, $3, $4)`
)
