package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hook_events (
    id                   TEXT PRIMARY KEY,
    event                TEXT NOT NULL,
    tool                 TEXT,
    context              TEXT,
    sent_at              TEXT,
    received_at          TEXT NOT NULL,
    excerpt              TEXT
);

CREATE TABLE IF NOT EXISTS stats_snapshots (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    taken_at             TEXT NOT NULL,
    total_tokens         INTEGER NOT NULL,
    total_cost           REAL NOT NULL,
    total_messages       INTEGER NOT NULL,
    today_tokens         INTEGER NOT NULL,
    today_cost           REAL NOT NULL,
    session_tokens       INTEGER NOT NULL,
    session_cost         REAL NOT NULL,
    tokens_per_minute    REAL NOT NULL,
    cost_per_hour        REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hook_events_received ON hook_events(received_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON stats_snapshots(taken_at);
`
