package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id                   INTEGER PRIMARY KEY,
    name                 TEXT NOT NULL,
    type                 TEXT NOT NULL,
    currency             TEXT NOT NULL DEFAULT 'USD',
    is_active            INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS transactions (
    idempotency_key      TEXT NOT NULL,
    account_id           INTEGER NOT NULL REFERENCES accounts(id),
    posted_at            TEXT NOT NULL,
    amount_cents         INTEGER NOT NULL,
    payee                TEXT,
    memo                 TEXT,
    source               TEXT NOT NULL DEFAULT 'manual',
    category_id          INTEGER,
    category             TEXT,
    category_group       TEXT,
    type                 TEXT,
    is_commitment        INTEGER NOT NULL DEFAULT 0,
    is_key_event         INTEGER NOT NULL DEFAULT 0,
    is_excluded          INTEGER NOT NULL DEFAULT 0,
    is_cleared           INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_transactions_idem_key
    ON transactions(idempotency_key);
CREATE INDEX IF NOT EXISTS idx_transactions_posted
    ON transactions(posted_at);

CREATE TABLE IF NOT EXISTS scheduled_inflows (
    id                   INTEGER PRIMARY KEY,
    name                 TEXT NOT NULL,
    amount_cents         INTEGER NOT NULL,
    due_rule             TEXT NOT NULL,
    next_due_date        TEXT,
    account_id           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS commitments (
    id                   INTEGER PRIMARY KEY,
    name                 TEXT NOT NULL,
    amount_cents         INTEGER NOT NULL,
    due_rule             TEXT NOT NULL,
    next_due_date        TEXT,
    priority             INTEGER,
    flexible_window_days INTEGER,
    category_id          INTEGER,
    account_id           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS key_spend_events (
    id                   INTEGER PRIMARY KEY,
    name                 TEXT NOT NULL,
    event_date           TEXT NOT NULL,
    repeat_rule          TEXT,
    planned_amount_cents INTEGER,
    shift_policy         TEXT,
    lead_time_days       INTEGER,
    category_id          INTEGER,
    account_id           INTEGER
);

CREATE TABLE IF NOT EXISTS forecast_snapshots (
    id                   TEXT PRIMARY KEY,
    generated_at         TEXT NOT NULL,
    horizon_start        TEXT NOT NULL,
    horizon_end          TEXT NOT NULL,
    payload_json         TEXT NOT NULL,
    digest_json          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_generated
    ON forecast_snapshots(generated_at);
`
