package db

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    path        TEXT PRIMARY KEY,
    parent      TEXT NOT NULL,
    doc_id      TEXT NOT NULL,
    data        TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent, created_at);
`
