package mysql

// All collections share one table; each row is a JSON document.
// idempotency_key is NULL for documents without the field, so only keyed
// bookings collide.
const createDocumentsSQL = `
CREATE TABLE IF NOT EXISTS documents (
  id              CHAR(36)     NOT NULL,
  collection      VARCHAR(64)  NOT NULL,
  body            JSON         NOT NULL,
  created_at      TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
  idempotency_key VARCHAR(64)
    GENERATED ALWAYS AS (JSON_UNQUOTE(JSON_EXTRACT(body, '$.idempotencyKey'))) STORED,
  PRIMARY KEY (id),
  UNIQUE KEY uq_documents_idempotency (collection, idempotency_key),
  KEY ix_documents_collection (collection, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const insertDocumentSQL = `
INSERT INTO documents (id, collection, body)
VALUES (?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Field equality is compared as JSON so strings, numbers and booleans all match.
const queryByFieldSQL = `
SELECT id, body
FROM documents
WHERE collection = ?
  AND JSON_EXTRACT(body, ?) = CAST(? AS JSON)
`

const queryByIDSQL = `
SELECT id, body
FROM documents
WHERE collection = ?
  AND id = ?
`

// orderBySQL is appended with the path bound as a parameter; created_at breaks ties.
const orderBySQL = `
ORDER BY JSON_EXTRACT(body, ?) %s, created_at %s
`

const orderByInsertSQL = `
ORDER BY created_at ASC
`
