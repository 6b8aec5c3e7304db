package postgres

// schemaRowID is the primary key of the single form_schema row.
const schemaRowID int16 = 1

const resetSQL = `TRUNCATE form_records, form_schema RESTART IDENTITY`

const selectSchemaSQL = `SELECT fields FROM form_schema WHERE id = $1`

const upsertSchemaSQL = `
INSERT INTO form_schema (id, fields, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE
SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at`

const selectRecordsSQL = `SELECT data FROM form_records ORDER BY seq`

const insertRecordSQL = `INSERT INTO form_records (id, data) VALUES ($1, $2)`
