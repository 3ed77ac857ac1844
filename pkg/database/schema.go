package database

// TargetSchemaVersion is recorded in schema_versions once every table
// signature matches.
const TargetSchemaVersion = 1

// tableSchema is the expected shape of one table: idempotent DDL plus its
// index list. The pair is hashed into the table signature, so any change
// here changes the signature and forces the DDL to be re-issued.
type tableSchema struct {
	Name    string
	DDL     string
	Indexes []string
}

// expectedSchemas lists every domain table in creation order.
//
// The (session_id, artifact_id) uniqueness of memory blocks is a partial
// unique index rather than application logic, so concurrent ingestion
// attempts cannot both succeed.
var expectedSchemas = []tableSchema{
	{
		Name: "memory_blocks",
		DDL: `CREATE TABLE IF NOT EXISTS memory_blocks (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			artifact_id TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			ld_context TEXT,
			derived_from TEXT,
			intent_profile_id TEXT,
			style_dna_id TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			notes TEXT NOT NULL DEFAULT '',
			metadata TEXT
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_memory_blocks_session ON memory_blocks(session_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_memory_blocks_session_artifact
				ON memory_blocks(session_id, artifact_id) WHERE artifact_id IS NOT NULL`,
		},
	},
	{
		Name: "style_dna",
		DDL: `CREATE TABLE IF NOT EXISTS style_dna (
			id TEXT PRIMARY KEY,
			artifact_id TEXT NOT NULL,
			stroke_dna BLOB,
			image_dna BLOB,
			temporal_dna BLOB,
			created_at TIMESTAMP NOT NULL,
			l2_norm REAL,
			checksum TEXT
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_style_dna_artifact ON style_dna(artifact_id)`,
		},
	},
	{
		Name: "intent_profiles",
		DDL: `CREATE TABLE IF NOT EXISTS intent_profiles (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			artifact_id TEXT NOT NULL,
			emotional_register TEXT NOT NULL DEFAULT '{}',
			target_audience TEXT,
			constraints TEXT NOT NULL DEFAULT '[]',
			narrative_prompt TEXT,
			style_keywords TEXT NOT NULL DEFAULT '[]',
			source TEXT NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_intent_profiles_session ON intent_profiles(session_id)`,
		},
	},
	{
		Name: "telemetry_chunks",
		DDL: `CREATE TABLE IF NOT EXISTS telemetry_chunks (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			artifact_id TEXT NOT NULL,
			parquet_path TEXT NOT NULL,
			chunk_row_count INTEGER NOT NULL,
			total_session_rows INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			schema_version INTEGER NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_telemetry_chunks_session
				ON telemetry_chunks(session_id, created_at)`,
		},
	},
	{
		Name: "contracts",
		DDL: `CREATE TABLE IF NOT EXISTS contracts (
			contract_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			contract_type TEXT NOT NULL,
			from_agent TEXT NOT NULL,
			to_agent TEXT NOT NULL,
			capability TEXT,
			payload TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			result TEXT,
			error TEXT,
			metadata TEXT
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_contracts_session_created
				ON contracts(session_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status)`,
		},
	},
}
