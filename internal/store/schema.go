package store

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- CHANNEL TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS channel SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS external_id ON channel TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON channel TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON channel TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS thumbnail_url ON channel TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS subscriber_count ON channel TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS imported_by ON channel TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON channel TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS channel_external_id ON channel FIELDS external_id UNIQUE;

    -- ==========================================================================
    -- VIDEO TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS video SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS external_url ON video TYPE string;
    DEFINE FIELD IF NOT EXISTS external_id ON video TYPE string;
    DEFINE FIELD IF NOT EXISTS channel_id ON video TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON video TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON video TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS thumbnail_url ON video TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS duration_secs ON video TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS published_at ON video TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS category ON video TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS score ON video TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS tags ON video TYPE option<array<string>>;
    DEFINE FIELD IF NOT EXISTS created_at ON video TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS video_external_url ON video FIELDS external_url UNIQUE;
    DEFINE INDEX IF NOT EXISTS video_channel_id ON video FIELDS channel_id;
`
