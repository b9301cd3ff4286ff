package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- One row per post and locale
CREATE TABLE IF NOT EXISTS posts (
    post_id INTEGER PRIMARY KEY AUTOINCREMENT,
    locale TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT,
    author TEXT,
    date TEXT,                    -- date as written in the source
    published_at INTEGER,         -- unix seconds, 0 when date is unparseable
    site_name TEXT,
    image TEXT,
    content_hash TEXT,

    -- Reading statistics
    word_count INTEGER DEFAULT 0,
    read_minutes REAL DEFAULT 0,
    language TEXT,
    top_keywords TEXT,            -- JSON array

    indexed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (locale, slug)
);

CREATE INDEX IF NOT EXISTS idx_posts_locale_published ON posts(locale, published_at DESC);

CREATE TABLE IF NOT EXISTS post_tags (
    post_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (post_id, tag),
    FOREIGN KEY (post_id) REFERENCES posts(post_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);

-- Head metadata: namespace is meta, og or twitter
CREATE TABLE IF NOT EXISTS post_metadata (
    post_id INTEGER NOT NULL,
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT,
    PRIMARY KEY (post_id, namespace, key),
    FOREIGN KEY (post_id) REFERENCES posts(post_id) ON DELETE CASCADE
);
`
