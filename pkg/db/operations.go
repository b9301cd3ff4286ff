package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/folio-dev/blogrender/models"
)

var ErrPostNotFound = errors.New("post not found")

// Metadata namespaces stored in post_metadata.
const (
	NamespaceMeta    = "meta"
	NamespaceOG      = "og"
	NamespaceTwitter = "twitter"
)

const postColumns = `post_id, locale, slug, title, excerpt, author, date, published_at,
	site_name, image, word_count, read_minutes, language, top_keywords`

// UpsertPost inserts or replaces the row for (post.Locale, post.Slug) and
// returns its post_id. Tags and metadata are replaced as a whole.
func (db *DB) UpsertPost(post *models.Post, contentHash string) (int64, error) {
	keywords, err := json.Marshal(nonNil(post.Stats.TopKeywords))
	if err != nil {
		return 0, fmt.Errorf("failed to encode keywords: %w", err)
	}

	var publishedAt int64
	if !post.PublishedAt.IsZero() {
		publishedAt = post.PublishedAt.Unix()
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var postID int64
	err = tx.QueryRow(`
		INSERT INTO posts (locale, slug, title, excerpt, author, date, published_at,
			site_name, image, content_hash, word_count, read_minutes, language, top_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (locale, slug) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			author = excluded.author,
			date = excluded.date,
			published_at = excluded.published_at,
			site_name = excluded.site_name,
			image = excluded.image,
			content_hash = excluded.content_hash,
			word_count = excluded.word_count,
			read_minutes = excluded.read_minutes,
			language = excluded.language,
			top_keywords = excluded.top_keywords,
			indexed_at = CURRENT_TIMESTAMP
		RETURNING post_id
	`, post.Locale, post.Slug, post.Title, post.Excerpt, post.Author, post.Date, publishedAt,
		post.SiteName, post.Image, contentHash, post.Stats.WordCount, post.Stats.EstimatedReadMin,
		post.Stats.Language, string(keywords)).Scan(&postID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert post: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", postID); err != nil {
		return 0, fmt.Errorf("failed to clear tags: %w", err)
	}
	for i, tag := range post.Tags {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO post_tags (post_id, position, tag) VALUES (?, ?, ?)
		`, postID, i, tag); err != nil {
			return 0, fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM post_metadata WHERE post_id = ?", postID); err != nil {
		return 0, fmt.Errorf("failed to clear metadata: %w", err)
	}
	for namespace, values := range metadataRows(post.Metadata) {
		for key, value := range values {
			if _, err := tx.Exec(`
				INSERT INTO post_metadata (post_id, namespace, key, value) VALUES (?, ?, ?, ?)
			`, postID, namespace, key, value); err != nil {
				return 0, fmt.Errorf("failed to insert metadata: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit post: %w", err)
	}
	return postID, nil
}

// ContentHash returns the hash stored with a post, or "" when it is not indexed.
func (db *DB) ContentHash(locale, slug string) (string, error) {
	var hash sql.NullString
	err := db.QueryRow("SELECT content_hash FROM posts WHERE locale = ? AND slug = ?", locale, slug).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get content hash: %w", err)
	}
	return hash.String, nil
}

// GetPost returns the indexed post without its content.
func (db *DB) GetPost(locale, slug string) (*models.Post, error) {
	row := db.QueryRow("SELECT "+postColumns+" FROM posts WHERE locale = ? AND slug = ?", locale, slug)
	postID, post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", locale, slug, ErrPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := db.loadRelations(postID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns every post of locale, newest first. Posts without a
// parseable date sort last, ties by slug.
func (db *DB) ListPosts(locale string) ([]*models.Post, error) {
	return db.queryPosts(`
		SELECT `+postColumns+` FROM posts
		WHERE locale = ?
		ORDER BY published_at DESC, slug ASC
	`, locale)
}

// ListPostsByTag returns the posts of locale carrying tag, newest first.
func (db *DB) ListPostsByTag(locale, tag string) ([]*models.Post, error) {
	return db.queryPosts(`
		SELECT `+postColumns+` FROM posts
		WHERE locale = ? AND post_id IN (SELECT post_id FROM post_tags WHERE tag = ?)
		ORDER BY published_at DESC, slug ASC
	`, locale, tag)
}

// DeletePost removes a post with its tags and metadata.
func (db *DB) DeletePost(locale, slug string) error {
	result, err := db.Exec("DELETE FROM posts WHERE locale = ? AND slug = ?", locale, slug)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", locale, slug, ErrPostNotFound)
	}
	return nil
}

// CountPosts returns the number of indexed posts in locale.
func (db *DB) CountPosts(locale string) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts WHERE locale = ?", locale).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// Slugs returns the indexed slugs of locale.
func (db *DB) Slugs(locale string) ([]string, error) {
	rows, err := db.Query("SELECT slug FROM posts WHERE locale = ? ORDER BY slug", locale)
	if err != nil {
		return nil, fmt.Errorf("failed to list slugs: %w", err)
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (db *DB) queryPosts(query string, args ...any) ([]*models.Post, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var ids []int64
	posts := []*models.Post{}
	for rows.Next() {
		postID, post, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		ids = append(ids, postID)
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	rows.Close()

	// relations are loaded after the cursor is closed: the pool has one connection
	for i, post := range posts {
		if err := db.loadRelations(ids[i], post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (int64, *models.Post, error) {
	var (
		postID                                 int64
		excerpt, author, date, siteName, image sql.NullString
		language, keywords                     sql.NullString
		publishedAt                            sql.NullInt64
	)
	post := &models.Post{Metadata: models.NewMetadata()}
	err := row.Scan(&postID, &post.Locale, &post.Slug, &post.Title, &excerpt, &author, &date,
		&publishedAt, &siteName, &image, &post.Stats.WordCount, &post.Stats.EstimatedReadMin,
		&language, &keywords)
	if err != nil {
		return 0, nil, err
	}

	post.Excerpt = excerpt.String
	post.Author = author.String
	post.Date = date.String
	post.SiteName = siteName.String
	post.Image = image.String
	post.Stats.Language = language.String
	if publishedAt.Int64 != 0 {
		post.PublishedAt = time.Unix(publishedAt.Int64, 0).UTC()
	}
	if keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &post.Stats.TopKeywords); err != nil {
			return 0, nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
	}
	return postID, post, nil
}

func (db *DB) loadRelations(postID int64, post *models.Post) error {
	rows, err := db.Query("SELECT tag FROM post_tags WHERE post_id = ? ORDER BY position", postID)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	post.Tags = []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		post.Tags = append(post.Tags, tag)
	}
	rows.Close()
	post.Metadata.Tags = append([]string{}, post.Tags...)

	rows, err = db.Query("SELECT namespace, key, value FROM post_metadata WHERE post_id = ?", postID)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var namespace, key string
		var value sql.NullString
		if err := rows.Scan(&namespace, &key, &value); err != nil {
			return fmt.Errorf("failed to scan metadata: %w", err)
		}
		setMetadata(&post.Metadata, namespace, key, value.String)
	}
	return rows.Err()
}

func metadataRows(m models.Metadata) map[string]map[string]string {
	meta := map[string]string{}
	for key, value := range map[string]string{
		"title":          m.Title,
		"description":    m.Description,
		"author":         m.Author,
		"published_time": m.PublishedTime,
	} {
		if value != "" {
			meta[key] = value
		}
	}
	return map[string]map[string]string{
		NamespaceMeta:    meta,
		NamespaceOG:      m.OpenGraph,
		NamespaceTwitter: m.Twitter,
	}
}

func setMetadata(m *models.Metadata, namespace, key, value string) {
	switch namespace {
	case NamespaceOG:
		m.OpenGraph[key] = value
	case NamespaceTwitter:
		m.Twitter[key] = value
	case NamespaceMeta:
		switch key {
		case "title":
			m.Title = value
		case "description":
			m.Description = value
		case "author":
			m.Author = value
		case "published_time":
			m.PublishedTime = value
		}
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
