package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Entry is a persisted cache snapshot.
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
	Stale     bool
}

// Persister lets a new process pick up cached snapshots, so a CLI invocation
// inside the freshness window does not hit the network.
type Persister interface {
	Load(key Key) (Entry, bool, error)
	Save(key Key, e Entry) error
	Delete(key Key) error
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: cbor encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("store: cbor decoder initialization failed: " + err.Error())
	}
}

func marshalPayload(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshalPayload(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// SQLitePersister stores snapshots in cache_entries, scoped to the user
// returned by owner so a different login never sees another user's data.
type SQLitePersister struct {
	db    *sql.DB
	owner func() string
}

func NewSQLitePersister(db *sql.DB, owner func() string) *SQLitePersister {
	if owner == nil {
		owner = func() string { return "" }
	}
	return &SQLitePersister{db: db, owner: owner}
}

func (p *SQLitePersister) Load(key Key) (Entry, bool, error) {
	var (
		e         Entry
		fetchedAt string
		stale     int
	)
	err := p.db.QueryRow(`SELECT payload, fetched_at, stale FROM cache_entries WHERE key = ? AND owner = ?`, string(key), p.owner()).
		Scan(&e.Payload, &fetchedAt, &stale)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load cache entry %q: %w", key, err)
	}
	if fetchedAt != "" {
		e.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return Entry{}, false, fmt.Errorf("parse cache entry %q fetched_at: %w", key, err)
		}
	}
	e.Stale = stale == 1
	return e, true, nil
}

func (p *SQLitePersister) Save(key Key, e Entry) error {
	fetchedAt := ""
	if !e.FetchedAt.IsZero() {
		fetchedAt = e.FetchedAt.UTC().Format(time.RFC3339Nano)
	}
	stale := 0
	if e.Stale {
		stale = 1
	}
	_, err := p.db.Exec(`
INSERT INTO cache_entries(key, payload, fetched_at, stale, owner, updated_at)
VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET
  payload=excluded.payload,
  fetched_at=excluded.fetched_at,
  stale=excluded.stale,
  owner=excluded.owner,
  updated_at=excluded.updated_at
`, string(key), e.Payload, fetchedAt, stale, p.owner())
	if err != nil {
		return fmt.Errorf("save cache entry %q: %w", key, err)
	}
	return nil
}

func (p *SQLitePersister) Delete(key Key) error {
	if _, err := p.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, string(key)); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

type CacheItem struct {
	Key       string    `json:"key" yaml:"key"`
	Owner     string    `json:"owner" yaml:"owner"`
	Bytes     int       `json:"bytes" yaml:"bytes"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
	Stale     bool      `json:"stale" yaml:"stale"`
}

func ListCache(db *sql.DB, limit int) ([]CacheItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
SELECT key, owner, length(payload), fetched_at, stale
FROM cache_entries
ORDER BY key ASC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()
	out := make([]CacheItem, 0)
	for rows.Next() {
		var (
			item      CacheItem
			fetchedAt string
			stale     int
		)
		if err := rows.Scan(&item.Key, &item.Owner, &item.Bytes, &fetchedAt, &stale); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		item.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)
		item.Stale = stale == 1
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return out, nil
}

// PurgeCache deletes every entry, or only the entries whose key starts with
// prefix.
func PurgeCache(db *sql.DB, prefix string, purgeAll bool) (int64, error) {
	prefix = strings.TrimSpace(prefix)
	var (
		res sql.Result
		err error
	)
	switch {
	case purgeAll:
		res, err = db.Exec(`DELETE FROM cache_entries`)
	case prefix != "":
		res, err = db.Exec(`DELETE FROM cache_entries WHERE key = ? OR key LIKE ?`, prefix, prefix+".%")
	default:
		return 0, fmt.Errorf("specify --all or --key")
	}
	if err != nil {
		return 0, fmt.Errorf("purge cache entries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cache rows affected: %w", err)
	}
	return affected, nil
}
