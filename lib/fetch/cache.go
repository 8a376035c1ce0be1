package fetch

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/url"
	"time"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SetCache attaches a badger-backed page cache to the client. Pages
// are cached by normalized url for the given ttl, which keeps repeated
// scans of already-closed lots off the auction sites.
func (c *Client) SetCache(db *badger.DB, ttl time.Duration) {
	c.cache = &pageCache{db: db, ttl: ttl}
}

type cachedPage struct {
	Text      string
	ExpiresAt int64
}

type pageCache struct {
	db  *badger.DB
	ttl time.Duration
}

func (c pageCache) key(rawURL, encoding string) string {
	normalized := rawURL
	if link, err := url.Parse(rawURL); err == nil {
		normalized = purell.NormalizeURL(
			link,
			purell.FlagsSafe|
				purell.FlagsUsuallySafeNonGreedy|
				purell.FlagRemoveFragment|
				purell.FlagSortQuery,
		)
	}
	return encoding + ":" + normalized
}

func (c pageCache) get(ctx context.Context, rawURL, encoding string) (string, error) {
	ctx, span := tracer.Start(ctx, "cache:get")
	defer span.End()

	key := c.key(rawURL, encoding)
	span.SetAttributes(attribute.String("cache_key", key))

	tx := c.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get([]byte(key))
	if err != nil {
		return "", err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return "", err
	}

	var cached cachedPage
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return "", err
	}

	if time.Now().Unix() >= cached.ExpiresAt {
		tx := c.db.NewTransaction(true)
		defer tx.Commit()
		err = tx.Delete([]byte(key))
		if err != nil {
			span.RecordError(err)
		}
		return "", badger.ErrKeyNotFound
	}

	return cached.Text, nil
}

func (c pageCache) put(ctx context.Context, rawURL, encoding, text string) {
	ctx, span := tracer.Start(ctx, "cache:put")
	defer span.End()

	key := c.key(rawURL, encoding)
	span.SetAttributes(attribute.String("cache_key", key))

	buffer := bytes.Buffer{}
	err := gob.NewEncoder(&buffer).Encode(cachedPage{
		Text:      text,
		ExpiresAt: time.Now().Add(c.ttl).Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize page")
		return
	}

	tx := c.db.NewTransaction(true)
	defer tx.Discard()

	err = tx.Set([]byte(key), buffer.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write page to badger")
		return
	}
	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit page to badger")
	}
}
