package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const stagingBucket = "staging"

// BoltStore keeps objects in a single BoltDB file. Objects live in a bucket
// named after the configured storage bucket; files uploaded ahead of a form
// submission wait in a separate staging bucket until they are claimed.
type BoltStore struct {
	db      *bbolt.DB
	bucket  string
	baseURL string
	now     func() time.Time
}

type stagedObject struct {
	Filename string    `json:"filename"`
	Data     []byte    `json:"data"`
	StagedAt time.Time `json:"staged_at"`
}

// OpenBolt opens (or creates) the object store at path.
func OpenBolt(path, bucket, baseURL string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if bucket == stagingBucket {
		return nil, fmt.Errorf("storage bucket name %q is reserved", bucket)
	}
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	s := &BoltStore{db: db, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upload stores body at path, replacing any previous object.
func (s *BoltStore) Upload(ctx context.Context, path string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("object path is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.bucket))
		if b == nil {
			return fmt.Errorf("bucket %s is missing", s.bucket)
		}
		return b.Put([]byte(path), data)
	})
}

// Get returns the object stored at path.
func (s *BoltStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.bucket))
		if b == nil {
			return fmt.Errorf("bucket %s is missing", s.bucket)
		}
		data := b.Get([]byte(path))
		if data == nil {
			return ErrNotFound
		}
		out = bytes.Clone(data)
		return nil
	})
	return out, err
}

// PublicURL is the address the object at path is served from.
func (s *BoltStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

// Stage holds an uploaded file until a form submission claims it and returns
// the token that refers to it.
func (s *BoltStore) Stage(ctx context.Context, filename string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("file name is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	payload, err := json.Marshal(stagedObject{Filename: filename, Data: data, StagedAt: s.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("marshal staged file: %w", err)
	}
	token := uuid.NewString()
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(stagingBucket)).Put([]byte(token), payload)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Peek returns a staged file's name and content and leaves it staged, so a
// submission that is rejected can be retried with the same token.
func (s *BoltStore) Peek(ctx context.Context, token string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	var obj stagedObject
	err := s.db.View(func(tx *bbolt.Tx) error {
		return decodeStaged(tx.Bucket([]byte(stagingBucket)).Get([]byte(token)), &obj)
	})
	if err != nil {
		return "", nil, err
	}
	return obj.Filename, obj.Data, nil
}

// Claim removes a staged file and returns its original name and content.
func (s *BoltStore) Claim(ctx context.Context, token string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	var obj stagedObject
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(stagingBucket))
		if err := decodeStaged(b.Get([]byte(token)), &obj); err != nil {
			return err
		}
		return b.Delete([]byte(token))
	})
	if err != nil {
		return "", nil, err
	}
	return obj.Filename, obj.Data, nil
}

// decodeStaged copies out of payload, which is only valid inside the
// transaction.
func decodeStaged(payload []byte, obj *stagedObject) error {
	if payload == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(payload, obj); err != nil {
		return fmt.Errorf("unmarshal staged file: %w", err)
	}
	return nil
}

// PurgeStaged drops staged files older than maxAge and reports how many were
// removed.
func (s *BoltStore) PurgeStaged(ctx context.Context, maxAge time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cutoff := s.now().UTC().Add(-maxAge)
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(stagingBucket))
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var obj stagedObject
			if err := json.Unmarshal(v, &obj); err != nil || obj.StagedAt.Before(cutoff) {
				stale = append(stale, bytes.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *BoltStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{s.bucket, stagingBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
