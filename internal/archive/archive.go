// Package archive snapshots the seeded blog tables to Parquet files in an
// object store so a run's fixtures can be inspected or reloaded later.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talkdb/talkdb/internal/blog"
	"github.com/talkdb/talkdb/internal/observability"
	"github.com/talkdb/talkdb/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

type Archiver struct {
	db     *sqlx.DB
	store  storage.ObjectStore
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

// Manifest describes one archived run.
type Manifest struct {
	RunID   string               `json:"run_id"`
	Objects []storage.ObjectInfo `json:"objects"`
	Rows    map[string]int       `json:"rows"`
}

func New(db *sqlx.DB, store storage.ObjectStore, prefix string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "fixtures"
	}
	return &Archiver{
		db:     db,
		store:  store,
		prefix: prefix,
		log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Archive reads every blog table and writes it as <prefix>/<run-id>/<table>.parquet.
func (a *Archiver) Archive(ctx context.Context) (Manifest, error) {
	manifest := Manifest{RunID: storage.NewRunID(a.now()), Rows: map[string]int{}}

	var users []blog.User
	if err := a.db.SelectContext(ctx, &users, `SELECT id, name, email, created_at FROM users ORDER BY id`); err != nil {
		return manifest, fmt.Errorf("read users: %w", err)
	}
	var posts []blog.Post
	if err := a.db.SelectContext(ctx, &posts, `SELECT id, user_id, title, content, created_at FROM posts ORDER BY id`); err != nil {
		return manifest, fmt.Errorf("read posts: %w", err)
	}
	var comments []blog.Comment
	if err := a.db.SelectContext(ctx, &comments, `SELECT id, post_id, user_id, content, created_at FROM comments ORDER BY id`); err != nil {
		return manifest, fmt.Errorf("read comments: %w", err)
	}

	encoded := map[string]func() ([]byte, error){
		blog.TableUsers:    func() ([]byte, error) { return encodeRows(users) },
		blog.TablePosts:    func() ([]byte, error) { return encodeRows(posts) },
		blog.TableComments: func() ([]byte, error) { return encodeRows(comments) },
	}
	manifest.Rows[blog.TableUsers] = len(users)
	manifest.Rows[blog.TablePosts] = len(posts)
	manifest.Rows[blog.TableComments] = len(comments)

	for _, table := range blog.Tables {
		data, err := encoded[table]()
		if err != nil {
			return manifest, fmt.Errorf("encode %s: %w", table, err)
		}
		key, err := storage.BuildFixturePath(a.prefix, manifest.RunID, table)
		if err != nil {
			return manifest, err
		}
		info, err := a.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
			ContentType: parquetContentType,
			Metadata: map[string]string{
				"run-id": manifest.RunID,
				"table":  table,
				"rows":   strconv.Itoa(manifest.Rows[table]),
			},
		})
		if err != nil {
			return manifest, fmt.Errorf("upload %s: %w", table, err)
		}
		manifest.Objects = append(manifest.Objects, info)
		a.log.Info("fixture archived",
			slog.String("run_id", manifest.RunID),
			slog.String("key", key),
			slog.Int("rows", manifest.Rows[table]),
		)
	}
	return manifest, nil
}

// Runs lists archived run ids, newest first.
func (a *Archiver) Runs(ctx context.Context) ([]string, error) {
	infos, err := a.store.List(ctx, a.prefix+"/")
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	runs := make([]string, 0)
	for _, info := range infos {
		rest := strings.TrimPrefix(info.Key, a.prefix+"/")
		runID, _, ok := strings.Cut(rest, "/")
		if !ok {
			continue
		}
		if _, dup := seen[runID]; dup {
			continue
		}
		seen[runID] = struct{}{}
		runs = append(runs, runID)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

func (a *Archiver) LoadUsers(ctx context.Context, runID string) ([]blog.User, error) {
	return load[blog.User](ctx, a, runID, blog.TableUsers)
}

func (a *Archiver) LoadPosts(ctx context.Context, runID string) ([]blog.Post, error) {
	return load[blog.Post](ctx, a, runID, blog.TablePosts)
}

func (a *Archiver) LoadComments(ctx context.Context, runID string) ([]blog.Comment, error) {
	return load[blog.Comment](ctx, a, runID, blog.TableComments)
}

func load[T any](ctx context.Context, a *Archiver, runID, table string) ([]T, error) {
	key, err := storage.BuildFixturePath(a.prefix, runID, table)
	if err != nil {
		return nil, err
	}
	reader, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return decodeRows[T](data)
}
