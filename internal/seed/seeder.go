// Package seed fills the blog database with sample users, posts and
// comments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/talkdb/talkdb/internal/blog"
	"github.com/talkdb/talkdb/internal/migrations"
	"github.com/talkdb/talkdb/internal/observability"
	"github.com/talkdb/talkdb/internal/store"
)

// ErrNoParents is returned when posts or comments are requested but the
// tables they reference are empty.
var ErrNoParents = errors.New("no parent rows to reference")

type Counts struct {
	Users    int
	Posts    int
	Comments int
}

type TableSummary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type Summary struct {
	Users    TableSummary `json:"users"`
	Posts    TableSummary `json:"posts"`
	Comments TableSummary `json:"comments"`
}

// Pair is one row of the post-seed sample listing.
type Pair struct {
	Name  string `db:"name" json:"name"`
	Title string `db:"title" json:"title"`
}

type Seeder struct {
	db        *sqlx.DB
	dialect   string
	generator *Generator
	log       *slog.Logger
}

func NewSeeder(db *sqlx.DB, dialect string, seed int64, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Seeder{db: db, dialect: dialect, generator: NewGenerator(seed), log: logger}
}

// Run creates the schema if needed and then seeds users, posts and comments
// in that order.
func (s *Seeder) Run(ctx context.Context, counts Counts) (Summary, error) {
	runner, err := migrations.NewRunner(s.dialect)
	if err != nil {
		return Summary{}, err
	}
	applied, err := runner.Up(ctx, s.db, 0)
	if err != nil {
		return Summary{}, fmt.Errorf("apply schema: %w", err)
	}
	if applied > 0 {
		s.log.Info("schema migrations applied", slog.Int("count", applied))
	}

	var summary Summary
	if summary.Users, err = s.SeedUsers(ctx, counts.Users); err != nil {
		return summary, err
	}
	if summary.Posts, err = s.SeedPosts(ctx, counts.Posts); err != nil {
		return summary, err
	}
	if summary.Comments, err = s.SeedComments(ctx, counts.Comments); err != nil {
		return summary, err
	}
	return summary, nil
}

// SeedUsers inserts n users. Rows whose email already exists are skipped.
func (s *Seeder) SeedUsers(ctx context.Context, n int) (TableSummary, error) {
	var result TableSummary
	insert := s.db.Rebind(`INSERT INTO users (name, email) VALUES (?, ?)`)
	for i := 0; i < n; i++ {
		user := s.generator.User(i)
		if _, err := s.db.ExecContext(ctx, insert, user.Name, user.Email); err != nil {
			if store.IsUniqueViolation(err) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("insert user %s: %w", user.Email, err)
		}
		result.Inserted++
	}
	s.record(blog.TableUsers, result)
	return result, nil
}

func (s *Seeder) SeedPosts(ctx context.Context, n int) (TableSummary, error) {
	if n <= 0 {
		return TableSummary{}, nil
	}
	userIDs, err := s.ids(ctx, blog.TableUsers)
	if err != nil {
		return TableSummary{}, err
	}
	if len(userIDs) == 0 {
		return TableSummary{}, fmt.Errorf("seed posts: %w: users is empty", ErrNoParents)
	}

	result, err := s.insertBatch(ctx, `INSERT INTO posts (user_id, title, content) VALUES (?, ?, ?)`, n, func() []any {
		post := s.generator.Post(userIDs)
		return []any{post.UserID, post.Title, post.Content}
	})
	if err != nil {
		return result, fmt.Errorf("seed posts: %w", err)
	}
	s.record(blog.TablePosts, result)
	return result, nil
}

func (s *Seeder) SeedComments(ctx context.Context, n int) (TableSummary, error) {
	if n <= 0 {
		return TableSummary{}, nil
	}
	userIDs, err := s.ids(ctx, blog.TableUsers)
	if err != nil {
		return TableSummary{}, err
	}
	postIDs, err := s.ids(ctx, blog.TablePosts)
	if err != nil {
		return TableSummary{}, err
	}
	if len(userIDs) == 0 || len(postIDs) == 0 {
		return TableSummary{}, fmt.Errorf("seed comments: %w: users=%d posts=%d", ErrNoParents, len(userIDs), len(postIDs))
	}

	result, err := s.insertBatch(ctx, `INSERT INTO comments (post_id, user_id, content) VALUES (?, ?, ?)`, n, func() []any {
		comment := s.generator.Comment(postIDs, userIDs)
		return []any{comment.PostID, comment.UserID, comment.Content}
	})
	if err != nil {
		return result, fmt.Errorf("seed comments: %w", err)
	}
	s.record(blog.TableComments, result)
	return result, nil
}

// Sample returns up to limit author/title pairs.
func (s *Seeder) Sample(ctx context.Context, limit int) ([]Pair, error) {
	var pairs []Pair
	query := s.db.Rebind(`SELECT users.name, posts.title FROM posts JOIN users ON posts.user_id = users.id ORDER BY posts.id LIMIT ?`)
	if err := s.db.SelectContext(ctx, &pairs, query, limit); err != nil {
		return nil, fmt.Errorf("sample posts: %w", err)
	}
	return pairs, nil
}

// insertBatch runs n inserts in one transaction.
func (s *Seeder) insertBatch(ctx context.Context, statement string, n int, next func() []any) (TableSummary, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return TableSummary{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(statement))
	if err != nil {
		return TableSummary{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var result TableSummary
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, next()...); err != nil {
			return TableSummary{}, fmt.Errorf("insert row %d: %w", i, err)
		}
		result.Inserted++
	}
	if err := tx.Commit(); err != nil {
		return TableSummary{}, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func (s *Seeder) ids(ctx context.Context, table string) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM `+table+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list %s ids: %w", table, err)
	}
	return ids, nil
}

func (s *Seeder) record(table string, result TableSummary) {
	observability.AddSeedRows(table, result.Inserted, result.Skipped)
	s.log.Info("table seeded",
		slog.String("table", table),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
	)
}
