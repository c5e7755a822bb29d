package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/talkdb/talkdb/internal/blog"
)

// ErrTargetNotEmpty is returned by Restore when the database already holds
// users.
var ErrTargetNotEmpty = errors.New("restore target already contains users")

// Restore loads an archived run and inserts it into an empty blog database in
// one transaction. Rows get fresh ids from the target; foreign keys are
// remapped through the ids returned for each parent row.
func (a *Archiver) Restore(ctx context.Context, runID string) (map[string]int, error) {
	users, err := a.LoadUsers(ctx, runID)
	if err != nil {
		return nil, err
	}
	posts, err := a.LoadPosts(ctx, runID)
	if err != nil {
		return nil, err
	}
	comments, err := a.LoadComments(ctx, runID)
	if err != nil {
		return nil, err
	}

	var existing int
	if err := a.db.GetContext(ctx, &existing, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		return nil, ErrTargetNotEmpty
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	userIDs := make(map[int64]int64, len(users))
	for _, user := range users {
		id, err := insertReturningID(ctx, tx,
			`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?) RETURNING id`,
			user.Name, user.Email, user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("restore user %d: %w", user.ID, err)
		}
		userIDs[user.ID] = id
	}

	postIDs := make(map[int64]int64, len(posts))
	for _, post := range posts {
		owner, ok := userIDs[post.UserID]
		if !ok {
			return nil, fmt.Errorf("restore post %d: unknown user %d", post.ID, post.UserID)
		}
		id, err := insertReturningID(ctx, tx,
			`INSERT INTO posts (user_id, title, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
			owner, post.Title, post.Content, post.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("restore post %d: %w", post.ID, err)
		}
		postIDs[post.ID] = id
	}

	for _, comment := range comments {
		postID, ok := postIDs[comment.PostID]
		if !ok {
			return nil, fmt.Errorf("restore comment %d: unknown post %d", comment.ID, comment.PostID)
		}
		author, ok := userIDs[comment.UserID]
		if !ok {
			return nil, fmt.Errorf("restore comment %d: unknown user %d", comment.ID, comment.UserID)
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO comments (post_id, user_id, content, created_at) VALUES (?, ?, ?, ?)`),
			postID, author, comment.Content, comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("restore comment %d: %w", comment.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore: %w", err)
	}
	restored := map[string]int{
		blog.TableUsers:    len(users),
		blog.TablePosts:    len(posts),
		blog.TableComments: len(comments),
	}
	a.log.InfoContext(ctx, "fixtures restored",
		slog.String("run_id", runID),
		slog.Int("users", len(users)),
		slog.Int("posts", len(posts)),
		slog.Int("comments", len(comments)),
	)
	return restored, nil
}

func insertReturningID(ctx context.Context, tx *sqlx.Tx, statement string, args ...any) (int64, error) {
	var id int64
	if err := tx.QueryRowxContext(ctx, tx.Rebind(statement), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
