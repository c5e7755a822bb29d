// Package blog describes the demo database: three tables of users, their
// posts, and comments on those posts.
package blog

// SchemaContext is injected verbatim into every prompt. It is intentionally
// hand-written rather than introspected so the model always sees the same text.
const SchemaContext = `
Table: users(id, name, email, created_at)
Table: posts(id, user_id, title, content, created_at)
Table: comments(id, post_id, user_id, content, created_at)
`

const (
	TableUsers    = "users"
	TablePosts    = "posts"
	TableComments = "comments"
)

// Tables lists tables in parent-before-child order.
var Tables = []string{TableUsers, TablePosts, TableComments}

type User struct {
	ID        int64  `db:"id" json:"id" parquet:"id"`
	Name      string `db:"name" json:"name" parquet:"name"`
	Email     string `db:"email" json:"email" parquet:"email"`
	CreatedAt string `db:"created_at" json:"created_at" parquet:"created_at"`
}

type Post struct {
	ID        int64  `db:"id" json:"id" parquet:"id"`
	UserID    int64  `db:"user_id" json:"user_id" parquet:"user_id"`
	Title     string `db:"title" json:"title" parquet:"title"`
	Content   string `db:"content" json:"content" parquet:"content"`
	CreatedAt string `db:"created_at" json:"created_at" parquet:"created_at"`
}

type Comment struct {
	ID        int64  `db:"id" json:"id" parquet:"id"`
	PostID    int64  `db:"post_id" json:"post_id" parquet:"post_id"`
	UserID    int64  `db:"user_id" json:"user_id" parquet:"user_id"`
	Content   string `db:"content" json:"content" parquet:"content"`
	CreatedAt string `db:"created_at" json:"created_at" parquet:"created_at"`
}
