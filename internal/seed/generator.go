package seed

import (
	"fmt"
	"math/rand"

	"github.com/talkdb/talkdb/internal/blog"
)

// Generator draws blog rows from the sample pools. The same seed yields the
// same sequence of rows.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// User returns the i-th user. Emails are user{i}@example.com so a re-run
// collides on the unique email instead of growing the table.
func (g *Generator) User(i int) blog.User {
	return blog.User{
		Name:  pickOne(g.rnd, sampleNames),
		Email: fmt.Sprintf("user%d@example.com", i),
	}
}

func (g *Generator) Post(userIDs []int64) blog.Post {
	return blog.Post{
		UserID:  pickID(g.rnd, userIDs),
		Title:   pickOne(g.rnd, sampleTitles),
		Content: pickOne(g.rnd, sampleContents),
	}
}

func (g *Generator) Comment(postIDs, userIDs []int64) blog.Comment {
	return blog.Comment{
		UserID:  pickID(g.rnd, userIDs),
		PostID:  pickID(g.rnd, postIDs),
		Content: pickOne(g.rnd, sampleComments),
	}
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}

func pickID(r *rand.Rand, values []int64) int64 {
	return values[r.Intn(len(values))]
}
