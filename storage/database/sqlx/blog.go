package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/blog"
)

const postColumns = "id, teacher_id, title, content, url, created_at, updated_at"

var postOrderings = map[string]string{
	"title":      "title",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type postRow struct {
	ID        string    `db:"id"`
	TeacherID string    `db:"teacher_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func boilPost(p blog.Post) postRow {
	return postRow{
		ID:        p.ID,
		TeacherID: p.TeacherID,
		Title:     p.Title,
		Content:   p.Content,
		URL:       p.URL,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func (row postRow) unboil() blog.Post {
	return blog.Post{
		ID:        row.ID,
		TeacherID: row.TeacherID,
		Title:     row.Title,
		Content:   row.Content,
		URL:       row.URL,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type blogRepository struct {
	db *sqlx.DB
}

var _ blog.Repository = (*blogRepository)(nil)

func NewBlogRepository(db *sqlx.DB) *blogRepository {
	return &blogRepository{db: db}
}

func (repo *blogRepository) CreatePost(ctx context.Context, p blog.Post) (blog.Post, error) {
	q := "INSERT INTO blog_posts (" + postColumns + ") " +
		"VALUES (:id, :teacher_id, :title, :content, :url, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, boilPost(p)); err != nil {
		return blog.Post{}, err
	}
	return p, nil
}

func (repo *blogRepository) GetPost(ctx context.Context, id string) (blog.Post, error) {
	var row postRow
	q := repo.db.Rebind("SELECT " + postColumns + " FROM blog_posts WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return blog.Post{}, trapNoRowsErr(err, blog.ErrNotFound)
	}
	return row.unboil(), nil
}

func (repo *blogRepository) UpdatePost(ctx context.Context, p blog.Post) (blog.Post, error) {
	q := "UPDATE blog_posts SET title = :title, content = :content, url = :url, updated_at = :updated_at WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, q, boilPost(p))
	if err != nil {
		return blog.Post{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return blog.Post{}, blog.ErrNotFound
	}
	return p, nil
}

func (repo *blogRepository) DeletePost(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM blog_posts WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return blog.ErrNotFound
	}
	return nil
}

func (repo *blogRepository) FilterPosts(ctx context.Context, filter blog.QueryFilter, orderings []core.DBOrdering) ([]blog.Post, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		conds = append(conds, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	q := "SELECT " + postColumns + " FROM blog_posts"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + core.OrderByClause(orderings, postOrderings, "created_at DESC")

	var rows []postRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	posts := make([]blog.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.unboil())
	}
	return posts, nil
}

func (repo *blogRepository) CountPostsByTeacher(ctx context.Context) ([]blog.TeacherPostCount, error) {
	var rows []struct {
		TeacherID string `db:"teacher_id"`
		PostCount int    `db:"post_count"`
	}
	q := "SELECT teacher_id, COUNT(*) AS post_count FROM blog_posts GROUP BY teacher_id ORDER BY post_count DESC, teacher_id"
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	counts := make([]blog.TeacherPostCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, blog.TeacherPostCount{TeacherID: row.TeacherID, PostCount: row.PostCount})
	}
	return counts, nil
}
