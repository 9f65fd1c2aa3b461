package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/blog"
)

type blogRepository struct {
	db *DB
}

var _ blog.Repository = (*blogRepository)(nil)

func NewBlogRepository(db *DB) *blogRepository {
	return &blogRepository{db: db}
}

func (repo *blogRepository) CreatePost(_ context.Context, p blog.Post) (blog.Post, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.posts = append(repo.db.posts, p)
	return p, nil
}

func (repo *blogRepository) indexOf(id string) int {
	for i, p := range repo.db.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (repo *blogRepository) GetPost(_ context.Context, id string) (blog.Post, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if i := repo.indexOf(id); i >= 0 {
		return repo.db.posts[i], nil
	}
	return blog.Post{}, blog.ErrNotFound
}

func (repo *blogRepository) UpdatePost(_ context.Context, p blog.Post) (blog.Post, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	i := repo.indexOf(p.ID)
	if i < 0 {
		return blog.Post{}, blog.ErrNotFound
	}
	repo.db.posts[i] = p
	return p, nil
}

func (repo *blogRepository) DeletePost(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	i := repo.indexOf(id)
	if i < 0 {
		return blog.ErrNotFound
	}
	repo.db.posts = append(repo.db.posts[:i], repo.db.posts[i+1:]...)
	return nil
}

func (repo *blogRepository) FilterPosts(_ context.Context, filter blog.QueryFilter, orderings []core.DBOrdering) ([]blog.Post, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	posts := make([]blog.Post, 0)
	for _, p := range repo.db.posts {
		if filter.TeacherID != "" && p.TeacherID != filter.TeacherID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		posts = append(posts, p)
	}

	less := func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) }
	for _, ord := range orderings {
		if ord.Field == "title" {
			if ord.Ascending {
				less = func(i, j int) bool { return posts[i].Title < posts[j].Title }
			} else {
				less = func(i, j int) bool { return posts[i].Title > posts[j].Title }
			}
			break
		}
	}
	sort.SliceStable(posts, less)
	return posts, nil
}

func (repo *blogRepository) CountPostsByTeacher(_ context.Context) ([]blog.TeacherPostCount, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	byTeacher := make(map[string]int)
	for _, p := range repo.db.posts {
		byTeacher[p.TeacherID]++
	}
	counts := make([]blog.TeacherPostCount, 0, len(byTeacher))
	for id, n := range byTeacher {
		counts = append(counts, blog.TeacherPostCount{TeacherID: id, PostCount: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].PostCount != counts[j].PostCount {
			return counts[i].PostCount > counts[j].PostCount
		}
		return counts[i].TeacherID < counts[j].TeacherID
	})
	return counts, nil
}
