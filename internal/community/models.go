// Package community is the anonymous-friendly bulletin board.
package community

import (
	"context"
	"errors"
	"time"
)

// Validation and lookup errors carry the text shown to users.
var (
	ErrMissingTitleOrContent = errors.New("제목과 내용을 모두 입력해주세요.")
	ErrMissingComment        = errors.New("댓글 내용을 입력해주세요.")
	ErrInvalidCategory       = errors.New("알 수 없는 카테고리입니다.")
	ErrInvalidEmotion        = errors.New("알 수 없는 감정 태그입니다.")
	ErrNotFound              = errors.New("게시글을 찾을 수 없습니다.")
)

// AllCategories is accepted by list filters only.
const AllCategories = "전체"

var (
	Categories  = []string{"썸/연애", "고백/프로포즈", "연인관계", "이별/재회", "기타"}
	EmotionTags = []string{"설렘", "불안함", "행복", "고민", "외로움", "기대", "걱정"}
)

// Counter is a numeric post field that can be incremented in place.
type Counter string

const (
	CounterLikes Counter = "likes"
	CounterViews Counter = "views"
)

type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"authorId"`
	IsAnonymous bool      `json:"isAnonymous"`
	Category    string    `json:"category"`
	EmotionTag  string    `json:"emotionTag"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       int64     `json:"likes"`
	Views       int64     `json:"views"`
	Comments    []Comment `json:"comments"`
}

type Comment struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"authorId"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Author is the signed-in writer.
type Author struct {
	ID   string
	Name string
}

type NewPost struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	EmotionTag  string `json:"emotionTag"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type NewComment struct {
	Content     string `json:"content"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Store is the document-store capability the board needs. Increment and
// ToggleLike must be atomic on the store side.
type Store interface {
	Create(ctx context.Context, post *Post) error
	List(ctx context.Context, category string, limit int) ([]Post, error)
	Get(ctx context.Context, id string) (*Post, error)
	Increment(ctx context.Context, id string, counter Counter, delta int64) (int64, error)
	ToggleLike(ctx context.Context, id, userID string) (likes int64, liked bool, err error)
	AddComment(ctx context.Context, id string, comment Comment) error
}
