package community

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultCategory   = "썸/연애"
	defaultEmotionTag = "설렘"
	defaultListLimit  = 50
)

var (
	postAliases    = []string{"토끼", "고양이", "강아지", "새", "물고기"}
	commentAliases = []string{"새싹", "별", "달", "구름", "햇살"}
)

// Options configure a Service. Zero values select the defaults.
type Options struct {
	Logger    *zap.Logger
	ListLimit int
	Intn      func(n int) int
	Now       func() time.Time
	NewID     func() string
}

type Service struct {
	store     Store
	logger    *zap.Logger
	listLimit int
	intn      func(n int) int
	now       func() time.Time
	newID     func() string
}

func NewService(store Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}
	if opts.Intn == nil {
		opts.Intn = rand.IntN
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{
		store:     store,
		logger:    opts.Logger,
		listLimit: opts.ListLimit,
		intn:      opts.Intn,
		now:       opts.Now,
		newID:     opts.NewID,
	}
}

// CreatePost validates in and stores a new post. Anonymous posts get an
// animal alias and an authorId of anon_<user id>.
func (s *Service) CreatePost(ctx context.Context, author Author, in NewPost) (*Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, ErrMissingTitleOrContent
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}
	if !slices.Contains(Categories, category) {
		return nil, ErrInvalidCategory
	}

	emotion := strings.TrimSpace(in.EmotionTag)
	if emotion == "" {
		emotion = defaultEmotionTag
	}
	if !slices.Contains(EmotionTags, emotion) {
		return nil, ErrInvalidEmotion
	}

	post := &Post{
		ID:          s.newID(),
		Title:       title,
		Content:     content,
		Author:      author.Name,
		AuthorID:    author.ID,
		IsAnonymous: in.IsAnonymous,
		Category:    category,
		EmotionTag:  emotion,
		CreatedAt:   s.now().UTC(),
		Comments:    []Comment{},
	}
	if in.IsAnonymous {
		post.Author = s.alias(postAliases)
		post.AuthorID = "anon_" + author.ID
	}

	if err := s.store.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("category", post.Category),
		zap.Bool("anonymous", post.IsAnonymous),
	)

	return post, nil
}

// ListPosts returns newest first. Blank or 전체 means every category.
func (s *Service) ListPosts(ctx context.Context, category string) ([]Post, error) {
	category = strings.TrimSpace(category)
	if category == AllCategories {
		category = ""
	}
	if category != "" && !slices.Contains(Categories, category) {
		return nil, ErrInvalidCategory
	}
	return s.store.List(ctx, category, s.listLimit)
}

// ViewPost counts a view and returns the post with the new count.
func (s *Service) ViewPost(ctx context.Context, id string) (*Post, error) {
	if _, err := s.store.Increment(ctx, id, CounterViews, 1); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

type LikeResult struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

// ToggleLike likes the post for userID, or takes the like back.
func (s *Service) ToggleLike(ctx context.Context, id, userID string) (*LikeResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("toggle like: empty user id")
	}
	likes, liked, err := s.store.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Likes: likes, Liked: liked}, nil
}

// AddComment appends a comment. Anonymous comments keep the real authorId.
func (s *Service) AddComment(ctx context.Context, postID string, author Author, in NewComment) (*Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrMissingComment
	}

	comment := Comment{
		ID:          s.newID(),
		Content:     content,
		Author:      author.Name,
		AuthorID:    author.ID,
		IsAnonymous: in.IsAnonymous,
		CreatedAt:   s.now().UTC(),
	}
	if in.IsAnonymous {
		comment.Author = s.alias(commentAliases)
	}

	if err := s.store.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *Service) alias(names []string) string {
	i := s.intn(len(names))
	if i < 0 || i >= len(names) {
		i = 0
	}
	return "익명의 " + names[i]
}
