package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	postKeyPrefix = "post:"
	indexKey      = "posts:index"
	categoryIndex = "posts:category:"
)

var (
	incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
`)

	toggleLikeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
if redis.call('SADD', KEYS[2], ARGV[1]) == 1 then
  return {redis.call('HINCRBY', KEYS[1], 'likes', 1), 1}
end
redis.call('SREM', KEYS[2], ARGV[1])
return {redis.call('HINCRBY', KEYS[1], 'likes', -1), 0}
`)

	addCommentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
return redis.call('RPUSH', KEYS[2], ARGV[1])
`)
)

// RedisStore keeps each post in a hash, indexes them in sorted sets scored by
// creation time, comments in a list and likers in a set.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func postKey(id string) string     { return postKeyPrefix + id }
func commentsKey(id string) string { return postKeyPrefix + id + ":comments" }
func likersKey(id string) string   { return postKeyPrefix + id + ":likers" }

func (s *RedisStore) Create(ctx context.Context, post *Post) error {
	score := float64(post.CreatedAt.UnixMilli())

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, postKey(post.ID), map[string]any{
			"id":          post.ID,
			"title":       post.Title,
			"content":     post.Content,
			"author":      post.Author,
			"authorId":    post.AuthorID,
			"isAnonymous": strconv.FormatBool(post.IsAnonymous),
			"category":    post.Category,
			"emotionTag":  post.EmotionTag,
			"createdAt":   post.CreatedAt.UTC().Format(time.RFC3339Nano),
			"likes":       post.Likes,
			"views":       post.Views,
		})
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: score, Member: post.ID})
		pipe.ZAdd(ctx, categoryIndex+post.Category, redis.Z{Score: score, Member: post.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("create post %s: %w", post.ID, err)
	}
	return nil
}

// List returns newest first. An empty category lists everything.
func (s *RedisStore) List(ctx context.Context, category string, limit int) ([]Post, error) {
	key := indexKey
	if category != "" {
		key = categoryIndex + category
	}

	ids, err := s.rdb.ZRevRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if len(ids) == 0 {
		return []Post{}, nil
	}

	hashes := make([]*redis.MapStringStringCmd, len(ids))
	comments := make([]*redis.StringSliceCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			hashes[i] = pipe.HGetAll(ctx, postKey(id))
			comments[i] = pipe.LRange(ctx, commentsKey(id), 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	posts := make([]Post, 0, len(ids))
	for i := range ids {
		fields := hashes[i].Val()
		if len(fields) == 0 {
			continue
		}
		post, err := decodePost(fields, comments[i].Val())
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Post, error) {
	var (
		hash     *redis.MapStringStringCmd
		comments *redis.StringSliceCmd
	)
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		hash = pipe.HGetAll(ctx, postKey(id))
		comments = pipe.LRange(ctx, commentsKey(id), 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}

	if len(hash.Val()) == 0 {
		return nil, ErrNotFound
	}

	return decodePost(hash.Val(), comments.Val())
}

func (s *RedisStore) Increment(ctx context.Context, id string, counter Counter, delta int64) (int64, error) {
	n, err := incrementScript.Run(ctx, s.rdb, []string{postKey(id)}, string(counter), delta).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s of post %s: %w", counter, id, err)
	}
	return n, nil
}

func (s *RedisStore) ToggleLike(ctx context.Context, id, userID string) (int64, bool, error) {
	res, err := toggleLikeScript.Run(ctx, s.rdb, []string{postKey(id), likersKey(id)}, userID).Int64Slice()
	if errors.Is(err, redis.Nil) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("toggle like on post %s: %w", id, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("toggle like on post %s: unexpected reply %v", id, res)
	}
	return res[0], res[1] == 1, nil
}

func (s *RedisStore) AddComment(ctx context.Context, id string, comment Comment) error {
	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	err = addCommentScript.Run(ctx, s.rdb, []string{postKey(id), commentsKey(id)}, payload).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("add comment to post %s: %w", id, err)
	}
	return nil
}

func decodePost(fields map[string]string, rawComments []string) (*Post, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("post %s: parse createdAt: %w", fields["id"], err)
	}

	likes, err := strconv.ParseInt(fields["likes"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("post %s: parse likes: %w", fields["id"], err)
	}
	views, err := strconv.ParseInt(fields["views"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("post %s: parse views: %w", fields["id"], err)
	}
	anonymous, err := strconv.ParseBool(fields["isAnonymous"])
	if err != nil {
		return nil, fmt.Errorf("post %s: parse isAnonymous: %w", fields["id"], err)
	}

	post := &Post{
		ID:          fields["id"],
		Title:       fields["title"],
		Content:     fields["content"],
		Author:      fields["author"],
		AuthorID:    fields["authorId"],
		IsAnonymous: anonymous,
		Category:    fields["category"],
		EmotionTag:  fields["emotionTag"],
		CreatedAt:   createdAt,
		Likes:       likes,
		Views:       views,
		Comments:    make([]Comment, 0, len(rawComments)),
	}

	for _, raw := range rawComments {
		var c Comment
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("post %s: decode comment: %w", post.ID, err)
		}
		post.Comments = append(post.Comments, c)
	}

	return post, nil
}
