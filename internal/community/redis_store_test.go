package community

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisStore(rdb), mr
}

func samplePost(id, category string, createdAt time.Time) *Post {
	return &Post{
		ID:         id,
		Title:      "제목 " + id,
		Content:    "내용 " + id,
		Author:     "민수",
		AuthorID:   "kakao:42",
		Category:   category,
		EmotionTag: "설렘",
		CreatedAt:  createdAt,
		Comments:   []Comment{},
	}
}

func TestRedisStoreCreateGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 2, 10, 0, 0, 123, time.UTC)

	want := samplePost("p1", "연인관계", created)
	want.IsAnonymous = true
	require.NoError(t, store.Create(ctx, want))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreGetCorruptedFields(t *testing.T) {
	tests := []struct {
		field  string
		value  string
		errSub string
	}{
		{field: "likes", value: "many", errSub: "parse likes"},
		{field: "views", value: "", errSub: "parse views"},
		{field: "isAnonymous", value: "maybe", errSub: "parse isAnonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			store, mr := newTestStore(t)
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, samplePost("p1", "기타", time.Now())))

			mr.HSet(postKey("p1"), tt.field, tt.value)

			_, err := store.Get(ctx, "p1")
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestRedisStoreListOrderAndCategory(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, samplePost("old", "기타", base)))
	require.NoError(t, store.Create(ctx, samplePost("mid", "연인관계", base.Add(time.Minute))))
	require.NoError(t, store.Create(ctx, samplePost("new", "기타", base.Add(2*time.Minute))))

	all, err := store.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids(all))

	etc, err := store.List(ctx, "기타", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, ids(etc))

	limited, err := store.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids(limited))

	none, err := store.List(ctx, "이별/재회", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisStoreIncrement(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, samplePost("p1", "기타", time.Now())))

	n, err := store.Increment(ctx, "p1", CounterViews, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Increment(ctx, "p1", CounterViews, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, "3", mr.HGet(postKey("p1"), "views"))

	_, err = store.Increment(ctx, "missing", CounterViews, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(postKey("missing")), "increment must not create posts")
}

func TestRedisStoreToggleLike(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, samplePost("p1", "기타", time.Now())))

	likes, liked, err := store.ToggleLike(ctx, "p1", "kakao:1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, likes)

	likes, liked, err = store.ToggleLike(ctx, "p1", "kakao:2")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 2, likes)

	likes, liked, err = store.ToggleLike(ctx, "p1", "kakao:1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 1, likes)

	_, _, err = store.ToggleLike(ctx, "missing", "kakao:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreAddComment(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, samplePost("p1", "기타", time.Now())))

	c := Comment{ID: "c1", Content: "응원해요", Author: "익명의 별", AuthorID: "kakao:9", IsAnonymous: true, CreatedAt: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.AddComment(ctx, "p1", c))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, c, got.Comments[0])

	assert.ErrorIs(t, store.AddComment(ctx, "missing", c), ErrNotFound)
}

func ids(posts []Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
