package screens

import (
	"context"
	"strings"
	"testing"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike(t *testing.T) {
	st, ch := newFixture()
	f := NewFeedScreen(st, ch, nil, NopNotifier{})
	st.Feed.Load([]models.Post{{ID: "p1", Likes: []string{}}})

	// First toggle likes
	require.NoError(t, f.ToggleLike("p1"))
	assert.Equal(t, []string{"me"}, st.Feed.Posts()[0].Likes)

	// Server confirmation with the same ids must not double-count
	st.Feed.Like("p1", "me")
	assert.Equal(t, []string{"me"}, st.Feed.Posts()[0].Likes)

	// Second toggle unlikes
	require.NoError(t, f.ToggleLike("p1"))
	assert.Empty(t, st.Feed.Posts()[0].Likes)
}

func TestAddComment(t *testing.T) {
	st, ch := newFixture()
	f := NewFeedScreen(st, ch, nil, NopNotifier{})
	st.Feed.Load([]models.Post{{ID: "p1"}})

	require.NoError(t, f.AddComment("p1", "nice"))

	// No optimistic copy: the comment arrives through the broadcast only
	assert.Empty(t, st.Feed.Posts()[0].Comments)

	st.Feed.Comment("p1", models.Comment{User: models.User{ID: "me"}, Text: "nice", Timestamp: 5})
	posts := st.Feed.Posts()
	require.Len(t, posts[0].Comments, 1)
	assert.Equal(t, "nice", posts[0].Comments[0].Text)
	assert.Equal(t, "me", posts[0].Comments[0].User.ID)
}

func TestAddCommentRequiresUser(t *testing.T) {
	st := store.New()
	f := NewFeedScreen(st, channel.New("ws://localhost:0/ws", "t"), nil, NopNotifier{})
	st.Feed.Load([]models.Post{{ID: "p1"}})

	assert.Error(t, f.AddComment("p1", "nice"))
}

func TestCreatePost(t *testing.T) {
	st, ch := newFixture()
	f := NewFeedScreen(st, ch, nil, NopNotifier{})

	require.NoError(t, f.CreatePost("hello world"))

	posts := st.Feed.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, models.TypeText, posts[0].Type)
	assert.Equal(t, "hello world", posts[0].Content)
	assert.Equal(t, "me", posts[0].Owner.ID)
	assert.NotEmpty(t, posts[0].ID)
}

func TestCreateMediaPostUploadFailure(t *testing.T) {
	st, ch := newFixture()
	notifier := &testNotifier{}
	f := NewFeedScreen(st, ch, failingUploader(t), notifier)

	err := f.CreateMediaPost(context.Background(), "caption", "clip.mp4", "video/mp4", strings.NewReader("mp4"))

	require.Error(t, err)
	assert.Empty(t, st.Feed.Posts())
	assert.Equal(t, 1, notifier.count())
}

func TestCreateMediaPost(t *testing.T) {
	st, ch := newFixture()
	f := NewFeedScreen(st, ch, workingUploader(t, "http://files/clip.mp4"), NopNotifier{})

	require.NoError(t, f.CreateMediaPost(context.Background(), "caption", "clip.mp4", "video/mp4", strings.NewReader("mp4")))

	posts := st.Feed.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, models.TypeVideo, posts[0].Type)
	assert.Equal(t, "http://files/clip.mp4", posts[0].Content)
	assert.Equal(t, "caption", posts[0].Text)
}

func TestFeedRenderNewestFirst(t *testing.T) {
	st, ch := newFixture()
	f := NewFeedScreen(st, ch, nil, NopNotifier{})
	st.Feed.Load([]models.Post{
		{ID: "old", Timestamp: 10},
		{ID: "new", Timestamp: 30},
		{ID: "mid", Timestamp: 20},
	})

	rendered := f.Render()
	require.Len(t, rendered, 3)
	assert.Equal(t, "new", rendered[0].ID)
	assert.Equal(t, "mid", rendered[1].ID)
	assert.Equal(t, "old", rendered[2].ID)
}

func TestFeedCommentsNewestFirst(t *testing.T) {
	st, ch := newFixture()
	f := NewFeedScreen(st, ch, nil, NopNotifier{})

	post := models.Post{Comments: []models.Comment{
		{Text: "first", Timestamp: 1},
		{Text: "latest", Timestamp: 9},
		{Text: "middle", Timestamp: 5},
	}}

	comments := f.Comments(post)
	assert.Equal(t, "latest", comments[0].Text)
	assert.Equal(t, "first", comments[2].Text)
	// The post itself keeps its order
	assert.Equal(t, "first", post.Comments[0].Text)
}
