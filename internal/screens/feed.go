package screens

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/store"
	"social-network-client/internal/upload"

	"github.com/google/uuid"
)

// FeedScreen binds the public post feed: post creation, likes and
// comments.
type FeedScreen struct {
	store    *store.Store
	ch       *channel.Channel
	uploader *upload.Uploader
	notifier Notifier
}

// NewFeedScreen creates the feed screen binding.
func NewFeedScreen(st *store.Store, ch *channel.Channel, uploader *upload.Uploader, notifier Notifier) *FeedScreen {
	return &FeedScreen{store: st, ch: ch, uploader: uploader, notifier: notifier}
}

// Refresh asks the server to push the full post feed.
func (f *FeedScreen) Refresh() error {
	return f.ch.Emit(channel.EventGetPosts, struct{}{})
}

// ToggleLike likes the post if the signed-in user has not liked it yet,
// and unlikes it otherwise. The like set is updated optimistically; the
// broadcast confirmation is idempotent against it.
func (f *FeedScreen) ToggleLike(postID string) error {
	self, ok := f.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}

	liked := false
	for _, post := range f.store.Feed.Posts() {
		if post.ID != postID {
			continue
		}
		for _, id := range post.Likes {
			if id == self.ID {
				liked = true
				break
			}
		}
		break
	}

	req := channel.LikeRequest{PostID: postID, UserID: self.ID}
	if liked {
		f.store.Feed.Unlike(postID, self.ID)
		return f.ch.Emit(channel.EventUnlikePost, req)
	}
	f.store.Feed.Like(postID, self.ID)
	return f.ch.Emit(channel.EventLikePost, req)
}

// AddComment submits a comment on the post. Comments carry no client
// id, so there is no optimistic append; the comment lands through the
// server broadcast, once.
func (f *FeedScreen) AddComment(postID, text string) error {
	self, ok := f.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}

	return f.ch.Emit(channel.EventCommentPost, channel.CommentRequest{
		PostID: postID,
		UserID: self.ID,
		Text:   text,
	})
}

// CreatePost publishes a text post.
func (f *FeedScreen) CreatePost(text string) error {
	return f.create(models.Post{
		Type:    models.TypeText,
		Content: text,
	})
}

// CreateMediaPost uploads the file and publishes a media post carrying
// the stored URL and an optional caption. A failed upload aborts the
// post without touching the store.
func (f *FeedScreen) CreateMediaPost(ctx context.Context, text, filename, mimeType string, file io.Reader) error {
	url, err := f.uploader.Upload(ctx, filename, file)
	if err != nil {
		f.notifier.Notify(NotifyError, err.Error())
		return err
	}
	return f.create(models.Post{
		Type:    mediaTypeOf(mimeType),
		Content: url,
		Text:    text,
	})
}

func (f *FeedScreen) create(post models.Post) error {
	self, ok := f.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}

	post.ID = uuid.New().String()
	post.Owner = self
	post.Likes = []string{}
	post.Comments = []models.Comment{}
	post.Timestamp = time.Now().UnixMilli()

	f.store.Feed.Add(post)
	return f.ch.Emit(channel.EventCreatePost, post)
}

// Render projects the feed, newest post first.
func (f *FeedScreen) Render() []models.Post {
	posts := f.store.Feed.Posts()
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp > posts[j].Timestamp
	})
	return posts
}

// Comments projects a post's comments, newest first.
func (f *FeedScreen) Comments(post models.Post) []models.Comment {
	out := make([]models.Comment, len(post.Comments))
	copy(out, post.Comments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}
