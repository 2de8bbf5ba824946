package store

import (
	"sync"

	"social-network-client/internal/models"
)

// FeedSlice holds the public post feed. Posts are replaced wholesale
// only on initial load; likes and comments mutate in place via targeted
// reducers.
type FeedSlice struct {
	mu    sync.RWMutex
	posts []models.Post
}

func (s *FeedSlice) commit(f func([]models.Post) []models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = f(s.posts)
}

// Load replaces the feed with the server's full post list.
func (s *FeedSlice) Load(posts []models.Post) {
	s.commit(func([]models.Post) []models.Post {
		out := make([]models.Post, len(posts))
		copy(out, posts)
		return out
	})
}

// Add prepends a newly created post, deduplicated by id against the
// optimistic local copy.
func (s *FeedSlice) Add(post models.Post) {
	s.commit(func(prev []models.Post) []models.Post {
		for i, p := range prev {
			if p.ID == post.ID {
				out := make([]models.Post, len(prev))
				copy(out, prev)
				out[i] = post
				return out
			}
		}
		return append([]models.Post{post}, prev...)
	})
}

// Like adds userID to the post's like set.
func (s *FeedSlice) Like(postID, userID string) Result {
	var res Result
	s.commit(func(prev []models.Post) []models.Post {
		var next []models.Post
		next, res = ApplyLike(prev, postID, userID)
		return next
	})
	return res
}

// Unlike removes userID from the post's like set.
func (s *FeedSlice) Unlike(postID, userID string) Result {
	var res Result
	s.commit(func(prev []models.Post) []models.Post {
		var next []models.Post
		next, res = ApplyUnlike(prev, postID, userID)
		return next
	})
	return res
}

// Comment appends a comment to the post.
func (s *FeedSlice) Comment(postID string, comment models.Comment) Result {
	var res Result
	s.commit(func(prev []models.Post) []models.Post {
		var next []models.Post
		next, res = ApplyComment(prev, postID, comment)
		return next
	})
	return res
}

// Posts returns a snapshot of the feed.
func (s *FeedSlice) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// ApplyLike adds userID to the like set of the post with postID. Likes
// are a set: re-applying the same like leaves the state unchanged. A
// missing post is a no-op reported as NotFound. Inputs are not mutated.
func ApplyLike(existing []models.Post, postID, userID string) ([]models.Post, Result) {
	for i, post := range existing {
		if post.ID != postID {
			continue
		}
		for _, id := range post.Likes {
			if id == userID {
				return existing, Applied
			}
		}
		out := make([]models.Post, len(existing))
		copy(out, existing)
		likes := make([]string, len(post.Likes), len(post.Likes)+1)
		copy(likes, post.Likes)
		out[i].Likes = append(likes, userID)
		return out, Applied
	}
	return existing, NotFound
}

// ApplyUnlike removes userID from the like set of the post with postID.
// Removing an absent like or targeting a missing post is a no-op.
func ApplyUnlike(existing []models.Post, postID, userID string) ([]models.Post, Result) {
	for i, post := range existing {
		if post.ID != postID {
			continue
		}
		likes := make([]string, 0, len(post.Likes))
		for _, id := range post.Likes {
			if id != userID {
				likes = append(likes, id)
			}
		}
		if len(likes) == len(post.Likes) {
			return existing, Applied
		}
		out := make([]models.Post, len(existing))
		copy(out, existing)
		out[i].Likes = likes
		return out, Applied
	}
	return existing, NotFound
}

// ApplyComment appends a comment to the post with postID. A missing
// post is a no-op reported as NotFound.
func ApplyComment(existing []models.Post, postID string, comment models.Comment) ([]models.Post, Result) {
	for i, post := range existing {
		if post.ID != postID {
			continue
		}
		out := make([]models.Post, len(existing))
		copy(out, existing)
		comments := make([]models.Comment, len(post.Comments), len(post.Comments)+1)
		copy(comments, post.Comments)
		out[i].Comments = append(comments, comment)
		return out, Applied
	}
	return existing, NotFound
}
