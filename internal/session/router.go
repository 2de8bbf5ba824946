// Package session ties a channel to a store for the lifetime of a
// signed-in session: it reads the user identity out of the session token
// and routes every inbound channel event into the matching reducer.
package session

import (
	"encoding/json"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/store"

	"github.com/rs/zerolog/log"
)

// Route registers the inbound event handlers. Must be called before the
// channel connects so no early push is missed.
func Route(ch *channel.Channel, st *store.Store) {
	ch.On(channel.EventMessagesResponse, func(payload json.RawMessage) {
		var msgs []models.ChatMessage
		if err := json.Unmarshal(payload, &msgs); err != nil {
			log.Error().Err(err).Msg("Failed to parse message history")
			return
		}
		st.Chat.ApplyIncoming(msgs)
	})

	ch.On(channel.EventMessageResponse, func(payload json.RawMessage) {
		var msg models.ChatMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Error().Err(err).Msg("Failed to parse message")
			return
		}
		st.Chat.Add(msg)
	})

	ch.On(channel.EventPostsResponse, func(payload json.RawMessage) {
		var posts []models.Post
		if err := json.Unmarshal(payload, &posts); err != nil {
			log.Error().Err(err).Msg("Failed to parse post feed")
			return
		}
		st.Feed.Load(posts)
	})

	ch.On(channel.EventPostCreated, func(payload json.RawMessage) {
		var post models.Post
		if err := json.Unmarshal(payload, &post); err != nil {
			log.Error().Err(err).Msg("Failed to parse post")
			return
		}
		st.Feed.Add(post)
	})

	ch.On(channel.EventLikeUpdate, func(payload json.RawMessage) {
		var upd channel.LikeRequest
		if err := json.Unmarshal(payload, &upd); err != nil {
			log.Error().Err(err).Msg("Failed to parse like update")
			return
		}
		if st.Feed.Like(upd.PostID, upd.UserID) == store.NotFound {
			log.Debug().Str("post_id", upd.PostID).Msg("Like update for unknown post")
		}
	})

	ch.On(channel.EventUnlikeUpdate, func(payload json.RawMessage) {
		var upd channel.LikeRequest
		if err := json.Unmarshal(payload, &upd); err != nil {
			log.Error().Err(err).Msg("Failed to parse unlike update")
			return
		}
		if st.Feed.Unlike(upd.PostID, upd.UserID) == store.NotFound {
			log.Debug().Str("post_id", upd.PostID).Msg("Unlike update for unknown post")
		}
	})

	ch.On(channel.EventCommentUpdate, func(payload json.RawMessage) {
		var upd channel.CommentUpdate
		if err := json.Unmarshal(payload, &upd); err != nil {
			log.Error().Err(err).Msg("Failed to parse comment update")
			return
		}
		if st.Feed.Comment(upd.PostID, upd.Comment) == store.NotFound {
			log.Debug().Str("post_id", upd.PostID).Msg("Comment update for unknown post")
		}
	})

	ch.On(channel.EventProfileResponse, func(payload json.RawMessage) {
		var user models.User
		if err := json.Unmarshal(payload, &user); err != nil {
			log.Error().Err(err).Msg("Failed to parse profile")
			return
		}
		st.Profile.Set(user)
	})

	ch.On(channel.EventProfileUpdated, func(payload json.RawMessage) {
		var user models.User
		if err := json.Unmarshal(payload, &user); err != nil {
			log.Error().Err(err).Msg("Failed to parse profile update")
			return
		}
		st.Profile.Set(user)
		// Keep the signed-in record in step when it is our own profile
		if self, ok := st.Auth.User(); ok && self.ID == user.ID {
			st.Auth.Update(store.ProfilePatch{
				DisplayName: user.DisplayName,
				Email:       user.Email,
				PhoneNumber: user.PhoneNumber,
				DOB:         user.DOB,
				Address:     user.Address,
				PhotoURL:    user.PhotoURL,
				Cover:       user.Cover,
			})
		}
	})

	ch.On(channel.EventUserUpdate, func(payload json.RawMessage) {
		var user models.User
		if err := json.Unmarshal(payload, &user); err != nil {
			log.Error().Err(err).Msg("Failed to parse user update")
			return
		}
		st.Auth.SetUser(user)
	})

	ch.On(channel.EventError, func(payload json.RawMessage) {
		var e channel.ErrorPayload
		if err := json.Unmarshal(payload, &e); err != nil {
			log.Error().Err(err).Msg("Failed to parse server error")
			return
		}
		log.Warn().Str("message", e.Message).Msg("Server reported error")
	})
}
