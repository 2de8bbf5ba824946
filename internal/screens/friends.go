package screens

import (
	"fmt"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/store"
)

// FriendsScreen binds the friends and requests lists on the signed-in
// user's record.
type FriendsScreen struct {
	store    *store.Store
	ch       *channel.Channel
	notifier Notifier
}

// NewFriendsScreen creates the friends screen binding.
func NewFriendsScreen(st *store.Store, ch *channel.Channel, notifier Notifier) *FriendsScreen {
	return &FriendsScreen{store: st, ch: ch, notifier: notifier}
}

// Accept accepts a pending friend request. The sender moves from the
// requests list to the friends list optimistically; the server pushes
// the refreshed user record as confirmation.
func (f *FriendsScreen) Accept(senderID string) error {
	self, ok := f.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}

	f.store.Auth.AcceptFriend(senderID, self.ID)
	if err := f.ch.Emit(channel.EventAcceptFriend, channel.FriendRequest{
		Receiver: self.ID,
		Sender:   senderID,
	}); err != nil {
		return err
	}
	f.notifier.Notify(NotifySuccess, "Friend request accepted")
	return nil
}

// Reject declines a pending friend request.
func (f *FriendsScreen) Reject(senderID string) error {
	self, ok := f.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}

	f.store.Auth.RejectFriend(senderID)
	if err := f.ch.Emit(channel.EventRejectFriend, channel.FriendRequest{
		Receiver: self.ID,
		Sender:   senderID,
	}); err != nil {
		return err
	}
	f.notifier.Notify(NotifyError, "Friend request rejected")
	return nil
}

// Unfriend removes an existing friend.
func (f *FriendsScreen) Unfriend(friendID string) error {
	self, ok := f.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}

	f.store.Auth.Unfriend(friendID)
	return f.ch.Emit(channel.EventUnfriendUser, channel.FriendRequest{
		Receiver: self.ID,
		Sender:   friendID,
	})
}

// Render projects the pending requests and the friends list.
func (f *FriendsScreen) Render() (requests, friends []models.User) {
	self, ok := f.store.Auth.User()
	if !ok {
		return nil, nil
	}
	return self.Requests, self.Friends
}
