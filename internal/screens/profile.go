package screens

import (
	"context"
	"fmt"
	"io"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/store"
	"social-network-client/internal/upload"
)

// Profile image fields
const (
	PhotoField = "photoURL"
	CoverField = "cover"
)

// ProfileScreen binds the profile editor: a form-local draft of the
// editable fields, committed only on an explicit save.
type ProfileScreen struct {
	store    *store.Store
	ch       *channel.Channel
	uploader *upload.Uploader
	notifier Notifier
}

// NewProfileScreen creates the profile screen binding.
func NewProfileScreen(st *store.Store, ch *channel.Channel, uploader *upload.Uploader, notifier Notifier) *ProfileScreen {
	return &ProfileScreen{store: st, ch: ch, uploader: uploader, notifier: notifier}
}

// Load asks the server for a profile record. An empty id loads the
// signed-in user's own profile.
func (p *ProfileScreen) Load(userID string) error {
	if userID == "" {
		self, ok := p.store.Auth.User()
		if !ok {
			return fmt.Errorf("no signed-in user")
		}
		userID = self.ID
	}
	return p.ch.Emit(channel.EventGetProfile, userID)
}

// Draft returns a fresh form draft populated from the loaded profile.
func (p *ProfileScreen) Draft() (models.ProfileDraft, bool) {
	data, ok := p.store.Profile.Data()
	if !ok {
		return models.ProfileDraft{}, false
	}
	return models.ProfileDraft{
		DisplayName: data.DisplayName,
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		DOB:         data.DOB,
		Address:     data.Address,
	}, true
}

// Save commits the draft: the full profile object is sent to the server
// and merged into the local record optimistically.
func (p *ProfileScreen) Save(draft models.ProfileDraft) error {
	data, ok := p.store.Profile.Data()
	if !ok {
		return fmt.Errorf("no profile loaded")
	}

	if err := p.ch.Emit(channel.EventUpdateProfile, channel.ProfileUpdate{
		ID:          data.ID,
		DisplayName: draft.DisplayName,
		Email:       draft.Email,
		PhoneNumber: draft.PhoneNumber,
		DOB:         draft.DOB,
		Address:     draft.Address,
	}); err != nil {
		return err
	}

	p.store.Profile.Update(store.ProfilePatch{
		DisplayName: draft.DisplayName,
		Email:       draft.Email,
		PhoneNumber: draft.PhoneNumber,
		DOB:         draft.DOB,
		Address:     draft.Address,
	})
	p.notifier.Notify(NotifySuccess, "Profile updated")
	return nil
}

// UpdateImage uploads a new profile or cover image and commits the
// stored URL. A failed upload aborts the save; nothing is committed.
func (p *ProfileScreen) UpdateImage(ctx context.Context, field, filename string, file io.Reader) error {
	if field != PhotoField && field != CoverField {
		return fmt.Errorf("unknown profile image field %q", field)
	}
	data, ok := p.store.Profile.Data()
	if !ok {
		return fmt.Errorf("no profile loaded")
	}

	url, err := p.uploader.Upload(ctx, filename, file)
	if err != nil {
		p.notifier.Notify(NotifyError, err.Error())
		return err
	}

	update := channel.ProfileUpdate{
		ID:          data.ID,
		DisplayName: data.DisplayName,
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		DOB:         data.DOB,
		Address:     data.Address,
	}
	patch := store.ProfilePatch{}
	if field == PhotoField {
		update.PhotoURL = url
		patch.PhotoURL = url
	} else {
		update.Cover = url
		patch.Cover = url
	}

	if err := p.ch.Emit(channel.EventUpdateProfile, update); err != nil {
		return err
	}

	// The signed-in record is not touched here: it follows through the
	// update-profile-response broadcast, like every other cross-slice effect.
	p.store.Profile.Update(patch)
	p.notifier.Notify(NotifySuccess, "Profile updated")
	return nil
}

// Render projects the loaded profile record.
func (p *ProfileScreen) Render() (models.User, bool) {
	return p.store.Profile.Data()
}
