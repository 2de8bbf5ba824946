package stubserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/screens"
	"social-network-client/internal/session"
	"social-network-client/internal/store"
	"social-network-client/internal/stubserver"
	"social-network-client/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

var (
	alice = models.User{ID: "alice", Email: "alice@x", DisplayName: "Alice"}
	bob   = models.User{ID: "bob", Email: "bob@x", DisplayName: "Bob"}
	carol = models.User{ID: "carol", Email: "carol@x", DisplayName: "Carol"}
)

type fixture struct {
	srv *stubserver.Server
	ts  *httptest.Server
}

func newStubFixture(t *testing.T) *fixture {
	t.Helper()
	srv := stubserver.New(stubserver.NewState(), "test-secret")

	state := srv.State()
	state.AddUser(alice)
	state.AddUser(bob)
	state.AddUser(carol)
	state.SetFriends(alice.ID, bob.ID)
	state.SetFriends(bob.ID, alice.ID)
	state.SetRequests(alice.ID, carol.ID)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &fixture{srv: srv, ts: ts}
}

// client is a full client session: a store wired to a connected channel.
type client struct {
	st *store.Store
	ch *channel.Channel
}

func (f *fixture) dial(t *testing.T, userID string) *client {
	t.Helper()

	token, err := f.srv.GenerateToken(userID)
	require.NoError(t, err)

	st := store.New()
	ch := channel.New("ws"+strings.TrimPrefix(f.ts.URL, "http")+"/ws", token)
	session.Route(ch, st)

	require.NoError(t, ch.Connect(context.Background()))
	t.Cleanup(ch.Close)

	// The server pushes the user record on connect
	require.Eventually(t, func() bool {
		_, ok := st.Auth.User()
		return ok
	}, waitFor, tick)

	return &client{st: st, ch: ch}
}

func TestMessageEchoAndRelay(t *testing.T) {
	f := newStubFixture(t)
	a := f.dial(t, alice.ID)
	b := f.dial(t, bob.ID)

	chatA := screens.NewChatScreen(a.st, a.ch, nil, screens.NopNotifier{})
	require.NoError(t, chatA.SelectConversation(bob.Email))
	require.NoError(t, chatA.Send("hello bob"))

	// Relay reaches Bob
	require.Eventually(t, func() bool {
		return len(b.st.Chat.Messages()) == 1
	}, waitFor, tick)

	chatB := screens.NewChatScreen(b.st, b.ch, nil, screens.NopNotifier{})
	require.NoError(t, chatB.SelectConversation(alice.Email))
	rendered := chatB.Render()
	require.Len(t, rendered, 1)
	assert.Equal(t, "hello bob", rendered[0].Message)

	// The echo collapses into Alice's optimistic copy: exactly one entry
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, a.st.Chat.Messages(), 1)
}

func TestReconnectReplacesConnection(t *testing.T) {
	f := newStubFixture(t)

	// Alice signs in twice; the first connection is closed in favor of the
	// second, and its handler unwinding must leave the second one live
	f.dial(t, alice.ID)
	a2 := f.dial(t, alice.ID)
	b := f.dial(t, bob.ID)

	chatB := screens.NewChatScreen(b.st, b.ch, nil, screens.NopNotifier{})
	require.NoError(t, chatB.SelectConversation(alice.Email))
	require.NoError(t, chatB.Send("still there?"))

	require.Eventually(t, func() bool {
		return len(a2.st.Chat.Messages()) == 1
	}, waitFor, tick)
	assert.Equal(t, "still there?", a2.st.Chat.Messages()[0].Message)
}

func TestConversationHistoryPush(t *testing.T) {
	f := newStubFixture(t)
	f.srv.State().SaveMessage(models.ChatMessage{
		ID: "m1", Sender: alice.Email, Receiver: bob.Email, Message: "earlier", Timestamp: 100,
	})

	a := f.dial(t, alice.ID)
	chatA := screens.NewChatScreen(a.st, a.ch, nil, screens.NopNotifier{})
	require.NoError(t, chatA.SelectConversation(bob.Email))

	require.Eventually(t, func() bool {
		return len(chatA.Render()) == 1
	}, waitFor, tick)
	assert.Equal(t, "earlier", chatA.Render()[0].Message)
}

func TestLikeBroadcastIsIdempotent(t *testing.T) {
	f := newStubFixture(t)
	f.srv.State().SavePost(models.Post{ID: "p1", Owner: bob, Type: models.TypeText, Content: "post", Timestamp: 1})

	a := f.dial(t, alice.ID)
	b := f.dial(t, bob.ID)

	// Feed arrives on connect
	require.Eventually(t, func() bool { return len(a.st.Feed.Posts()) == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return len(b.st.Feed.Posts()) == 1 }, waitFor, tick)

	feedA := screens.NewFeedScreen(a.st, a.ch, nil, screens.NopNotifier{})
	require.NoError(t, feedA.ToggleLike("p1"))

	// Bob sees the like
	require.Eventually(t, func() bool {
		posts := b.st.Feed.Posts()
		return len(posts) == 1 && len(posts[0].Likes) == 1
	}, waitFor, tick)

	// Alice's optimistic like plus the broadcast confirmation stay one entry
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{alice.ID}, a.st.Feed.Posts()[0].Likes)
}

func TestCommentBroadcast(t *testing.T) {
	f := newStubFixture(t)
	f.srv.State().SavePost(models.Post{ID: "p1", Owner: bob, Type: models.TypeText, Content: "post", Timestamp: 1})

	a := f.dial(t, alice.ID)
	b := f.dial(t, bob.ID)
	require.Eventually(t, func() bool { return len(a.st.Feed.Posts()) == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return len(b.st.Feed.Posts()) == 1 }, waitFor, tick)

	feedA := screens.NewFeedScreen(a.st, a.ch, nil, screens.NopNotifier{})
	require.NoError(t, feedA.AddComment("p1", "great post"))

	require.Eventually(t, func() bool {
		posts := b.st.Feed.Posts()
		return len(posts) == 1 && len(posts[0].Comments) == 1
	}, waitFor, tick)
	assert.Equal(t, "great post", b.st.Feed.Posts()[0].Comments[0].Text)
	assert.Equal(t, alice.ID, b.st.Feed.Posts()[0].Comments[0].User.ID)

	// The broadcast goes to everyone, Alice included. Her copy of the
	// post must carry the comment exactly once.
	require.Eventually(t, func() bool {
		posts := a.st.Feed.Posts()
		return len(posts) == 1 && len(posts[0].Comments) > 0
	}, waitFor, tick)
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, a.st.Feed.Posts()[0].Comments, 1)
}

func TestCreatePostBroadcast(t *testing.T) {
	f := newStubFixture(t)
	a := f.dial(t, alice.ID)
	b := f.dial(t, bob.ID)

	feedA := screens.NewFeedScreen(a.st, a.ch, nil, screens.NopNotifier{})
	require.NoError(t, feedA.CreatePost("fresh off the press"))

	require.Eventually(t, func() bool {
		return len(b.st.Feed.Posts()) == 1
	}, waitFor, tick)
	assert.Equal(t, "fresh off the press", b.st.Feed.Posts()[0].Content)

	// The broadcast back to Alice collapses into her optimistic copy
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, a.st.Feed.Posts(), 1)
}

func TestFriendAccept(t *testing.T) {
	f := newStubFixture(t)
	a := f.dial(t, alice.ID)
	c := f.dial(t, carol.ID)

	user, _ := a.st.Auth.User()
	require.Len(t, user.Requests, 1)

	friendsA := screens.NewFriendsScreen(a.st, a.ch, screens.NopNotifier{})
	require.NoError(t, friendsA.Accept(carol.ID))

	// Server confirmation reaches both sides
	require.Eventually(t, func() bool {
		u, _ := a.st.Auth.User()
		return len(u.Requests) == 0 && len(u.Friends) == 2
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		u, _ := c.st.Auth.User()
		return len(u.Friends) == 1 && u.Friends[0].ID == alice.ID
	}, waitFor, tick)
}

func TestFriendRejectAndUnfriend(t *testing.T) {
	f := newStubFixture(t)
	a := f.dial(t, alice.ID)

	friendsA := screens.NewFriendsScreen(a.st, a.ch, screens.NopNotifier{})
	require.NoError(t, friendsA.Reject(carol.ID))
	require.NoError(t, friendsA.Unfriend(bob.ID))

	require.Eventually(t, func() bool {
		u, _ := a.st.Auth.User()
		return len(u.Requests) == 0 && len(u.Friends) == 0
	}, waitFor, tick)

	state, _ := f.srv.State().ResolveUser(bob.ID)
	assert.Empty(t, state.Friends)
}

func TestProfileLoadAndSave(t *testing.T) {
	f := newStubFixture(t)
	a := f.dial(t, alice.ID)

	profileA := screens.NewProfileScreen(a.st, a.ch, nil, screens.NopNotifier{})
	require.NoError(t, profileA.Load(""))

	require.Eventually(t, func() bool {
		_, ok := profileA.Draft()
		return ok
	}, waitFor, tick)

	draft, _ := profileA.Draft()
	draft.DisplayName = "Alice In Chains"
	draft.Address = "Seattle"
	require.NoError(t, profileA.Save(draft))

	// Persisted server-side and broadcast back
	require.Eventually(t, func() bool {
		u, ok := f.srv.State().ResolveUser(alice.ID)
		return ok && u.DisplayName == "Alice In Chains"
	}, waitFor, tick)

	data, _ := profileA.Render()
	assert.Equal(t, "Seattle", data.Address)

	// The signed-in record catches up through the broadcast, not through
	// the screen
	require.Eventually(t, func() bool {
		self, ok := a.st.Auth.User()
		return ok && self.DisplayName == "Alice In Chains"
	}, waitFor, tick)
}

func TestUploadRoundTrip(t *testing.T) {
	f := newStubFixture(t)

	uploader := upload.New(f.ts.URL + "/upload")
	url, err := uploader.Upload(context.Background(), "pic.jpg", strings.NewReader("picture bytes"))
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "picture bytes", string(data))
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	f := newStubFixture(t)

	resp, err := http.Get(f.ts.URL + "/ws?token=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2, err := http.Get(f.ts.URL + "/ws")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}
