package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/gorilla/websocket"

	"github.com/go-playground/assert/v2"
)

// one accepted backend connection that echoes received frames to a channel
type testBackend struct {
	server      *httptest.Server
	connections chan *websocket.Conn
	received    chan []byte
}

func newTestBackend() *testBackend {
	backend := &testBackend{
		connections: make(chan *websocket.Conn, 16),
		received:    make(chan []byte, 16),
	}

	upgrader := websocket.Upgrader{}
	backend.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		backend.connections <- ws
		for {
			_, b, err := ws.ReadMessage()
			if err != nil {
				return
			}
			backend.received <- b
		}
	}))

	return backend
}

func (self *testBackend) connectUrl() string {
	return "ws" + strings.TrimPrefix(self.server.URL, "http")
}

func (self *testBackend) nextConnection(t *testing.T) *websocket.Conn {
	select {
	case ws := <-self.connections:
		return ws
	case <-time.After(5 * time.Second):
		t.Fatalf("no connection")
		return nil
	}
}

func (self *testBackend) Close() {
	self.server.Close()
}

func TestSessionLoopback(t *testing.T) {
	backend := newTestBackend()
	defer backend.Close()

	dispatcher := NewDispatcher()
	listings := make(chan *GetPostsResponse, 16)
	dispatcher.AddMessageCallback(OpGetPosts, func(msg *Message) {
		listings <- msg.Payload.(*GetPostsResponse)
	})

	settings := DefaultSessionSettings()
	settings.ReconnectPolicy = &ReconnectPolicy{
		ReconnectTimeout:  50 * time.Millisecond,
		MaxReconnectCount: 10,
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := NewSession(cancelCtx, backend.connectUrl(), dispatcher, settings)
	defer session.Close()

	// nothing is sent before the first open; requests drop cleanly
	assert.Equal(t, false, session.Send(OpGetSite, nil))

	session.Open()
	ws := backend.nextConnection(t)

	// an unsolicited push flows through dispatch like any response
	err := ws.WriteMessage(websocket.TextMessage, []byte(`{"op":"GetPosts","posts":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`))
	assert.Equal(t, nil, err)

	select {
	case res := <-listings:
		assert.Equal(t, 2, len(res.Posts))
	case <-time.After(5 * time.Second):
		t.Fatalf("no listing delivered")
	}

	// outbound request reaches the backend with the op tag flattened in
	ok := session.Send(OpGetPosts, buildGetPosts(ListingTypeAll, SortTypeHot, 1))
	assert.Equal(t, true, ok)

	select {
	case b := <-backend.received:
		assert.Equal(t, "GetPosts", jsoniter.Get(b, "op").ToString())
		assert.Equal(t, 1, jsoniter.Get(b, "page").ToInt())
	case <-time.After(5 * time.Second):
		t.Fatalf("backend received nothing")
	}

	// a malformed frame and an unknown op must not kill the stream
	err = ws.WriteMessage(websocket.TextMessage, []byte(`not json`))
	assert.Equal(t, nil, err)
	err = ws.WriteMessage(websocket.TextMessage, []byte(`{"op":"SomeFutureOperation"}`))
	assert.Equal(t, nil, err)

	// drop the connection; the session must resubscribe and keep delivering
	ws.Close()
	ws = backend.nextConnection(t)

	err = ws.WriteMessage(websocket.TextMessage, []byte(`{"op":"GetPosts","posts":[{"id":3,"name":"c"}]}`))
	assert.Equal(t, nil, err)

	select {
	case res := <-listings:
		assert.Equal(t, 1, len(res.Posts))
		assert.Equal(t, 3, res.Posts[0].Id)
	case <-time.After(5 * time.Second):
		t.Fatalf("no listing after reconnect")
	}

	assert.Equal(t, 1, session.FailureCount())
}

func TestSessionOpenOnce(t *testing.T) {
	backend := newTestBackend()
	defer backend.Close()

	cancelCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := NewSessionWithDefaults(cancelCtx, backend.connectUrl(), NewDispatcher())
	defer session.Close()

	// multiple subscribers share one underlying connection
	session.Open()
	session.Open()
	session.Open()

	backend.nextConnection(t)

	select {
	case <-backend.connections:
		t.Fatalf("duplicate connection opened")
	case <-time.After(250 * time.Millisecond):
	}
}
