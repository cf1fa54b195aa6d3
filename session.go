package client

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/oklog/ulid/v2"
)

const SessionSendBufferSize = 1

type SessionSettings struct {
	WsHandshakeTimeout time.Duration
	PingTimeout        time.Duration
	WriteTimeout       time.Duration
	ReadTimeout        time.Duration
	ReconnectPolicy    *ReconnectPolicy
}

func DefaultSessionSettings() *SessionSettings {
	return &SessionSettings{
		WsHandshakeTimeout: 2 * time.Second,
		PingTimeout:        15 * time.Second,
		WriteTimeout:       5 * time.Second,
		ReadTimeout:        60 * time.Second,
		ReconnectPolicy:    DefaultReconnectPolicy(),
	}
}

// Session owns the one logical connection to the backend for the life of the
// page. Requests from every store multiplex over it and inbound messages fan
// out through the dispatcher in transport order. Send is fire-and-forget:
// there is no buffering while disconnected and no delivery guarantee beyond
// "written if connected now".
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	connectUrl string
	instanceId string
	dispatcher *Dispatcher

	settings *SessionSettings

	openOnce sync.Once
	done     chan struct{}

	stateLock sync.Mutex
	send      chan []byte
	// cumulative for the session lifetime
	failureCount int
}

func NewSessionWithDefaults(
	ctx context.Context,
	connectUrl string,
	dispatcher *Dispatcher,
) *Session {
	return NewSession(ctx, connectUrl, dispatcher, DefaultSessionSettings())
}

func NewSession(
	ctx context.Context,
	connectUrl string,
	dispatcher *Dispatcher,
	settings *SessionSettings,
) *Session {
	cancelCtx, cancel := context.WithCancel(ctx)
	return &Session{
		ctx:        cancelCtx,
		cancel:     cancel,
		connectUrl: connectUrl,
		instanceId: ulid.Make().String(),
		dispatcher: dispatcher,
		settings:   settings,
		done:       make(chan struct{}),
	}
}

func (self *Session) InstanceId() string {
	return self.instanceId
}

func (self *Session) Dispatcher() *Dispatcher {
	return self.dispatcher
}

// Open establishes the transport on first call. Later calls share the same
// underlying connection rather than opening duplicates.
func (self *Session) Open() {
	self.openOnce.Do(func() {
		go self.run()
	})
}

// Done is closed when the session will never deliver another message, either
// because retries are exhausted or because the consumer tore it down.
func (self *Session) Done() <-chan struct{} {
	return self.done
}

func (self *Session) Connected() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.send != nil
}

func (self *Session) FailureCount() int {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.failureCount
}

// Send encodes and transmits one request over the current transport. If no
// transport is connected the request is dropped and Send returns false.
func (self *Session) Send(op UserOperation, form any) bool {
	b, err := EncodeRequest(op, form)
	if err != nil {
		glog.Infof("[s]%s encode %s error = %s\n", self.instanceId, op, err)
		return false
	}

	self.stateLock.Lock()
	send := self.send
	self.stateLock.Unlock()

	if send == nil {
		glog.Infof("[s]%s drop %s (not connected)\n", self.instanceId, op)
		return false
	}

	select {
	case <-self.ctx.Done():
		return false
	case send <- b:
		glog.V(2).Infof("[s]%s-> %s\n", self.instanceId, op)
		return true
	case <-time.After(self.settings.WriteTimeout):
		glog.Infof("[s]%s drop %s (backpressure)\n", self.instanceId, op)
		return false
	}
}

func (self *Session) run() {
	defer func() {
		self.cancel()
		close(self.done)
	}()

	dialer := &websocket.Dialer{
		HandshakeTimeout: self.settings.WsHandshakeTimeout,
	}

	for {
		ws, _, err := dialer.DialContext(self.ctx, self.connectUrl, nil)
		if err != nil {
			glog.Infof("[s]%s connect error = %s\n", self.instanceId, err)
			if !self.delayReconnect() {
				return
			}
			continue
		}
		glog.V(1).Infof("[s]%s connected\n", self.instanceId)

		self.handle(ws)

		select {
		case <-self.ctx.Done():
			return
		default:
		}
		if !self.delayReconnect() {
			return
		}
	}
}

// delayReconnect counts one transport failure and waits out the reconnect
// delay. It returns false when the policy has given up or the session was
// torn down.
func (self *Session) delayReconnect() bool {
	self.stateLock.Lock()
	self.failureCount += 1
	failureCount := self.failureCount
	self.stateLock.Unlock()

	delay, retry := self.settings.ReconnectPolicy.Next(failureCount)
	if !retry {
		glog.Infof("[s]%s give up after %d failures\n", self.instanceId, failureCount)
		return false
	}

	reconnect := NewReconnect(delay)
	select {
	case <-self.ctx.Done():
		return false
	case <-reconnect.After():
		return true
	}
}

// handle runs one connection to completion: a send pump with ping keepalive
// and a read loop feeding the dispatcher. It returns after both have stopped,
// so the next connection can never dispatch concurrently with this one.
func (self *Session) handle(ws *websocket.Conn) {
	defer ws.Close()

	handleCtx, handleCancel := context.WithCancel(self.ctx)
	defer handleCancel()

	send := make(chan []byte, SessionSendBufferSize)

	self.stateLock.Lock()
	self.send = send
	self.stateLock.Unlock()

	defer func() {
		self.stateLock.Lock()
		self.send = nil
		self.stateLock.Unlock()
		// note `send` is left open. A Send racing the teardown writes into
		// the orphaned buffer, which is the documented drop behavior.
	}()

	go func() {
		defer handleCancel()

		for {
			select {
			case <-handleCtx.Done():
				return
			case b, ok := <-send:
				if !ok {
					return
				}
				ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
				if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
					glog.Infof("[ss]%s-> error = %s\n", self.instanceId, err)
					return
				}
			case <-time.After(self.settings.PingTimeout):
				ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	readDone := make(chan struct{})
	go func() {
		defer func() {
			handleCancel()
			close(readDone)
		}()

		for {
			select {
			case <-handleCtx.Done():
				return
			default:
			}

			ws.SetReadDeadline(time.Now().Add(self.settings.ReadTimeout))
			messageType, b, err := ws.ReadMessage()
			if err != nil {
				glog.Infof("[sr]%s<- error = %s\n", self.instanceId, err)
				return
			}

			switch messageType {
			case websocket.TextMessage, websocket.BinaryMessage:
				msg, err := DecodeMessage(b)
				if err != nil {
					glog.Infof("[sr]%s<- decode error = %s\n", self.instanceId, err)
					continue
				}
				glog.V(2).Infof("[sr]%s<- %s\n", self.instanceId, msg.RawOp)
				self.dispatcher.Dispatch(msg)
			default:
			}
		}
	}()

	select {
	case <-handleCtx.Done():
	}
	// unblock the read loop, then wait for any in-flight dispatch before the
	// next connection can start
	ws.Close()
	select {
	case <-readDone:
	}
}

func (self *Session) Close() {
	self.cancel()
}
