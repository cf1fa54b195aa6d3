package client

import (
	"sync"

	"github.com/golang/glog"
)

// makes a copy of the list on read so callbacks can unsubscribe from inside
// a callback without deadlocking
type CallbackList[T any] struct {
	mutex     sync.Mutex
	nextId    int
	ids       []int
	callbacks map[int]T
}

func NewCallbackList[T any]() *CallbackList[T] {
	return &CallbackList[T]{
		callbacks: map[int]T{},
	}
}

func (self *CallbackList[T]) Add(callback T) func() {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	callbackId := self.nextId
	self.nextId += 1
	self.ids = append(self.ids, callbackId)
	self.callbacks[callbackId] = callback

	return func() {
		self.remove(callbackId)
	}
}

func (self *CallbackList[T]) remove(callbackId int) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	for i, id := range self.ids {
		if id == callbackId {
			self.ids = append(self.ids[:i:i], self.ids[i+1:]...)
			break
		}
	}
	delete(self.callbacks, callbackId)
}

// in registration order
func (self *CallbackList[T]) Get() []T {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	callbacks := make([]T, 0, len(self.ids))
	for _, id := range self.ids {
		callbacks = append(callbacks, self.callbacks[id])
	}
	return callbacks
}

type MessageFunction func(msg *Message)
type ErrorFunction func(errorMessage string)

// Dispatcher routes each decoded inbound message to the handlers registered
// for its operation tag. There are no correlation ids on the wire: a handler
// must be prepared to receive pushes for its operation that it did not
// request, and applies the same transition either way. Messages carrying an
// application error go only to the error handlers, whatever their tag.
// Unknown tags are dropped so that new backend operations cannot crash old
// clients.
type Dispatcher struct {
	mutex            sync.Mutex
	messageCallbacks map[UserOperation]*CallbackList[MessageFunction]
	errorCallbacks   *CallbackList[ErrorFunction]
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		messageCallbacks: map[UserOperation]*CallbackList[MessageFunction]{},
		errorCallbacks:   NewCallbackList[ErrorFunction](),
	}
}

func (self *Dispatcher) AddMessageCallback(op UserOperation, callback MessageFunction) func() {
	self.mutex.Lock()
	callbackList, ok := self.messageCallbacks[op]
	if !ok {
		callbackList = NewCallbackList[MessageFunction]()
		self.messageCallbacks[op] = callbackList
	}
	self.mutex.Unlock()

	return callbackList.Add(callback)
}

func (self *Dispatcher) AddErrorCallback(callback ErrorFunction) func() {
	return self.errorCallbacks.Add(callback)
}

// Dispatch runs every matching handler synchronously before returning, so a
// caller that delivers messages from a single goroutine gets the no-reentrancy
// ordering guarantee for free.
func (self *Dispatcher) Dispatch(msg *Message) {
	if msg.Error != "" {
		for _, errorCallback := range self.errorCallbacks.Get() {
			errorCallback(msg.Error)
		}
		return
	}

	if msg.Op == OpUnknown {
		glog.V(2).Infof("[d]ignore unknown op %s\n", msg.RawOp)
		return
	}

	self.mutex.Lock()
	callbackList := self.messageCallbacks[msg.Op]
	self.mutex.Unlock()
	if callbackList == nil {
		glog.V(2).Infof("[d]no handler for %s\n", msg.Op)
		return
	}

	for _, messageCallback := range callbackList.Get() {
		messageCallback(msg)
	}
}
