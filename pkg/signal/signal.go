/*
   Copyright @ 2024 The anaconda backend authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package signal provides the typed event buses the modules use to announce
// property changes. Delivery is synchronous and follows the registration
// order; Emit returns only after every callback has run.
package signal

// Signal delivers a value to the connected callbacks.
//
// A Signal is meant to be emitted from the single orchestration goroutine.
// It is not safe for concurrent emission.
type Signal[T any] struct {
	callbacks []func(T)
}

// New returns an empty signal.
func New[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Connect registers a callback. Callbacks run in registration order.
func (s *Signal[T]) Connect(callback func(T)) {
	s.callbacks = append(s.callbacks, callback)
}

// Emit delivers the value to every connected callback before returning.
func (s *Signal[T]) Emit(value T) {
	for _, callback := range s.callbacks {
		callback(value)
	}
}

// Notifier is a signal without a payload.
type Notifier struct {
	callbacks []func()
}

// Connect registers a callback. Callbacks run in registration order.
func (n *Notifier) Connect(callback func()) {
	n.callbacks = append(n.callbacks, callback)
}

// Emit runs every connected callback before returning.
func (n *Notifier) Emit() {
	for _, callback := range n.callbacks {
		callback()
	}
}
