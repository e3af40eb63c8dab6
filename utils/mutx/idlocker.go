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

package mutx

import (
	"sync"
)

// All mutating operations on a storage model need to be performed sequentially
type GlobalLocks struct {
	locks map[string]struct{}
	mux   sync.Mutex
}

// NewGlobalLocks returns new GlobalLocks.
func NewGlobalLocks() *GlobalLocks {
	return &GlobalLocks{
		locks: map[string]struct{}{},
	}
}

// TryAcquire tries to acquire the lock for operating on id and returns true if successful.
// If another operation is already using id, returns false.
func (gl *GlobalLocks) TryAcquire(id string) bool {
	gl.mux.Lock()
	defer gl.mux.Unlock()
	if _, ok := gl.locks[id]; ok {
		return false
	}
	gl.locks[id] = struct{}{}
	return true
}

// Release deletes the lock on id.
func (gl *GlobalLocks) Release(id string) {
	gl.mux.Lock()
	defer gl.mux.Unlock()
	delete(gl.locks, id)
}
