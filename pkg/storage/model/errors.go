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

package model

import (
	"errors"
	"strings"
)

// ErrUnavailableStorage is returned when the storage model is queried before
// the first reset made it available.
var ErrUnavailableStorage = errors.New("the storage model is not available, reset the storage first")

// InvalidStorageError reports a storage configuration that failed the
// structural validation. The canonical model is never replaced by a model
// carrying this error.
type InvalidStorageError struct {
	Reasons []string
}

func (e *InvalidStorageError) Error() string {
	return "the storage configuration is not valid: " + strings.Join(e.Reasons, "; ")
}
