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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsString(t *testing.T) {
	table := []struct {
		slice  []string
		s      string
		result bool
	}{
		{[]string{"a", "b", "c"}, "b", true},
		{[]string{"a", "b", "c"}, "d", false},
	}

	for _, e := range table {
		if ContainsString(e.slice, e.s) != e.result {
			t.Errorf("ContainsString(%v, %s)", e.slice, e.s)
		}
	}
}

func TestSliceRemoveString(t *testing.T) {
	table := []struct {
		slice  []string
		s      string
		result []string
	}{
		{slice: []string{"a", "b", "c"}, s: "a", result: []string{"b", "c"}},
		{slice: []string{"a", "b", "c"}, s: "d", result: []string{"a", "b", "c"}},
	}

	a := assert.New(t)

	for _, e := range table {
		a.Equal(SliceRemoveString(e.slice, e.s), e.result)
	}
}

func TestSliceSubSlice(t *testing.T) {
	table := []struct {
		src    []string
		dst    []string
		result []string
	}{
		{src: []string{"a", "b", "c"}, dst: []string{"a", "b"}, result: []string{"c"}},
		{src: []string{"a", "b", "c"}, dst: []string{"a", "d"}, result: []string{"b", "c"}},
	}

	a := assert.New(t)

	for _, e := range table {
		a.Equal(SliceSubSlice(e.src, e.dst), e.result)
	}
}

func TestSubsetOf(t *testing.T) {
	table := []struct {
		sub    []string
		set    []string
		result bool
	}{
		{sub: []string{"a"}, set: []string{"a", "b"}, result: true},
		{sub: []string{"a", "c"}, set: []string{"a", "b"}, result: false},
		{sub: nil, set: []string{"a"}, result: true},
	}

	a := assert.New(t)

	for _, e := range table {
		a.Equal(e.result, SubsetOf(e.sub, e.set))
	}
}
