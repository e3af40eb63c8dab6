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

package main

import (
	"github.com/carlzhc/anaconda/cmd/anaconda-backend/run"
	"github.com/carlzhc/anaconda/pkg/version"
	"github.com/carlzhc/anaconda/utils/log"
)

func main() {
	printWelcome()
	run.Execute()
}

func printWelcome() {
	log.Info("-------- Welcome to use Anaconda Backend Server --------")
	log.Infof("Version : %s", version.Version)
	log.Infof("Git Commit ID : %s", version.GitCommit)
	log.Info("------------------------------------")
}
