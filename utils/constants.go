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

const (
	// DefaultListenAddr is the default address of the module publication surface.
	DefaultListenAddr = ":8089"

	// DefaultMetricsAddr is the default address of the metrics endpoint.
	DefaultMetricsAddr = ":8080"

	// DefaultSysroot is where the target system is mounted during installation.
	DefaultSysroot = "/mnt/sysimage"

	// NetworkScriptsDir holds the persistent network configuration records.
	NetworkScriptsDir = "/etc/sysconfig/network-scripts"
)
