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
	"strconv"
	"strings"

	"github.com/anuvu/disko"
	"github.com/anuvu/disko/linux"

	"github.com/carlzhc/anaconda/utils/exec"
	"github.com/carlzhc/anaconda/utils/log"
)

// Scanner enumerates the machine's block devices.
type Scanner interface {
	Scan() ([]*Device, error)
}

var (
	matchAll    = func(d disko.Disk) bool { return true }
	diskoSystem = linux.System()
)

// DiskoScanner scans physical disks with disko and fills in format details
// from lsblk.
type DiskoScanner struct {
	Executor exec.Executor
}

// NewDiskoScanner returns a scanner backed by the local system.
func NewDiskoScanner() *DiskoScanner {
	return &DiskoScanner{Executor: &exec.CommandExecutor{}}
}

// Scan returns the device tree content in parent-before-child order.
func (s *DiskoScanner) Scan() ([]*Device, error) {
	diskSet, err := diskoSystem.ScanAllDisks(matchAll)
	if err != nil {
		return nil, err
	}

	details, err := s.listDevicesDetail()
	if err != nil {
		return nil, err
	}

	var devices []*Device
	for _, disk := range diskSet {
		devices = append(devices, &Device{
			Name: disk.Name,
			Path: disk.Path,
			Size: uint64(disk.Size),
			Type: "disk",
		})
		for _, part := range disk.Partitions {
			kname := linux.GetPartitionKname(disk.Path, part.Number)
			name := strings.TrimPrefix(kname, "/dev/")
			d := &Device{
				Name:    name,
				Path:    kname,
				Size:    part.Size(),
				Type:    "part",
				Parents: []string{disk.Name},
			}
			if detail, ok := details[name]; ok {
				d.Format = Format{
					Type:       detail.Filesystem,
					Mountpoint: detail.MountPoint,
				}
			}
			devices = append(devices, d)
		}
	}

	// Stacked devices (lvm, crypt) show up in lsblk only.
	for name, detail := range details {
		if detail.Type == "disk" || detail.Type == "part" || detail.ParentName == "" {
			continue
		}
		devices = append(devices, &Device{
			Name:    name,
			Path:    "/dev/" + name,
			Size:    detail.Size,
			Type:    detail.Type,
			Parents: []string{detail.ParentName},
			Format: Format{
				Type:       detail.Filesystem,
				Mountpoint: detail.MountPoint,
			},
		})
	}

	return devices, nil
}

type deviceDetail struct {
	Name       string
	Filesystem string
	MountPoint string
	Size       uint64
	Type       string
	Readonly   bool
	ParentName string
}

func (s *DiskoScanner) listDevicesDetail() (map[string]deviceDetail, error) {
	args := []string{"--pairs", "--bytes", "--output", "NAME,FSTYPE,MOUNTPOINT,SIZE,TYPE,RO,PKNAME"}
	output, err := s.Executor.ExecuteCommandWithOutput("lsblk", args...)
	if err != nil {
		log.Error("exec lsblk failed: " + err.Error())
		return nil, err
	}
	return parseLsblkPairs(output), nil
}

func parseLsblkPairs(output string) map[string]deviceDetail {
	resp := map[string]deviceDetail{}
	if output == "" {
		return resp
	}

	output = strings.ReplaceAll(output, "\"", "")

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tmp := deviceDetail{}
		for _, field := range strings.Split(line, " ") {
			kv := strings.SplitN(field, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch kv[0] {
			case "NAME":
				tmp.Name = kv[1]
			case "FSTYPE":
				tmp.Filesystem = kv[1]
			case "MOUNTPOINT":
				tmp.MountPoint = kv[1]
			case "SIZE":
				tmp.Size, _ = strconv.ParseUint(kv[1], 10, 64)
			case "TYPE":
				tmp.Type = kv[1]
			case "RO":
				tmp.Readonly = kv[1] == "1"
			case "PKNAME":
				tmp.ParentName = kv[1]
			default:
				log.Warnf("undefined field %s-%s", kv[0], kv[1])
			}
		}
		if tmp.Name != "" {
			resp[tmp.Name] = tmp
		}
	}
	return resp
}
