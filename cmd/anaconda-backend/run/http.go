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

package run

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/storage/partitioning"
	"github.com/carlzhc/anaconda/pkg/task"
)

type eHTTPServer struct {
	e       *echo.Echo
	addr    string
	backend *backend
}

func newHTTPServer(b *backend, addr string) *eHTTPServer {
	s := &eHTTPServer{e: echo.New(), addr: addr, backend: b}
	s.e.HideBanner = true

	s.e.GET("/storage/devices", s.deviceList)
	s.e.GET("/storage/devices/:name", s.deviceData)
	s.e.GET("/storage/disks", s.diskList)
	s.e.GET("/storage/actions", s.actionList)
	s.e.POST("/storage/reset", s.storageReset)
	s.e.POST("/storage/partitioning/:method/apply", s.applyPartitioning)
	s.e.POST("/network/tasks/:name", s.networkTask)
	s.e.GET("/requirements", s.requirements)
	s.e.GET("/kickstart", s.generateKickstart)

	return s
}

func (s *eHTTPServer) start() error {
	return s.e.Start(s.addr)
}

func (s *eHTTPServer) stop() {
	_ = s.e.Close()
}

// taskResult is the wire envelope of one task execution.
type taskResult struct {
	Task   string      `json:"task"`
	Status task.Status `json:"status"`
	Result []string    `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func runPublishable(c echo.Context, p *task.Publishable) error {
	result, err := p.Execute()
	resp := taskResult{Task: p.Name(), Status: p.Status(), Result: result}
	if err != nil {
		resp.Error = err.Error()
		return c.JSON(http.StatusInternalServerError, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func storageErrorStatus(err error) int {
	var invalid *model.InvalidStorageError
	switch {
	case errors.Is(err, model.ErrUnavailableStorage):
		return http.StatusConflict
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *eHTTPServer) deviceList(c echo.Context) error {
	devices, err := s.backend.storage.DeviceTree.GetDevices()
	if err != nil {
		return c.JSON(storageErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, devices)
}

func (s *eHTTPServer) deviceData(c echo.Context) error {
	data, err := s.backend.storage.DeviceTree.GetDeviceData(c.Param("name"))
	if err != nil {
		return c.JSON(storageErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, data)
}

func (s *eHTTPServer) diskList(c echo.Context) error {
	disks, err := s.backend.storage.DeviceTree.GetDisks()
	if err != nil {
		return c.JSON(storageErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, disks)
}

func (s *eHTTPServer) actionList(c echo.Context) error {
	actions, err := s.backend.storage.DeviceTree.GetActions()
	if err != nil {
		return c.JSON(storageErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, actions)
}

func (s *eHTTPServer) storageReset(c echo.Context) error {
	t := s.backend.storage.ResetWithTask()
	return runPublishable(c, task.NewPublishable(t.Name(), t.Status, t.Run))
}

func (s *eHTTPServer) applyPartitioning(c echo.Context) error {
	method := partitioning.Method(c.Param("method"))
	strategy := s.backend.storage.Partitioning(method)
	if strategy == nil {
		return c.JSON(http.StatusNotFound, "no "+string(method)+" partitioning has been created")
	}
	if configurable, ok := strategy.(modules.Configurable); ok {
		if err := configurable.ConfigureWithTask().Run(); err != nil {
			return c.JSON(storageErrorStatus(err), err.Error())
		}
	}
	if err := s.backend.storage.ApplyPartitioning(strategy); err != nil {
		return c.JSON(storageErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, "applied")
}

func (s *eHTTPServer) networkTask(c echo.Context) error {
	name := c.Param("name")
	for _, p := range s.backend.network.ForPublication(nil) {
		if p.Name() == name {
			return runPublishable(c, p)
		}
	}
	return c.JSON(http.StatusNotFound, "unknown network task "+name)
}

func (s *eHTTPServer) requirements(c echo.Context) error {
	reqs := s.backend.storage.CollectRequirements()
	reqs = append(reqs, s.backend.network.CollectRequirements()...)
	return c.JSON(http.StatusOK, reqs)
}

func (s *eHTTPServer) generateKickstart(c echo.Context) error {
	data := kickstart.NewData()
	s.backend.storage.SetupKickstart(data)
	s.backend.network.SetupKickstart(data)
	return c.String(http.StatusOK, data.String()+s.backend.addons.String())
}
