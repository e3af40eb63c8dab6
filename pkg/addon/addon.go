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

// Package addon implements the addon registry: third-party extensions that
// consume their own %addon sections of the configuration.
//
// The registry maps addon identifiers to handlers explicitly. A section
// referencing an unregistered identifier produces a placeholder entry that
// Setup drops with a warning; an unknown addon never fails the
// configuration load.
package addon

import (
	"fmt"
	"strings"

	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/utils/log"
)

// Environment is what a handler sees during setup and execution.
type Environment struct {
	Storage   *model.Model
	Sysroot   string
	Kickstart string
}

// Data is the handler of one addon section.
type Data interface {
	// Name returns the addon identifier the handler serves.
	Name() string
	// HandleHeader consumes the %addon header arguments.
	HandleHeader(args []string) error
	// HandleLine consumes one line of the section body.
	HandleLine(line string) error
	// Finalize is called after the last line of the section.
	Finalize() error
	// String renders the section back to directive syntax.
	String() string
}

// Configurable handlers take part in the setup phase.
type Configurable interface {
	Setup(env *Environment) error
}

// Executable handlers take part in the execution phase.
type Executable interface {
	Execute(env *Environment) error
}

// BaseData is a convenience base carrying the header and body verbatim.
type BaseData struct {
	name  string
	Args  []string
	Lines []string
}

// NewBaseData returns a base handler for the identifier.
func NewBaseData(name string) *BaseData {
	return &BaseData{name: name}
}

// Name returns the addon identifier.
func (d *BaseData) Name() string {
	return d.name
}

// HandleHeader stores the header arguments.
func (d *BaseData) HandleHeader(args []string) error {
	d.Args = append([]string(nil), args...)
	return nil
}

// HandleLine stores one body line.
func (d *BaseData) HandleLine(line string) error {
	d.Lines = append(d.Lines, line)
	return nil
}

// Finalize does nothing.
func (d *BaseData) Finalize() error {
	return nil
}

// String renders the stored section.
func (d *BaseData) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%%addon %s", d.name)
	if len(d.Args) > 0 {
		fmt.Fprintf(&b, " %s", strings.Join(d.Args, " "))
	}
	b.WriteString("\n")
	for _, line := range d.Lines {
		b.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("%end\n")
	return b.String()
}

// placeholder stands in for a referenced but unregistered addon. It keeps
// the section content so the configuration can be rendered back, and is
// dropped at setup time.
type placeholder struct {
	BaseData
}

func newPlaceholder(name string) *placeholder {
	return &placeholder{BaseData: *NewBaseData(name)}
}

// Registry owns the addon handlers.
type Registry struct {
	handlers map[string]Data
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Data{}}
}

// Register installs the handler under its identifier, replacing a
// placeholder of the same name.
func (r *Registry) Register(handler Data) {
	name := handler.Name()
	if _, ok := r.handlers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.handlers[name] = handler
}

// Get returns the handler of the identifier.
func (r *Registry) Get(name string) (Data, bool) {
	d, ok := r.handlers[name]
	return d, ok
}

// HandleSection routes one %addon section to its handler. An unregistered
// identifier gets a placeholder.
func (r *Registry) HandleSection(name string, args []string, lines []string) error {
	handler, ok := r.handlers[name]
	if !ok {
		log.Warnf("addon %s is not registered, keeping a placeholder", name)
		handler = newPlaceholder(name)
		r.Register(handler)
	}
	if err := handler.HandleHeader(args); err != nil {
		return fmt.Errorf("addon %s: %w", name, err)
	}
	for _, line := range lines {
		if err := handler.HandleLine(line); err != nil {
			return fmt.Errorf("addon %s: %w", name, err)
		}
	}
	return handler.Finalize()
}

// Setup runs the setup phase. Placeholders are dropped with a warning,
// never an error.
func (r *Registry) Setup(env *Environment) error {
	var kept []string
	for _, name := range r.order {
		handler := r.handlers[name]
		if _, isPlaceholder := handler.(*placeholder); isPlaceholder {
			log.Warnf("addon %s was not provided by any package, dropping its configuration", name)
			delete(r.handlers, name)
			continue
		}
		kept = append(kept, name)
		if c, ok := handler.(Configurable); ok {
			if err := c.Setup(env); err != nil {
				return fmt.Errorf("addon %s: %w", name, err)
			}
		}
	}
	r.order = kept
	return nil
}

// Execute runs the execution phase over the executable handlers.
func (r *Registry) Execute(env *Environment) error {
	for _, name := range r.order {
		if e, ok := r.handlers[name].(Executable); ok {
			if err := e.Execute(env); err != nil {
				return fmt.Errorf("addon %s: %w", name, err)
			}
		}
	}
	return nil
}

// String renders every stored section in registration order.
func (r *Registry) String() string {
	var b strings.Builder
	for _, name := range r.order {
		b.WriteString(r.handlers[name].String())
	}
	return b.String()
}
