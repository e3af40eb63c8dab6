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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlzhc/anaconda/pkg/addon"
	"github.com/carlzhc/anaconda/pkg/network"
	"github.com/carlzhc/anaconda/pkg/storage"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/runners"
	"github.com/carlzhc/anaconda/utils/log"
)

// backend bundles the modules the publication surface serves.
type backend struct {
	storage *storage.Module
	network *network.Module
	addons  *addon.Registry
}

func subMain() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &backend{
		storage: storage.NewModule(model.NewDiskoScanner()),
		network: network.NewModule(),
		addons:  addon.NewRegistry(),
	}

	// The first device scan runs before the surface comes up so early
	// queries see a populated tree.
	if _, err := b.storage.ResetWithTask().Run(); err != nil {
		log.Errorf("initial storage reset failed: %v", err)
		return err
	}

	exporter := runners.NewMetricsExporter(config.metricsAddr)
	go func() {
		if err := exporter.Start(ctx); err != nil {
			log.Errorf("metrics exporter stopped: %v", err)
		}
	}()

	server := newHTTPServer(b, config.listenAddr)
	go func() {
		<-ctx.Done()
		server.stop()
	}()

	return server.start()
}
