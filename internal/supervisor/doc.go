// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package supervisor runs the long-lived Shelfwise services under a suture v4
supervisor tree.

	shelfwise (root)
	├── engine-layer
	│   └── index-warmup   builds the similarity index in the background
	└── api-layer
	    └── http-server    serves the chi router

A crashing service is restarted by its own layer supervisor; repeated
failures put only that layer into backoff. Supervisor events are logged
through sutureslog, whose slog.Logger is backed by the zerolog sink from
internal/logging:

	slogger := logging.NewSlogLogger(logging.WithComponent("supervisor"))
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddEngineService(services.NewIndexWarmupService(engine, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err = tree.Serve(ctx)
*/
package supervisor
