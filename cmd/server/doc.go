// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package main is the entry point for the Shelfwise server.

Shelfwise loads a product catalog export once at startup and serves
recommendations over HTTP: top rated products, products similar to a given
one, products liked by users with overlapping taste, and a hybrid of the
last two.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("shelfwise")
	├── EngineSupervisor ("engine-layer")
	│   └── Index warm-up (RECOMMEND_EAGER_INDEX, runs once)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: Koanf v2 with defaults, optional config.yaml and environment
 2. Catalog: the export is read through DuckDB's read_csv
 3. Snapshot store (optional): BadgerDB, pruned to the current catalog
 4. Engine: popularity and preference rankers, lazy similarity index
 5. Supervisor tree and HTTP server

# Configuration

Environment variables override the config file:

	CATALOG_PATH=/data/products.tsv   # required
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json
	RECOMMEND_DEFAULT_N=5
	RECOMMEND_REQUIRE_INDEX=false
	SNAPSHOT_ENABLED=true
	SNAPSHOT_PATH=/data/snapshots

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for up to HTTP_SHUTDOWN_TIMEOUT and the snapshot store is closed
after the tree stops.
*/
package main
