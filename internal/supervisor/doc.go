// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

/*
Package supervisor runs itemcf's long-lived pieces under suture v4.

# Overview

The tree has two layers:

	RootSupervisor ("itemcf")
	├── JobSupervisor ("job-layer")
	│   └── JobService (one batch run: load, evaluate, complete, save)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if server.enabled)

The job runs once. In batch mode it ends the whole tree with
suture.ErrTerminateSupervisorTree when it finishes; with the HTTP server
enabled it returns suture.ErrDoNotRestart instead, so the API keeps serving
the run report and metrics until the process is signalled.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddJobService(job)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	err = tree.Serve(ctx)
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
	    err = nil
	}

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog, which writes to zerolog via logging.NewSlogLogger.
*/
package supervisor
