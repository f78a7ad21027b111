// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package supervisor runs the long-lived parts of sensorhub under suture v4.

The tree has two layers so a misbehaving background task cannot take the
HTTP listener down with it:

	RootSupervisor ("sensorhub")
	├── DataSupervisor ("data-layer")
		│   ├── DatastoreMonitor
	│   └── audit.Logger (when audit.enabled)
	└── APISupervisor ("api-layer")
	    ├── websocket.Hub
	    └── HTTPServerService

Supervisor events are logged through sutureslog on top of the zerolog-backed
slog adapter from internal/logging.

Crashed services are restarted with suture's backoff. Once FailureThreshold
failures accumulate (decaying at FailureDecay per second) the supervisor waits
FailureBackoff before the next restart. On context cancellation every service
gets ShutdownTimeout to return; stragglers are reported by
UnstoppedServiceReport.
*/
package supervisor
