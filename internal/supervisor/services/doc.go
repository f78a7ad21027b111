// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package services adapts sensorhub components to suture's Serve(ctx) model.

HTTPServerService wraps *http.Server: ListenAndServe runs in a goroutine
and Shutdown is called with a fresh timeout context when the supervisor
cancels.

DatastoreMonitor pings the datastore on an interval, publishes the result
as the sensorhub_datastore_up gauge, and logs only on state transitions.
*/
package services
