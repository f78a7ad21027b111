// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package websocket streams sensor reading writes to connected clients.

A client connects to GET /ws/readings, optionally with ?farm_id=..., and
receives one JSON message per create, update or delete:

	{"type":"reading.create","data":{"id":42,"sensor_id":"3","farm_id":"7","value":21.5,"timestamp":"..."}}

The Hub fans messages out from a single goroutine (Hub.Serve, supervised in
the API layer). Slow clients whose send buffer is full are disconnected
instead of stalling everyone else. Clients may send {"type":"ping"} and get
{"type":"pong"} back; the server also pings every pingPeriod and drops
connections that stop answering.

Publishing never blocks the request that wrote the reading. When the hub's
broadcast buffer is full the message is dropped and a warning is logged.
*/
package websocket
