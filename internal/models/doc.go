// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package models defines the data structures shared by the datastore, the
services and the HTTP layer.

Model Categories:

 1. Readings:
    - Reading: one sensor or GNSS measurement
    - SensorInfo: a distinct sensor under a farm or GNSS device
    - Farm: a farm id with its optional name and location

 2. Accounts:
    - User: a stored account, including credential columns
    - PublicUser: the subset of User returned to clients

 3. API envelope:
    - SuccessResponse / ErrorResponse: {"success": true, "data": ...} and
    {"success": false, "message": "..."}

JSON field names are snake_case and match the database column names.
*/
package models
