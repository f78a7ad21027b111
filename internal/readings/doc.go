// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package readings validates readings requests and shapes their results.

The Service sits between the HTTP handlers and the datastore. It turns raw
query values into a query.Filter, rejects bad input before any datastore
call, resolves farm names and classifies failures:

  - *ValidationError: the request is malformed (400)
  - *NotFoundError: the farm name or reading id does not exist (404)
  - *DatastoreError: the datastore failed; Unwrap exposes the cause, which
    may be database.ErrUnavailable when the circuit breaker is open

Sensor readings come from sensor_data. GNSS readings come from the gnss and
gnss2 tables, which the Store presents as a single source.
*/
package readings
