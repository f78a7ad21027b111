// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package cache provides a small thread-safe LRU with per-entry TTL.
//
// Expiry is lazy: an expired entry is dropped when it is next read or
// when CleanupExpired walks the list. There is no background goroutine.
package cache
