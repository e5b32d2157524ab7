// Package web holds the browser viewer served at the root route.
package web

import _ "embed"

// Index is the viewer page. It polls /logs and merges new entries.
//
//go:embed index.html
var Index []byte
