// Package dashboard provides the embedded contest workspace page.
//
// The page is a single HTML file with inline CSS and JavaScript, embedded at
// compile time so the binary serves it without external files. It reads the
// workspace from /api/workspace, submits to /api/submissions and follows
// leaderboard and submission events on /api/sse.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the workspace page.
//
//	assets/
//	  index.html    - workspace page; {{.Title}} is replaced by the server
//
//go:embed assets/*
var Assets embed.FS
