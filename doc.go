/*
Package complog is a hierarchical event logger for test runs.

A session is a tree: Tests and Steps are units that can be nested arbitrarily
deep, and Log entries are timestamped lines. The caller never says where a new
node goes. Every operation is routed along the open spine, the chain of open
units descending from the session root, and applies to its deepest element.

# Concept

	session
	└── Test "login"          (open)
	    ├── Log "clicked button"
	    └── Step "fill form"  (open)  <- insertion point
	        └── Log "typed username"

StartTest and StartStep open a unit at the insertion point. EndTest and EndStep
close the deepest open unit when its kind matches; otherwise they fail with
domain.ErrNothingOpenToClose and change nothing. Every successful operation also
appends a description to the session queue, which pollers consume
incrementally.

# Usage

	reg := registry.New()
	log, err := complog.Open(reg, "run-42")
	if err != nil {
		return err
	}
	_ = log.StartTest("login")
	_ = log.Log("clicked", "button")
	_ = log.EndTest("passed")

	doc, err := log.End() // final JSON document; the session is gone afterwards

The registry is safe for concurrent use. The pkg/adapters packages expose it
over HTTP (with SSE and WebSocket streams) and MCP, and pkg/archive keeps the
documents of ended sessions in memory, on disk or in Redis, optionally redacted
and encrypted by pkg/persistence/middleware. pkg/adapters/process records a
command run as a Test with one Log per output line.
*/
package complog
