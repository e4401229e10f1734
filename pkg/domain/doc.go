/*
Package domain contains the session tree and the routing rules that build it.

A session is an ordered tree of Tests, Steps and Logs. Callers never address a
node directly: every operation lands on the "open spine", the path that starts
at the session and follows the last child while that child is still open. This
package is pure (no I/O, no locking) and is driven by the registry.

# Key Entities

  - Session: the root container, plus the append-only event queue used for polling.
  - Unit: a Test or a Step; open until its matching end call.
  - Log: a timestamped text leaf.
  - Event: a description of one successful registry operation.
*/
package domain
