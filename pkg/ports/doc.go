/*
Package ports defines the driven ports (interfaces) around the session registry.

The registry itself performs no I/O. Everything that leaves the process (archiving
ended sessions, coordinating replicas) goes through these interfaces.

# Key Interfaces

  - ArchiveStore: persists the final document of an ended session (memory, file, Redis).
  - DistributedLocker: serializes archive writes for the same session across replicas.
*/
package ports
