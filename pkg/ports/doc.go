/*
Package ports defines the driven ports (interfaces) of the rewind engine.

These interfaces decouple machines from the infrastructure that keeps them
between calls, so the same session logic works with memory, file or Redis
backends.

# Key Interfaces

  - StateStore: persists and loads machine snapshots per session.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
