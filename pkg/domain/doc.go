/*
Package domain contains the core domain models of the rewind engine.

It defines the declarative machine definition (Config, StateDef, Transition),
the serialisable image of a running machine (Snapshot), the error kinds the
engine reports and the lifecycle hooks used for observability. The package
has no I/O and no third-party dependencies.

# Key Entities

  - Config: the initial state plus the ordered set of states and their event transitions.
  - Snapshot: active state, history and redo stack of a machine, as persisted by stores.
  - LifecycleHooks: synchronous callbacks fired after state changes, undo and redo.
*/
package domain
