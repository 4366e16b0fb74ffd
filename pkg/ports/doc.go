/*
Package ports defines the driven ports (interfaces) for stepwise.

# Key Interfaces

  - PresetStore: saves and loads named container specs (memory, file, redis).
  - DistributedLocker: serializes access to a workspace across replicas.
*/
package ports
