/*
Package ports defines the driven ports (interfaces) for the Parley core.

These interfaces decouple the engine from external implementations: the
model-call capability, format adapters, exporters, and run-history storage.

# Key Interfaces

  - ModelClient: the single request/response capability all model calls go through.
  - Importer: format detection and conversion into a domain.Graph.
  - Exporter: read-only projection of a domain.Graph to a target representation.
  - RunStore: persistence of sealed TestRun payloads (Redis, memory).
*/
package ports
