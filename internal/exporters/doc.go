/*
Package exporters renders the canonical graph into target representations:
a Mermaid flowchart for diagrams, the Retell conversation-flow schema for
platform round trips, a code skeleton mirroring the node-to-unit mapping
used at run time, and parley's own native JSON format.

Every exporter is a pure function of the graph. The native exporter and
the native importer are inverses over the reachable node set and the
transition topology.
*/
package exporters
