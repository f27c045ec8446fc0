/*
Package runtime compiles a domain.Graph into runnable execution units and
produces the agent side of each conversation turn.

Compilation creates one ExecutionUnit per graph node: the node's
instructions with dynamic variables substituted, its declared tools, and one
synthesized transition trigger per outgoing edge. Units are stored in a flat
map keyed by node id and referenced by id everywhere, so units never own
references to each other.

Per turn, deterministic conditions (equation, tool_call) are checked before
the model is consulted; a satisfiable equation forces its transition and the
model is never offered that node's prompt triggers on that turn.
*/
package runtime
