/*
Package parley is a testing engine for voice-agent conversation flows. It
converts agent configs from hosted platforms (Retell, VAPI, Bland, Telnyx)
into one canonical graph model, simulates conversations against that graph
with persona-driven callers, and judges the transcripts against metrics,
rules, flow constraints and tool expectations.

# Concept

A voice agent is a graph of conversational states. Each node carries
instructions, tools, and guarded transitions; the engine compiles one
execution unit per node and drives a model through it turn by turn, while a
simulated caller plays the other side. Deterministic guards (equations over
dynamic variables, tool-call conditions) are evaluated before the model is
ever asked to pick a transition, so tests stay reproducible where the
source platform would have raced prompt against guard.

# Usage

Import a platform config, then run a suite of test cases against it:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/parley"
		"github.com/aretw0/parley/pkg/domain"
	)

	func main() {
		graph, err := parley.ImportFile("agent.json")
		if err != nil {
			log.Fatal(err)
		}
		if err := parley.Validate(graph); err != nil {
			log.Fatal(err)
		}

		cases := []domain.TestCase{{
			Name:    "caller asks about billing",
			Persona: "An impatient customer with a duplicate charge.",
			Metrics: []string{"agent stays polite", "agent resolves the charge"},
		}}

		run, err := parley.Run(context.Background(), client, graph, cases)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("passed %d / %d", run.Passed, len(run.Results))
	}

client is any ports.ModelClient implementation; the library never talks to
a model provider directly. Exporters render the same graph as a Mermaid
diagram, a Retell schema, a code skeleton, or parley's native JSON.
*/
package parley
