/*
Package domain contains the core domain models of the scenario engine.

It defines the declarative scenario graph (blocks and the connections between
their exit and entry points), the per-participant Execution State that travels
between webhook invocations, and the inbound events delivered by the messaging
platform. This package is kept pure and free of I/O or persistence concerns.

# Key Entities

  - Block: a typed unit of conversation behavior (start, message, menu, delay, input_data).
  - Connection: a directed edge from a block's exit point to another block's entry point.
  - State: the persisted snapshot of a participant (current block, variables, message history).
  - Event: an inbound text message or button click.
*/
package domain
