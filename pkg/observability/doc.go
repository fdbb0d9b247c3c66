/*
Package observability provides monitoring for the scenario engine.

Metrics exposes Prometheus collectors for block visits and webhook outcomes.
Lifecycle hooks feed it from the interpreter, and LoggingHooks mirrors the same
events to a structured logger.
*/
package observability
