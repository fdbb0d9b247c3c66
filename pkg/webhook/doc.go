/*
Package webhook turns one inbound messenger update into one interpreter run.

The Orchestrator resolves the scenario and bot bound to a webhook, restores the
participant's state, hydrates previously collected values, classifies the event,
runs the interpreter, hands new values to the user-data service and persists the
state again. Every step is best-effort: failures are logged and counted, and the
caller is expected to acknowledge the update regardless.
*/
package webhook
