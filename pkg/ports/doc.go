/*
Package ports defines the driven ports (interfaces) of the scenario engine.

These interfaces decouple the interpreter and the webhook orchestrator from
concrete infrastructure, so the same core runs against Redis or DynamoDB state,
the Telegram Bot API or a console messenger, and Postgres or file-based scenarios.

# Key Interfaces

  - StateStore: persists the Execution State of each participant.
  - Messenger: sends content to the messaging platform for one invocation.
  - UserDataService: stores and returns values collected by input blocks.
  - ScenarioSource / TokenResolver: bind a webhook to its scenario and bot token.
  - DistributedLocker: optional serialization of events of one participant.
*/
package ports
