/*
Package botengine runs graph-based conversational scenarios for Telegram bots.

A scenario is a document of typed blocks (start, message, menu, delay,
input_data) joined by connections between named exit and entry points. Every
inbound update is handled independently: the participant's execution state is
loaded from the state store, the interpreter walks the graph from the current
block until it parks (waiting for a click or a typed answer) or runs out of
connections, collected answers are stored, and the state is saved back.

# Wiring

New builds an App from an internal configuration: the state store (redis,
dynamodb, file or memory, optionally encrypted), the scenario source
(postgres or a YAML manifest), the bot token resolver (static or AWS SSM),
the Telegram client factory, the user-data service and the optional NATS
publisher for collected fields.

	app, err := botengine.New(ctx, cfg, botengine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Server().ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)

# Simulation

Runner plays a scenario from line-oriented input, which together with the
console messenger lets a scenario be tried in a terminal without Telegram.
*/
package botengine
