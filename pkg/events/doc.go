/*
Package events provides the in-memory, per-workspace event bus behind the
SSE stream.

Each workspace maps to a set of subscribers with buffered channels. Publish
is always non-blocking: no subscribers means a no-op, and a subscriber whose
buffer is full loses its oldest queued event so that the stream stays near
the live tail. Dropped events are counted per subscriber; the SSE layer
surfaces the count as a "lagged" marker before resuming delivery.

There is no replay: a subscription sees only events published after it was
registered. Clients that need authoritative state refetch over REST after
reconnecting.

Usage:

	bus := events.NewBus()

	sub := bus.Subscribe(workspaceID)
	defer sub.Close()

	go func() {
		for evt := range sub.C {
			handle(evt)
		}
	}()

	bus.Publish(workspaceID, &events.Event{
		Type: events.EventDocumentUpdated,
		Data: map[string]any{"id": docID},
	})
*/
package events
