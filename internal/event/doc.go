// Package event provides a synchronous publish/subscribe bus.
//
// Publishers emit an Event on a dot-separated topic. Subscribers register a
// Handler against a topic pattern; "*" matches one segment and "**" matches
// any number of segments. Handlers run on the publisher's goroutine in
// subscription order, so a Publish call returns only after every matching
// handler has finished.
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TopicLayoutChanged, event.HandlerFunc(func(ctx context.Context, ev event.Event) error {
//		return refresh()
//	}))
//	bus.Publish(ctx, event.New(event.TopicLayoutChanged, event.LayoutChanged{Reason: "resize"}, "app"))
package event
