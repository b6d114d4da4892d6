// Package event carries input and child-process notifications to the
// editor's single event loop.
//
// # Events
//
// The set of events is closed: Key, Mouse, Resize, Scroll, Geometry,
// ChildOutput, ChildExited, RunFinished and ConfigReloaded. Each embeds a
// Header with its creation time.
//
// # Queue
//
// Background goroutines (the backend poller, shell readers, the config
// watcher, the file runner) never touch editor state. They post events to
// a Queue, and the loop goroutine drains it:
//
//	q := event.NewQueue(256)
//	go func() {
//	    for {
//	        if ev := event.FromBackend(screen.PollEvent()); ev != nil {
//	            _ = q.Post(ctx, ev)
//	        }
//	    }
//	}()
//	for ev := range q.Events() {
//	    dispatcher.Dispatch(ev)
//	}
//
// # Dispatcher
//
// Components declare what they handle by implementing capability
// interfaces (KeyHandler, ResizeHandler, ChildHandler and so on). The
// Dispatcher keeps one table per capability. Key, mouse and scroll events
// stop at the first handler that claims them; the rest are broadcast.
// A handler panic is recovered, logged and passed to the panic handler.
package event
