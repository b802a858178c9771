// Package testutil provides an in-memory discovery source for tests.
//
//	src := testutil.NewSource("test")
//	go dispatcher.Run(ctx, src)
//	src.Emit(discovery.Event{Type: discovery.Added, Key: "a", Metadata: meta})
package testutil
