// Package status carries status, progress and error events from the core
// components to whatever presentation layer is attached.
//
// Components publish through the Sink interface; the Reporter fans events out
// to any number of subscribers:
//
//	reporter := status.NewReporter()
//	events, cancel := reporter.Subscribe(64)
//	defer cancel()
//
//	go func() {
//	    for ev := range events {
//	        fmt.Println(ev.Message)
//	    }
//	}()
//
// Channel subscribers never block publishers: when a subscriber's buffer is
// full the event is dropped for that subscriber. Use SubscribeFunc when every
// event must be observed.
package status
