// Package raven is an error-reporting client adapter: it converts runtime
// errors and free-text messages into canonical, transport-ready events and
// delivers them to a remote collector.
//
// Quick start:
//
//	r, err := raven.New(raven.WithDSN("https://key@collector.example.com/42"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	event, _ := r.CaptureException(err)
//	resp, _ := r.SendEvent(context.Background(), event)
//	fmt.Println(resp.Status)
//
// Capture operations are synchronous and single-goroutine: the underlying
// engine fires its hooks before a capture call returns, and bridged calls
// must not overlap. SendEvent is the only operation that crosses an I/O
// boundary.
package raven
