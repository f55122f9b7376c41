package raven_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wolfer717/raven-go/pkg/raven"
)

func Example() {
	r, err := raven.New() // no DSN: capture-only
	if err != nil {
		log.Fatal(err)
	}

	event, err := r.CaptureException(errors.New("connection refused"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(event.Exception.Value)
	fmt.Println(event.Exception.Mechanism.Handled)

	_, err = r.SendEvent(context.Background(), event)
	fmt.Println(err != nil) // no DSN configured
	// Output:
	// connection refused
	// true
	// true
}

func ExampleRaven_CaptureMessage() {
	r, err := raven.New()
	if err != nil {
		log.Fatal(err)
	}

	event, err := r.CaptureMessage("disk full")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(event.Message)
	fmt.Println(event.Fingerprint[0])
	// Output:
	// disk full
	// disk full
}
