package round

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an event is not allowed in the current phase
	ErrInvalidTransition = errors.New("invalid round transition")
	// ErrNegativeSeed is returned when a round is started with a negative counter
	ErrNegativeSeed = errors.New("seed must not be negative")
	// ErrUnknownEvent is returned for event types Apply does not understand
	ErrUnknownEvent = errors.New("unknown round event")
)

func invalidTransition(ev EventType, p Phase) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev, p)
}
