package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoMapping     = errors.New("no size conversion table for class pair")
	ErrUnknownSize   = errors.New("size not present in conversion table")
	ErrNoGenderMatch = errors.New("no gender class covers observed sizes")
	ErrUnknownVenue  = errors.New("unknown venue in fee schedule")
	ErrCorruptBook   = errors.New("order book violates level invariants")
	ErrBadSize       = errors.New("unparseable shoe size")
	ErrIneligible    = errors.New("item not eligible for margin computation")
)
