package geolib

import "errors"

var (
	// ErrAddressUnresolved means every provider in the chain was
	// tried and none produced a location. It is also returned for a
	// cached negative result until that entry expires.
	ErrAddressUnresolved = errors.New("address could not be resolved")

	// ErrInvalidAddress means the given string is not an IP literal.
	ErrInvalidAddress = errors.New("not a valid IP address")

	// ErrPlaceUnresolved means a city could not be geocoded by any
	// provider or the static table.
	ErrPlaceUnresolved = errors.New("place could not be geocoded")
)
