package websocket

import "errors"

var (
	ErrRegistryClosed = errors.New("registry is shut down")
)
