package setup

import (
	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	operationPrefix   = "op-"
	operationAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	operationLength   = 10
)

// newOperationID returns a short id correlating the log lines and the event
// of one setup operation. It falls back to a fixed id if the random source
// fails, since the id is informational only.
func newOperationID() string {
	id, err := nanoid.Generate(operationAlphabet, operationLength)
	if err != nil {
		return operationPrefix + "unknown"
	}
	return operationPrefix + id
}
