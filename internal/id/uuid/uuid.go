// Package uuid provides the UUID implementation of pipeline.IDGenerator.
package uuid

import (
	"fmt"

	guuid "github.com/google/uuid"
)

// Generator produces random UUIDs.
type Generator struct{}

// New returns a Generator.
func New() Generator { return Generator{} }

// NewID implements pipeline.IDGenerator.
func (Generator) NewID() (string, error) {
	id, err := guuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}
