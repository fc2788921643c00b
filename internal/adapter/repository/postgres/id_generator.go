package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID ids. ULIDs sort by creation time, which keeps
// ledger listings in insertion order without a separate sequence.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
