package utils

import "github.com/google/uuid"

// UUIDGenerator produces identifiers for new document records. V7 UUIDs
// sort by creation time, which keeps vault directories roughly append-only.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
