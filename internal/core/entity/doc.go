// Package entity provides the building blocks of composite entities: the
// Component lifecycle contract, the ordered per-composite Registry, the
// simulation-wide Identifiers set and generational Handles used as
// non-owning back-references from components to their composite.
package entity
