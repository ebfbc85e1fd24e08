// Package index defines the read-only contract to the external task indexer:
// the Source interface, the Item and Child records it delivers, change events,
// and a registry that detects which sources are available for a vault.
package index
