package interpreter

// Domain lookup helpers: permissive, case-insensitive substring matching
// against live records. Substring rather than exact matching is a deliberate
// precision/recall tradeoff — operators refer to "marcus" or "jane s", not
// to canonical record names.
//
// All three helpers return the FIRST match in snapshot iteration order.
// Multiple records can match the same substring and no disambiguation is
// performed; this is a known limitation. The *All variants return every
// match and exist as the hook for future disambiguation UX.

import (
	"strings"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// FindClient matches namePart against each client's "first last"
// concatenation and returns the first hit in snapshot order.
func FindClient(snap *domain.Snapshot, namePart string) *domain.Client {
	if matches := FindClientsAll(snap, namePart); len(matches) > 0 {
		return matches[0]
	}
	return nil
}

// FindClientsAll returns every client whose full name contains namePart.
func FindClientsAll(snap *domain.Snapshot, namePart string) []*domain.Client {
	needle := lowerTrim(namePart)
	if needle == "" {
		return nil
	}
	var matches []*domain.Client
	for _, c := range snap.Clients {
		if strings.Contains(strings.ToLower(c.FullName()), needle) {
			matches = append(matches, c)
		}
	}
	return matches
}

// FindTechnician matches namePart against technician display names and
// returns the first hit in snapshot order.
func FindTechnician(snap *domain.Snapshot, namePart string) *domain.Technician {
	if matches := FindTechniciansAll(snap, namePart); len(matches) > 0 {
		return matches[0]
	}
	return nil
}

// FindTechniciansAll returns every technician whose display name contains
// namePart.
func FindTechniciansAll(snap *domain.Snapshot, namePart string) []*domain.Technician {
	needle := lowerTrim(namePart)
	if needle == "" {
		return nil
	}
	var matches []*domain.Technician
	for _, t := range snap.Technicians {
		if strings.Contains(strings.ToLower(t.DisplayName), needle) {
			matches = append(matches, t)
		}
	}
	return matches
}

// FindProduct matches query against product names and SKUs and returns the
// first hit in snapshot order.
func FindProduct(snap *domain.Snapshot, query string) *domain.InventoryProduct {
	needle := lowerTrim(query)
	if needle == "" {
		return nil
	}
	for _, p := range snap.Products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.SKU), needle) {
			return p
		}
	}
	return nil
}
