package billing

import (
	"strings"

	"mehryaan-backend/internal/models"
)

// NormalizeShipping resolves the display name fields of a loosely-typed
// shipping record. FullName precedence: explicit fullName, then a legacy
// "name" field, then "firstName lastName" joined and trimmed. Missing fields
// stay empty strings; nothing is validated here.
func NormalizeShipping(details models.ShippingDetails) models.ShippingDetails {
	fallback := joinNames(details.FirstName, details.LastName)

	fullName := details.FullName
	if fullName == "" {
		fullName = details.Name
	}
	if fullName == "" {
		fullName = fallback
	}

	details.FullName = fullName
	return details
}

func joinNames(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
