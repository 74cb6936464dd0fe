package domain

import "fmt"

// Capability gates access to one functional area of the API. The set is
// closed: values outside the enumeration are rejected at load time.
type Capability string

const (
	CapDashboard Capability = "dashboard"
	CapInventory Capability = "inventory"
	CapSales     Capability = "sales"
	CapPurchases Capability = "purchases"
	CapExpenses  Capability = "expenses"
	CapCustomers Capability = "customers"
	CapStaffWork Capability = "staff_work"
	CapReports   Capability = "reports"
	CapDocuments Capability = "documents"
	CapVault     Capability = "vault"
	CapSettings  Capability = "settings"
	CapUsers     Capability = "users"
	CapBackup    Capability = "backup"
)

var allCapabilities = []Capability{
	CapDashboard, CapInventory, CapSales, CapPurchases, CapExpenses,
	CapCustomers, CapStaffWork, CapReports, CapDocuments, CapVault,
	CapSettings, CapUsers, CapBackup,
}

func AllCapabilities() []Capability {
	out := make([]Capability, len(allCapabilities))
	copy(out, allCapabilities)
	return out
}

func ParseCapability(s string) (Capability, error) {
	for _, c := range allCapabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// ParseCapabilities validates a stored capability list against the closed
// enumeration. Any unknown value fails the whole list.
func ParseCapabilities(values []string) ([]Capability, error) {
	out := make([]Capability, 0, len(values))
	for _, v := range values {
		c, err := ParseCapability(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Allows reports whether the actor may use the given capability. Admins
// implicitly hold every capability.
func (a Actor) Allows(c Capability) bool {
	if a.Role == RoleAdmin {
		return true
	}
	for _, have := range a.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
