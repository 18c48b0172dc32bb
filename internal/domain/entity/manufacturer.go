// Package entity contains the core business objects of the project.
package entity

// Manufacturer describes a configured manufacturer a case can be routed to.
// The catalog is supplied by configuration at startup; a case referencing an
// unknown manufacturer fails validation at submit time.
type Manufacturer struct {
	ID     string `json:"id"`      // Stable identifier used on cases.
	Name   string `json:"name"`    // Human-readable company name.
	Email  string `json:"email"`   // Support contact address reminders go to.
	APIURL string `json:"api_url"` // Submission endpoint for the gateway.
}
