package models

import "gorm.io/gorm"

// Recipient is read-only to the core engine: lead acquisition and
// enrichment live in the surrounding system. The engine only consumes
// the attribute bag Attrs to drive personalization and template
// variables.
type Recipient struct {
	gorm.Model
	ExternalID string `gorm:"not null;uniqueIndex" json:"external_id"`

	Email     string `gorm:"not null;index" json:"email"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Title     string `json:"title"`
	Industry  string `json:"industry"`

	// NetworkProfileURL is the LinkedIn-shaped profile URL network_connect
	// and network_message steps act against.
	NetworkProfileURL string `json:"network_profile_url,omitempty"`

	// Attrs holds every other enrichment attribute (signals, custom
	// fields) as a flat string map, serialized to JSON by the store.
	// Template Renderer and Personalizer read variables out of it.
	Attrs map[string]string `gorm:"serializer:json" json:"attrs,omitempty"`
}
