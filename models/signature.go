package models

import "gorm.io/gorm"

// Signature is one named signature a Sender can compose into outgoing
// email. A sender may hold several (personal, team, seasonal); exactly
// one is marked IsDefault at a time, mirroring
// signature_manager.get_default_signature in the system this engine
// replaces. PlainBody is stored as given, not derived from HTMLBody on
// save; signature.Compose extracts plain text from HTMLBody at send
// time when PlainBody is empty.
type Signature struct {
	gorm.Model
	SenderID  uint   `gorm:"not null;index" json:"sender_id"`
	Name      string `gorm:"not null" json:"name"`
	HTMLBody  string `gorm:"type:text" json:"html_body"`
	PlainBody string `gorm:"type:text" json:"plain_body"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`
}
