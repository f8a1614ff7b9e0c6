package models

import "time"

// Brain represents a named collection of items owned by a single user.
type Brain struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	UserID        string    `json:"userId"`
	IsPublic      bool      `json:"isPublic"`
	ShareToken    *string   `json:"-"` // Internal use; exposed only via the share URL
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SharedBrain is the public view of a shared brain, including the owner's username.
type SharedBrain struct {
	Brain
	OwnerUsername string `json:"ownerUsername"`
}
