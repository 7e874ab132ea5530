package entity

import "time"

// Class represents a class/form group used to bucket students in reports.
type Class struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewClass creates a new Class entity.
func NewClass(id, name string) *Class {
	return &Class{
		ID:        id,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// IsActive checks if the class is active.
func (c *Class) IsActive() bool {
	return c.Active
}
