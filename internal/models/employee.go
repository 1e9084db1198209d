package models

import "time"

// SkillLevel describes an employee's skill; stored as a separate document
// referenced from the employee record.
type SkillLevel struct {
	ID          string `bson:"_id,omitempty" json:"-"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

// Employee is a directory entry. Email is unique and stored lowercased.
type Employee struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	FirstName string    `bson:"firstName" json:"firstName"`
	LastName  string    `bson:"lastName" json:"lastName"`
	Email     string    `bson:"email" json:"email"`
	Age       int       `bson:"age" json:"age"`
	DOB       time.Time `bson:"DOB" json:"DOB"`
	Active    bool      `bson:"active" json:"active"`
	// SkillID references the SkillLevel document.
	SkillID string `bson:"skill,omitempty" json:"-"`
	// Skill is populated on reads; never stored inline.
	Skill *SkillLevel `bson:"-" json:"skill,omitempty"`
}
