package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is the registration record stored in the `students` collection.
// Field names mirror the submitted form; records are created once and never
// mutated or removed.
type Student struct {
	ID         primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ReadableID string             `json:"readableId" bson:"readableId"`

	NomComplet    string `json:"nomComplet" bson:"nomComplet"`
	Telephone     string `json:"telephone,omitempty" bson:"telephone,omitempty"`
	DateNaissance string `json:"dateNaissance,omitempty" bson:"dateNaissance,omitempty"`
	Adresse       string `json:"adresse,omitempty" bson:"adresse,omitempty"`
	Eglise        string `json:"eglise,omitempty" bson:"eglise,omitempty"`
	Profession    string `json:"profession,omitempty" bson:"profession,omitempty"`
	Option        string `json:"option,omitempty" bson:"option,omitempty"`

	// Referral / relationship metadata, free-form.
	IDApp       string `json:"idApp,omitempty" bson:"idApp,omitempty"`
	NomTree     string `json:"nomTree,omitempty" bson:"nomTree,omitempty"`
	TelTree     string `json:"telTree,omitempty" bson:"telTree,omitempty"`
	Liaison     string `json:"liaison,omitempty" bson:"liaison,omitempty"`
	Departement string `json:"departement,omitempty" bson:"departement,omitempty"`

	// CreatedByTelegramID is set only when the submission carried a
	// verified WebApp signature.
	CreatedByTelegramID *int64    `json:"createdByTelegramId,omitempty" bson:"createdByTelegramId,omitempty"`
	DateAjout           time.Time `json:"dateAjout" bson:"dateAjout"`
}
