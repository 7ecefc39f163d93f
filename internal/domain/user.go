package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the identity the auth collaborator manages. This service reads it
// to validate ownership and to reach the linked physical profile.
type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FirstName      string              `bson:"firstName" json:"firstName"`
	LastName       string              `bson:"lastName" json:"lastName"`
	Email          string              `bson:"email" json:"email"`
	PhysicalDataID *primitive.ObjectID `bson:"physicalDataId,omitempty" json:"physicalDataId,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PhysicalData is the user's biometric profile, consumed when building
// generation requests. The only write this service performs is the
// final-weight update at session completion.
type PhysicalData struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Weight     float64            `bson:"weight" json:"weight"` // kg
	Height     float64            `bson:"height" json:"height"` // cm
	Age        int                `bson:"age" json:"age"`
	BloodSugar *float64           `bson:"bloodSugar,omitempty" json:"bloodSugar,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
