// Package patient holds the clinic's patient directory.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. PatientID is the human-facing handle
// printed on cards and invoices; rows are keyed by UUID.
type Patient struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        string    `db:"patient_id" json:"patient_id"`
	Name             string    `db:"name" json:"name"`
	Age              int       `db:"age" json:"age"`
	Gender           string    `db:"gender" json:"gender"`
	Phone            string    `db:"phone" json:"phone"`
	Email            *string   `db:"email" json:"email,omitempty"`
	Address          *string   `db:"address" json:"address,omitempty"`
	EmergencyContact *string   `db:"emergency_contact" json:"emergency_contact,omitempty"`
	GuardianName     *string   `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianPhone    *string   `db:"guardian_phone" json:"guardian_phone,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// guardianAgeLimit is the age below which a guardian must be on record.
const guardianAgeLimit = 20

// NeedsGuardian reports whether the patient's age requires guardian details.
func (p *Patient) NeedsGuardian() bool {
	return p.Age > 0 && p.Age < guardianAgeLimit
}
