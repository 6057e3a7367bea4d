package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MedicalRecord struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	HospitalID    uuid.UUID      `db:"hospital_id" json:"hospital_id"`
	DoctorID      *uuid.UUID     `db:"doctor_id" json:"doctor_id,omitempty"`
	AppointmentID *uuid.UUID     `db:"appointment_id" json:"appointment_id,omitempty"`
	VisitDate     string         `db:"visit_date" json:"visit_date"`
	Diagnosis     *string        `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment     *string        `db:"treatment" json:"treatment,omitempty"`
	Medications   pq.StringArray `db:"medications" json:"medications,omitempty"`
	LabResults    *string        `db:"lab_results" json:"lab_results,omitempty"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

type CreateMedicalRecordRequest struct {
	PatientID     string   `json:"patient_id" validate:"required,uuid"`
	DoctorID      string   `json:"doctor_id" validate:"omitempty,uuid"`
	AppointmentID string   `json:"appointment_id" validate:"omitempty,uuid"`
	VisitDate     string   `json:"visit_date" validate:"required,isodate"`
	Diagnosis     string   `json:"diagnosis" validate:"max=2000"`
	Treatment     string   `json:"treatment" validate:"max=2000"`
	Medications   []string `json:"medications" validate:"omitempty,dive,required,max=200"`
	LabResults    string   `json:"lab_results" validate:"max=4000"`
	Notes         string   `json:"notes" validate:"max=2000"`
}
