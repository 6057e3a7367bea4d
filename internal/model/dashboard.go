package model

type SlotStatus string

const (
	SlotOK      SlotStatus = "ok"
	SlotUnknown SlotStatus = "unknown"
)

// CountSlot is one independently loaded dashboard widget. Value is only
// meaningful when Status is ok.
type CountSlot struct {
	Status SlotStatus `json:"status"`
	Value  int        `json:"value"`
	Error  string     `json:"error,omitempty"`
}

type HospitalDashboard struct {
	Hospital          *Hospital `json:"hospital"`
	Patients          CountSlot `json:"patients"`
	Doctors           CountSlot `json:"doctors"`
	AppointmentsToday CountSlot `json:"appointments_today"`
	ActiveEmergencies CountSlot `json:"active_emergencies"`
}

type AppointmentsSlot struct {
	Status SlotStatus           `json:"status"`
	Items  []AppointmentDetails `json:"items"`
	Error  string               `json:"error,omitempty"`
}

type PatientDashboard struct {
	Profile      *Profile         `json:"profile"`
	Appointments AppointmentsSlot `json:"appointments"`
}
