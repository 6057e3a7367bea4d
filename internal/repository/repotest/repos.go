package repotest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

type identityRepo struct{ s *Store }

func (r *identityRepo) Create(_ context.Context, i *model.Identity) error {
	if err := r.s.enter("identities.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	i.Email = strings.ToLower(i.Email)
	for _, existing := range r.s.identities {
		if existing.Email == i.Email {
			return conflict(repository.ConstraintIdentityEmail)
		}
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt, i.UpdatedAt = time.Now(), time.Now()
	r.s.identities[i.ID] = *i
	r.s.writes++
	return nil
}

func (r *identityRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Identity, error) {
	if err := r.s.enter("identities.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	i, ok := r.s.identities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &i, nil
}

func (r *identityRepo) GetByEmail(_ context.Context, email string) (*model.Identity, error) {
	if err := r.s.enter("identities.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	for _, i := range r.s.identities {
		if i.Email == strings.ToLower(email) {
			found := i
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *identityRepo) MarkConfirmed(_ context.Context, id uuid.UUID, at time.Time) error {
	if err := r.s.enter("identities.confirm"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	i, ok := r.s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	if i.EmailConfirmedAt == nil {
		i.EmailConfirmedAt = &at
	}
	r.s.identities[id] = i
	r.s.writes++
	return nil
}

type profileRepo struct{ s *Store }

func (r *profileRepo) Create(_ context.Context, p *model.Profile) error {
	if err := r.s.enter("profiles.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	for _, existing := range r.s.profiles {
		if existing.IdentityID == p.IdentityID {
			return conflict(repository.ConstraintProfileIdentity)
		}
		if existing.Username == p.Username {
			return conflict(repository.ConstraintProfileUsername)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	r.s.profiles[p.ID] = *p
	r.s.writes++
	return nil
}

func (r *profileRepo) find(op string, match func(model.Profile) bool) (*model.Profile, error) {
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	var found *model.Profile
	for _, p := range r.s.profiles {
		if match(p) && (found == nil || p.CreatedAt.Before(found.CreatedAt)) {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *profileRepo) GetByIdentityID(_ context.Context, identityID uuid.UUID) (*model.Profile, error) {
	return r.find("profiles.get", func(p model.Profile) bool { return p.IdentityID == identityID })
}

func (r *profileRepo) FindByPhone(_ context.Context, phone string) (*model.Profile, error) {
	return r.find("profiles.find_phone", func(p model.Profile) bool { return p.Phone != nil && *p.Phone == phone })
}

func (r *profileRepo) FindByUsername(_ context.Context, username string) (*model.Profile, error) {
	return r.find("profiles.find_username", func(p model.Profile) bool { return p.Username == username })
}

func (r *profileRepo) Update(_ context.Context, p *model.Profile) error {
	if err := r.s.enter("profiles.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	current, ok := r.s.profiles[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.profiles {
		if id != p.ID && existing.Username == p.Username {
			return conflict(repository.ConstraintProfileUsername)
		}
	}
	current.Username, current.FullName, current.Phone, current.LocationID = p.Username, p.FullName, p.Phone, p.LocationID
	current.UpdatedAt = time.Now()
	r.s.profiles[p.ID] = current
	*p = current
	r.s.writes++
	return nil
}

type patientRepo struct{ s *Store }

func (r *patientRepo) Create(_ context.Context, p *model.Patient, events ...*model.OutboxEvent) error {
	if err := r.s.enter("patients.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	for _, existing := range r.s.patients {
		if existing.ProfileID == p.ProfileID {
			return conflict(repository.ConstraintPatientProfile)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	r.s.patients[p.ID] = *p
	r.s.addOutbox(events)
	r.s.writes++
	return nil
}

func (r *patientRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if err := r.s.enter("patients.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepo) GetByProfileID(_ context.Context, profileID uuid.UUID) (*model.Patient, error) {
	if err := r.s.enter("patients.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	for _, p := range r.s.patients {
		if p.ProfileID == profileID {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepo) Count(_ context.Context) (int, error) {
	if err := r.s.enter("patients.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return len(r.s.patients), nil
}

func (r *patientRepo) List(_ context.Context, search string) ([]*model.PatientDetails, error) {
	if err := r.s.enter("patients.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	q := strings.ToLower(search)
	out := []*model.PatientDetails{}
	for _, p := range r.s.patients {
		pr := r.s.profiles[p.ProfileID]
		if q != "" &&
			!strings.Contains(strings.ToLower(pr.FullName), q) &&
			!strings.Contains(strings.ToLower(pr.Username), q) &&
			!strings.Contains(strings.ToLower(model.Deref(pr.Phone)), q) {
			continue
		}
		out = append(out, &model.PatientDetails{Patient: p, Username: pr.Username, FullName: pr.FullName, Phone: pr.Phone})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type hospitalRepo struct{ s *Store }

func (r *hospitalRepo) Create(_ context.Context, h *model.Hospital) error {
	if err := r.s.enter("hospitals.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	for _, existing := range r.s.hospitals {
		if existing.ProfileID == h.ProfileID {
			return conflict(repository.ConstraintHospitalProfile)
		}
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt, h.UpdatedAt = time.Now(), time.Now()
	r.s.hospitals[h.ID] = *h
	r.s.writes++
	return nil
}

func (r *hospitalRepo) Update(_ context.Context, h *model.Hospital) error {
	if err := r.s.enter("hospitals.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	current, ok := r.s.hospitals[h.ID]
	if !ok {
		return repository.ErrNotFound
	}
	h.ProfileID, h.IsVerified, h.CreatedAt = current.ProfileID, current.IsVerified, current.CreatedAt
	h.UpdatedAt = time.Now()
	r.s.hospitals[h.ID] = *h
	r.s.writes++
	return nil
}

func (r *hospitalRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	if err := r.s.enter("hospitals.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	h, ok := r.s.hospitals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (r *hospitalRepo) GetByProfileID(_ context.Context, profileID uuid.UUID) (*model.Hospital, error) {
	if err := r.s.enter("hospitals.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	for _, h := range r.s.hospitals {
		if h.ProfileID == profileID {
			found := h
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *hospitalRepo) List(_ context.Context) ([]*model.Hospital, error) {
	if err := r.s.enter("hospitals.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := []*model.Hospital{}
	for _, h := range r.s.hospitals {
		cp := h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HospitalName < out[j].HospitalName })
	return out, nil
}

type doctorRepo struct{ s *Store }

func (r *doctorRepo) Create(_ context.Context, d *model.Doctor) error {
	if err := r.s.enter("doctors.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt, d.UpdatedAt = time.Now(), time.Now()
	r.s.doctors[d.ID] = *d
	r.s.writes++
	return nil
}

func (r *doctorRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if err := r.s.enter("doctors.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *doctorRepo) List(_ context.Context, filter model.DoctorFilter) ([]*model.DoctorListing, error) {
	if err := r.s.enter("doctors.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	q := strings.ToLower(filter.Query)
	out := []*model.DoctorListing{}
	for _, d := range r.s.doctors {
		if q != "" && !strings.Contains(strings.ToLower(d.Name), q) && !strings.Contains(strings.ToLower(d.Specialization), q) {
			continue
		}
		if filter.Specialization != "" && d.Specialization != filter.Specialization {
			continue
		}
		if filter.HospitalID != nil && d.HospitalID != *filter.HospitalID {
			continue
		}
		out = append(out, &model.DoctorListing{Doctor: d, HospitalName: r.s.hospitals[d.HospitalID].HospitalName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *doctorRepo) CountByHospital(_ context.Context, hospitalID uuid.UUID) (int, error) {
	if err := r.s.enter("doctors.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	n := 0
	for _, d := range r.s.doctors {
		if d.HospitalID == hospitalID {
			n++
		}
	}
	return n, nil
}

func (r *doctorRepo) ListSpecializations(_ context.Context) ([]string, error) {
	if err := r.s.enter("doctors.specializations"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, d := range r.s.doctors {
		if !seen[d.Specialization] {
			seen[d.Specialization] = true
			out = append(out, d.Specialization)
		}
	}
	sort.Strings(out)
	return out, nil
}

type appointmentRepo struct{ s *Store }

func (r *appointmentRepo) Create(_ context.Context, a *model.Appointment, events ...*model.OutboxEvent) error {
	if err := r.s.enter("appointments.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	// the column is a TIME; it renders as HH:MM
	if len(a.AppointmentTime) > 5 {
		a.AppointmentTime = a.AppointmentTime[:5]
	}
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	r.s.appointments[a.ID] = *a
	r.s.addOutbox(events)
	r.s.writes++
	return nil
}

func (r *appointmentRepo) List(_ context.Context, filter model.AppointmentFilter) ([]*model.AppointmentDetails, error) {
	if err := r.s.enter("appointments.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := []*model.AppointmentDetails{}
	for _, a := range r.s.appointments {
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.HospitalID != nil && a.HospitalID != *filter.HospitalID {
			continue
		}
		d := &model.AppointmentDetails{Appointment: a, HospitalName: r.s.hospitals[a.HospitalID].HospitalName}
		if a.DoctorID != nil {
			if doc, ok := r.s.doctors[*a.DoctorID]; ok {
				d.DoctorName = &doc.Name
			}
		}
		if p, ok := r.s.patients[a.PatientID]; ok {
			if pr, ok := r.s.profiles[p.ProfileID]; ok {
				name := pr.FullName
				d.PatientName = &name
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate != out[j].AppointmentDate {
			return out[i].AppointmentDate > out[j].AppointmentDate
		}
		return out[i].AppointmentTime > out[j].AppointmentTime
	})
	return out, nil
}

func (r *appointmentRepo) CountByHospitalOnDate(_ context.Context, hospitalID uuid.UUID, date string) (int, error) {
	if err := r.s.enter("appointments.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	n := 0
	for _, a := range r.s.appointments {
		if a.HospitalID == hospitalID && a.AppointmentDate == date {
			n++
		}
	}
	return n, nil
}

type emergencyRepo struct{ s *Store }

func (r *emergencyRepo) Create(_ context.Context, e *model.EmergencyAlert, events ...*model.OutboxEvent) error {
	if err := r.s.enter("emergencies.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = model.EmergencyStatusActive
	}
	e.CreatedAt = time.Now()
	r.s.emergencies[e.ID] = *e
	r.s.addOutbox(events)
	r.s.writes++
	return nil
}

func (r *emergencyRepo) details(e model.EmergencyAlert) *model.EmergencyAlertDetails {
	d := &model.EmergencyAlertDetails{EmergencyAlert: e, LocationName: r.s.locations[e.LocationID].Name}
	if p, ok := r.s.patients[e.PatientID]; ok {
		d.PatientName = r.s.profiles[p.ProfileID].FullName
	}
	return d
}

func (r *emergencyRepo) GetDetails(_ context.Context, id uuid.UUID) (*model.EmergencyAlertDetails, error) {
	if err := r.s.enter("emergencies.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	e, ok := r.s.emergencies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.details(e), nil
}

func (r *emergencyRepo) List(_ context.Context, patientID *uuid.UUID) ([]*model.EmergencyAlertDetails, error) {
	if err := r.s.enter("emergencies.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := []*model.EmergencyAlertDetails{}
	for _, e := range r.s.emergencies {
		if patientID != nil && e.PatientID != *patientID {
			continue
		}
		out = append(out, r.details(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *emergencyRepo) CountActive(_ context.Context) (int, error) {
	if err := r.s.enter("emergencies.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	n := 0
	for _, e := range r.s.emergencies {
		if e.Status == model.EmergencyStatusActive {
			n++
		}
	}
	return n, nil
}

type locationRepo struct{ s *Store }

func (r *locationRepo) List(_ context.Context) ([]*model.Location, error) {
	if err := r.s.enter("locations.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := []*model.Location{}
	for _, l := range r.s.locations {
		cp := l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *locationRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Location, error) {
	if err := r.s.enter("locations.get"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	l, ok := r.s.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

// SeedLocation adds reference data directly, bypassing call counting.
func (s *Store) SeedLocation(name, state string) *model.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := model.Location{ID: uuid.New(), Name: name, State: state, Type: "town", CreatedAt: time.Now()}
	s.locations[l.ID] = l
	return &l
}

type medicalRecordRepo struct{ s *Store }

func (r *medicalRecordRepo) Create(_ context.Context, m *model.MedicalRecord) error {
	if err := r.s.enter("medical.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.s.medicalRecords[m.ID] = *m
	r.s.writes++
	return nil
}

func (r *medicalRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	if err := r.s.enter("medical.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := []*model.MedicalRecord{}
	for _, m := range r.s.medicalRecords {
		if m.PatientID == patientID {
			cp := m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate > out[j].VisitDate })
	return out, nil
}

type outboxRepo struct{ s *Store }

func (r *outboxRepo) GetPendingEventsWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if err := r.s.enter("outbox.pending"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := []*model.OutboxEvent{}
	for _, ev := range r.s.outbox {
		if len(out) == limit {
			break
		}
		if ev.Status == model.OutboxStatusPending {
			ev.RetryCount++
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *outboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	if err := r.s.enter("outbox.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	for _, ev := range r.s.outbox {
		if ev.ID == id {
			ev.Status = status
			ev.ErrorMessage = errMsg
			if status == model.OutboxStatusProcessed {
				now := time.Now()
				ev.ProcessedAt = &now
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	if err := r.s.enter("outbox.cleanup"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	kept := r.s.outbox[:0]
	var removed int64
	for _, ev := range r.s.outbox {
		if ev.Status == model.OutboxStatusProcessed && ev.ProcessedAt != nil && ev.ProcessedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	r.s.outbox = kept
	return removed, nil
}
