package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// In-memory fakes for the store interfaces.

type fakeCollaboratorStore struct {
	byID map[uuid.UUID]*model.Collaborator
}

func (f *fakeCollaboratorStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*model.Collaborator, error) {
	c, ok := f.byID[id]
	if !ok || c.TenantID != tenantID {
		return nil, apperrors.NotFound("collaborator", id.String())
	}
	return c, nil
}

func (f *fakeCollaboratorStore) ListActive(_ context.Context, tenantID uuid.UUID) ([]*model.Collaborator, error) {
	var out []*model.Collaborator
	for _, c := range f.byID {
		if c.TenantID == tenantID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakePreferenceStore struct {
	prefs []*model.Preference
}

func (f *fakePreferenceStore) Create(_ context.Context, p *model.Preference) error {
	for _, existing := range f.prefs {
		if existing.CollaboratorID == p.CollaboratorID && existing.Date == p.Date &&
			equalClock(existing.StartTime, p.StartTime) {
			return apperrors.DuplicatePreference(p.CollaboratorID.String(), p.Date)
		}
	}
	f.prefs = append(f.prefs, p)
	return nil
}

func equalClock(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *fakePreferenceStore) ListApproved(_ context.Context, collaboratorID uuid.UUID, date string) ([]*model.Preference, error) {
	var out []*model.Preference
	for _, p := range f.prefs {
		if p.CollaboratorID == collaboratorID && p.Date == date && p.Status == model.StatusApproved {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePreferenceStore) ListApprovedForTenant(_ context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Preference, error) {
	var out []*model.Preference
	for _, p := range f.prefs {
		if p.TenantID == tenantID && p.Date >= startDate && p.Date <= endDate && p.Status == model.StatusApproved {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeNucleoStore struct {
	nuclei []*model.Nucleo
}

func (f *fakeNucleoStore) ListActive(_ context.Context, tenantID uuid.UUID) ([]*model.Nucleo, error) {
	var out []*model.Nucleo
	for _, n := range f.nuclei {
		if n.TenantID == tenantID && n.IsActive {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeShiftStore struct {
	shifts      []*model.Shift
	assignments []*model.Assignment
	published   int
	failCreate  bool
}

func (f *fakeShiftStore) CreateBatch(_ context.Context, shifts []*model.Shift, assignments []*model.Assignment, publish bool) error {
	if f.failCreate {
		return apperrors.New(apperrors.CodeDatabaseError, "storage unavailable")
	}
	f.shifts = append(f.shifts, shifts...)
	f.assignments = append(f.assignments, assignments...)
	if publish {
		f.published += len(shifts)
	}
	return nil
}

func (f *fakeShiftStore) ListByRange(_ context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Shift, error) {
	var out []*model.Shift
	for _, s := range f.shifts {
		if s.TenantID == tenantID && s.Date >= startDate && s.Date <= endDate {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShiftStore) ListAssignmentsByRange(_ context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Assignment, error) {
	shiftByID := make(map[uuid.UUID]*model.Shift)
	for _, s := range f.shifts {
		shiftByID[s.ID] = s
	}
	var out []*model.Assignment
	for _, a := range f.assignments {
		s := shiftByID[a.ShiftID]
		if a.TenantID == tenantID && s != nil && s.Date >= startDate && s.Date <= endDate {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCriticalityStore struct {
	periods   []*model.CriticalPeriod
	recurring []*model.RecurringCriticality
}

func (f *fakeCriticalityStore) ListActivePeriods(_ context.Context, _ uuid.UUID) ([]*model.CriticalPeriod, error) {
	return f.periods, nil
}

func (f *fakeCriticalityStore) ListActiveRecurring(_ context.Context, _ uuid.UUID) ([]*model.RecurringCriticality, error) {
	return f.recurring, nil
}

type fakeConfigStore struct {
	cfg   *model.SchedulingConfig
	hours *model.OpeningHours
}

func (f *fakeConfigStore) Get(_ context.Context, _ uuid.UUID) (*model.SchedulingConfig, error) {
	return f.cfg, nil
}

func (f *fakeConfigStore) Upsert(_ context.Context, c *model.SchedulingConfig) error {
	f.cfg = c
	return nil
}

func (f *fakeConfigStore) GetOpeningHours(_ context.Context, _ uuid.UUID) (*model.OpeningHours, error) {
	return f.hours, nil
}

// Shared test fixture.

type fixture struct {
	tenantID uuid.UUID
	collabID uuid.UUID
	nucleoID uuid.UUID

	collaborators *fakeCollaboratorStore
	preferences   *fakePreferenceStore
	nuclei        *fakeNucleoStore
	shifts        *fakeShiftStore
	criticalities *fakeCriticalityStore
	configs       *fakeConfigStore
}

func newFixture() *fixture {
	tenantID := uuid.New()
	nucleo := &model.Nucleo{
		BaseModel:  model.NewBaseModel(),
		TenantID:   tenantID,
		Name:       "cucina",
		MinMembers: 1,
		IsActive:   true,
	}
	collab := &model.Collaborator{
		BaseModel:   model.NewBaseModel(),
		TenantID:    tenantID,
		FirstName:   "Anna",
		LastName:    "Rossi",
		HoursPolicy: model.HoursFlexible,
		NucleoIDs:   []uuid.UUID{nucleo.ID},
		IsActive:    true,
	}
	return &fixture{
		tenantID:      tenantID,
		collabID:      collab.ID,
		nucleoID:      nucleo.ID,
		collaborators: &fakeCollaboratorStore{byID: map[uuid.UUID]*model.Collaborator{collab.ID: collab}},
		preferences:   &fakePreferenceStore{},
		nuclei:        &fakeNucleoStore{nuclei: []*model.Nucleo{nucleo}},
		shifts:        &fakeShiftStore{},
		criticalities: &fakeCriticalityStore{},
		configs:       &fakeConfigStore{},
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestPreferenceValidateApproved(t *testing.T) {
	f := newFixture()
	h := NewPreferenceHandler(f.collaborators, f.preferences, f.configs, f.criticalities)

	rec := postJSON(t, h.Validate, "/api/v1/preferences/validate", map[string]interface{}{
		"tenant_id":        f.tenantID.String(),
		"collaboratore_id": f.collabID.String(),
		"data":             "2026-03-04",
		"tipo":             "AVAILABLE",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res ValidateResponse
	decode(t, rec, &res)
	if res.Status != model.StatusApproved || !res.IsValid {
		t.Errorf("verdict = %s valid=%v, want approved", res.Status, res.IsValid)
	}
}

func TestPreferenceValidateConflictIs200(t *testing.T) {
	f := newFixture()
	start, end := "08:00", "12:00"
	f.preferences.prefs = append(f.preferences.prefs, &model.Preference{
		BaseModel:      model.NewBaseModel(),
		TenantID:       f.tenantID,
		CollaboratorID: f.collabID,
		Date:           "2026-03-04",
		StartTime:      &start,
		EndTime:        &end,
		Type:           model.PreferenceAvailable,
		Status:         model.StatusApproved,
	})
	h := NewPreferenceHandler(f.collaborators, f.preferences, f.configs, f.criticalities)

	rec := postJSON(t, h.Validate, "/api/v1/preferences/validate", map[string]interface{}{
		"tenant_id":        f.tenantID.String(),
		"collaboratore_id": f.collabID.String(),
		"data":             "2026-03-04",
		"ora_inizio":       "11:00",
		"ora_fine":         "15:00",
		"tipo":             "PREFERRED",
	})

	// A rejection is a successful validation, not an HTTP error.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res ValidateResponse
	decode(t, rec, &res)
	if res.Status != model.StatusRejectedConflict {
		t.Errorf("verdict = %s, want REJECTED_CONFLICT", res.Status)
	}
}

func TestPreferenceValidateBadInput(t *testing.T) {
	f := newFixture()
	h := NewPreferenceHandler(f.collaborators, f.preferences, f.configs, f.criticalities)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			"inverted window",
			map[string]interface{}{
				"tenant_id":        f.tenantID.String(),
				"collaboratore_id": f.collabID.String(),
				"data":             "2026-03-04",
				"ora_inizio":       "15:00",
				"ora_fine":         "11:00",
				"tipo":             "AVAILABLE",
			},
		},
		{
			"half-open window",
			map[string]interface{}{
				"tenant_id":        f.tenantID.String(),
				"collaboratore_id": f.collabID.String(),
				"data":             "2026-03-04",
				"ora_inizio":       "08:00",
				"tipo":             "AVAILABLE",
			},
		},
		{
			"bad date",
			map[string]interface{}{
				"tenant_id":        f.tenantID.String(),
				"collaboratore_id": f.collabID.String(),
				"data":             "04/03/2026",
				"tipo":             "AVAILABLE",
			},
		},
		{
			"unknown type",
			map[string]interface{}{
				"tenant_id":        f.tenantID.String(),
				"collaboratore_id": f.collabID.String(),
				"data":             "2026-03-04",
				"tipo":             "MAYBE",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Validate, "/api/v1/preferences/validate", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPreferenceValidateUnknownCollaborator(t *testing.T) {
	f := newFixture()
	h := NewPreferenceHandler(f.collaborators, f.preferences, f.configs, f.criticalities)

	rec := postJSON(t, h.Validate, "/api/v1/preferences/validate", map[string]interface{}{
		"tenant_id":        f.tenantID.String(),
		"collaboratore_id": uuid.New().String(),
		"data":             "2026-03-04",
		"tipo":             "AVAILABLE",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPreferenceValidateCrossTenant(t *testing.T) {
	f := newFixture()
	h := NewPreferenceHandler(f.collaborators, f.preferences, f.configs, f.criticalities)

	// Valid collaborator id, wrong tenant: indistinguishable from a
	// missing one.
	rec := postJSON(t, h.Validate, "/api/v1/preferences/validate", map[string]interface{}{
		"tenant_id":        uuid.New().String(),
		"collaboratore_id": f.collabID.String(),
		"data":             "2026-03-04",
		"tipo":             "AVAILABLE",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPreferenceCreatePersistsVerdict(t *testing.T) {
	f := newFixture()
	h := NewPreferenceHandler(f.collaborators, f.preferences, f.configs, f.criticalities)

	body := map[string]interface{}{
		"tenant_id":        f.tenantID.String(),
		"collaboratore_id": f.collabID.String(),
		"data":             "2026-03-04",
		"tipo":             "UNAVAILABLE",
	}

	rec := postJSON(t, h.Create, "/api/v1/preferences", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var res CreateResponse
	decode(t, rec, &res)
	if res.Preference == nil || res.Preference.Status != model.StatusApproved {
		t.Fatalf("stored preference = %+v, want approved", res.Preference)
	}
	if res.Preference.ValidatedAt == nil {
		t.Error("ValidatedAt must be stamped")
	}
	if len(f.preferences.prefs) != 1 {
		t.Fatalf("stored %d preferences, want 1", len(f.preferences.prefs))
	}

	// Identical resubmission conflicts.
	rec = postJSON(t, h.Create, "/api/v1/preferences", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func newScheduleHandler(f *fixture) *ScheduleHandler {
	return NewScheduleHandler(
		f.collaborators, f.preferences, f.nuclei, f.shifts, f.configs, f.criticalities,
		5*time.Second, 92,
	)
}

func TestScheduleGenerate(t *testing.T) {
	f := newFixture()
	h := newScheduleHandler(f)

	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-06",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res GenerateResponse
	decode(t, rec, &res)
	if !res.Success {
		t.Fatalf("success = false: %s", res.Message)
	}
	if len(res.Shifts) != 5 || len(res.Assignments) != 5 {
		t.Errorf("shifts/assignments = %d/%d, want 5/5", len(res.Shifts), len(res.Assignments))
	}
	if res.Mode != model.ModeSuggestion {
		t.Errorf("mode = %s, want default SUGGESTION", res.Mode)
	}
	if res.AutoPublishable {
		t.Error("SUGGESTION mode must never auto-publish")
	}
	if len(f.shifts.shifts) != 0 {
		t.Error("nothing should be persisted without persisti=true")
	}
}

func TestScheduleGeneratePersist(t *testing.T) {
	f := newFixture()
	f.configs.cfg = &model.SchedulingConfig{
		TenantID:            f.tenantID,
		Mode:                model.ModeAutonomous,
		ConfidenceThreshold: 0.7,
		RespectPreferences:  true,
		MaxWeeklyHours:      40,
		MinRestHours:        11,
	}
	h := newScheduleHandler(f)

	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-03",
		"persisti":    true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res GenerateResponse
	decode(t, rec, &res)
	if !res.AutoPublishable {
		t.Error("AUTONOMOUS with confident assignments must be auto-publishable")
	}
	if len(f.shifts.shifts) != 2 {
		t.Errorf("persisted %d shifts, want 2", len(f.shifts.shifts))
	}
	if f.shifts.published != 2 {
		t.Errorf("published %d shifts, want 2", f.shifts.published)
	}
}

func TestScheduleGenerateBadRange(t *testing.T) {
	f := newFixture()
	h := newScheduleHandler(f)

	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-06",
		"data_fine":   "2026-03-02",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestScheduleGenerateDisabled(t *testing.T) {
	f := newFixture()
	f.configs.cfg = &model.SchedulingConfig{
		TenantID:       f.tenantID,
		Mode:           model.ModeDisabled,
		MaxWeeklyHours: 40,
		MinRestHours:   11,
	}
	h := newScheduleHandler(f)

	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-06",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for DISABLED mode", rec.Code)
	}
}

func TestScheduleGenerateNucleoScope(t *testing.T) {
	f := newFixture()
	sala := &model.Nucleo{
		BaseModel:  model.NewBaseModel(),
		TenantID:   f.tenantID,
		Name:       "sala",
		MinMembers: 1,
		IsActive:   true,
	}
	f.nuclei.nuclei = append(f.nuclei.nuclei, sala)
	cameriere := &model.Collaborator{
		BaseModel:   model.NewBaseModel(),
		TenantID:    f.tenantID,
		FirstName:   "Bruno",
		LastName:    "Verdi",
		HoursPolicy: model.HoursFlexible,
		NucleoIDs:   []uuid.UUID{sala.ID},
		IsActive:    true,
	}
	f.collaborators.byID[cameriere.ID] = cameriere
	h := newScheduleHandler(f)

	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-03",
		"nucleo_ids":  []string{sala.ID.String()},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res GenerateResponse
	decode(t, rec, &res)
	if len(res.Shifts) != 2 {
		t.Fatalf("shifts = %d, want 2 for the scoped nucleo only", len(res.Shifts))
	}
	for _, s := range res.Shifts {
		if s.NucleoID != sala.ID {
			t.Errorf("shift generated for out-of-scope nucleo %s", s.NucleoID)
		}
	}

	// An id the tenant does not own reads as missing.
	rec = postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-03",
		"nucleo_ids":  []string{uuid.New().String()},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown nucleo status = %d, want 404", rec.Code)
	}

	rec = postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-03",
		"nucleo_ids":  []string{"not-a-uuid"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed nucleo id status = %d, want 400", rec.Code)
	}
}

func TestScheduleGenerateMinConfidenceGate(t *testing.T) {
	f := newFixture()
	f.configs.cfg = &model.SchedulingConfig{
		TenantID:            f.tenantID,
		Mode:                model.ModeAutonomous,
		ConfidenceThreshold: 0.7,
		RespectPreferences:  true,
		MaxWeeklyHours:      40,
		MinRestHours:        11,
	}
	h := newScheduleHandler(f)

	body := map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-03",
	}
	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", body)
	var res GenerateResponse
	decode(t, rec, &res)
	if !res.AutoPublishable {
		t.Fatal("assignments above the tenant threshold must be auto-publishable")
	}

	// A stricter per-request floor overrides the tenant threshold.
	body["options"] = map[string]interface{}{
		"rispetta_preferenze": true,
		"ottimizza_equita":    true,
		"min_confidenza":      0.99,
	}
	rec = postJSON(t, h.Generate, "/api/v1/schedules/generate", body)
	decode(t, rec, &res)
	if res.AutoPublishable {
		t.Error("min_confidenza above every assignment's confidence must block auto-publish")
	}
}

func TestScheduleGenerateStoreFailure(t *testing.T) {
	f := newFixture()
	f.shifts.failCreate = true
	h := newScheduleHandler(f)

	rec := postJSON(t, h.Generate, "/api/v1/schedules/generate", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-02",
		"data_fine":   "2026-03-03",
		"persisti":    true,
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 on storage failure: %s", rec.Code, rec.Body.String())
	}

	// The computed proposal rides along so the caller can retry
	// persistence without regenerating.
	var res GenerateResponse
	decode(t, rec, &res)
	if res.Success {
		t.Error("success must be false when storage failed")
	}
	if res.ErrorCode != string(apperrors.CodeDatabaseError) {
		t.Errorf("error_code = %q, want DATABASE_ERROR", res.ErrorCode)
	}
	if len(res.Shifts) != 2 {
		t.Errorf("shifts in failure body = %d, want the 2 generated", len(res.Shifts))
	}
	if res.Metrics.SlotsGenerated != 2 {
		t.Errorf("metrics.slots_generated = %d, want 2", res.Metrics.SlotsGenerated)
	}
}

func TestConfigGetDefault(t *testing.T) {
	f := newFixture()
	h := NewConfigHandler(f.configs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduling-config?tenant_id="+f.tenantID.String(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res ConfigResponse
	decode(t, rec, &res)
	if !res.Default {
		t.Error("tenant with no stored row must be flagged default")
	}
	if res.Config.Mode != model.ModeSuggestion {
		t.Errorf("default mode = %s, want SUGGESTION", res.Config.Mode)
	}
}

func TestConfigPutThenGet(t *testing.T) {
	f := newFixture()
	h := NewConfigHandler(f.configs)

	body, _ := json.Marshal(map[string]interface{}{
		"tenant_id":             f.tenantID.String(),
		"modalita":              "SEMI_AUTO",
		"soglia_confidenza":     0.85,
		"considera_preferenze":  true,
		"rispetta_vincoli_hard": true,
		"max_ore_settimanali":   38,
		"min_ore_riposo":        12,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/scheduling-config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/scheduling-config?tenant_id="+f.tenantID.String(), nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var res ConfigResponse
	decode(t, rec, &res)
	if res.Default {
		t.Error("stored configuration must not be flagged default")
	}
	if res.Config.Mode != model.ModeSemiAuto || res.Config.ConfidenceThreshold != 0.85 {
		t.Errorf("stored config = %+v", res.Config)
	}
}

func TestConfigPutRejectsBadValues(t *testing.T) {
	f := newFixture()
	h := NewConfigHandler(f.configs)

	body, _ := json.Marshal(map[string]interface{}{
		"tenant_id":         f.tenantID.String(),
		"modalita":          "TURBO",
		"soglia_confidenza": 1.5,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/scheduling-config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCatalogGet(t *testing.T) {
	f := newFixture()
	minStaff := 4
	f.criticalities.periods = []*model.CriticalPeriod{{
		BaseModel:  model.NewBaseModel(),
		TenantID:   f.tenantID,
		Name:       "estate",
		StartDate:  "2026-08-01",
		EndDate:    "2026-08-31",
		Multiplier: 1.5,
		MinStaff:   &minStaff,
		IsActive:   true,
	}}
	h := NewCatalogHandler(f.configs, f.criticalities)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog?tenant_id="+f.tenantID.String(), nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res CatalogResponse
	decode(t, rec, &res)
	if !res.ConfigIsDefault {
		t.Error("no stored config means the default flag must be set")
	}
	if len(res.CriticalPeriods) != 1 || res.CriticalPeriods[0].Name != "estate" {
		t.Errorf("critical periods = %+v", res.CriticalPeriods)
	}
	if res.RecurringCriticalities == nil {
		t.Error("empty recurring criticalities must serialize as [], not null")
	}
}

func TestStatsEquity(t *testing.T) {
	f := newFixture()
	shift := &model.Shift{
		BaseModel: model.NewBaseModel(),
		TenantID:  f.tenantID,
		NucleoID:  f.nucleoID,
		Date:      "2026-03-02",
		StartTime: "09:00",
		EndTime:   "17:00",
		Required:  1,
	}
	f.shifts.shifts = []*model.Shift{shift}
	f.shifts.assignments = []*model.Assignment{{
		BaseModel:      model.NewBaseModel(),
		TenantID:       f.tenantID,
		ShiftID:        shift.ID,
		CollaboratorID: f.collabID,
	}}
	h := NewStatsHandler(f.collaborators, f.shifts)

	rec := postJSON(t, h.Equity, "/api/v1/stats/equity", map[string]interface{}{
		"tenant_id":   f.tenantID.String(),
		"data_inizio": "2026-03-01",
		"data_fine":   "2026-03-31",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res map[string]interface{}
	decode(t, rec, &res)
	if res["ore_medie"] != float64(8) {
		t.Errorf("mean hours = %v, want 8", res["ore_medie"])
	}
}
