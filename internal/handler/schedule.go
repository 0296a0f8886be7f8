package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/internal/metrics"
	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/generator"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// ScheduleHandler serves schedule generation.
type ScheduleHandler struct {
	collaborators CollaboratorStore
	preferences   PreferenceStore
	nuclei        NucleoStore
	shifts        ShiftStore
	configs       ConfigStore
	criticalities CriticalityStore

	generationTimeout time.Duration
	maxRangeDays      int
}

// NewScheduleHandler creates the handler.
func NewScheduleHandler(
	collaborators CollaboratorStore,
	preferences PreferenceStore,
	nuclei NucleoStore,
	shifts ShiftStore,
	configs ConfigStore,
	criticalities CriticalityStore,
	generationTimeout time.Duration,
	maxRangeDays int,
) *ScheduleHandler {
	return &ScheduleHandler{
		collaborators:     collaborators,
		preferences:       preferences,
		nuclei:            nuclei,
		shifts:            shifts,
		configs:           configs,
		criticalities:     criticalities,
		generationTimeout: generationTimeout,
		maxRangeDays:      maxRangeDays,
	}
}

// GenerateRequest is the body of the generation endpoint. An empty
// nucleo_ids list means every active nucleo of the tenant.
type GenerateRequest struct {
	TenantID  string             `json:"tenant_id"`
	StartDate string             `json:"data_inizio"` // YYYY-MM-DD
	EndDate   string             `json:"data_fine"`   // YYYY-MM-DD
	NucleoIDs []string           `json:"nucleo_ids,omitempty"`
	Persist   bool               `json:"persisti"` // store the proposal
	Options   *generator.Options `json:"options,omitempty"`
}

// GenerateResponse is the generation payload. ErrorCode is set only
// when the run computed a proposal but a later step failed; the
// proposal, warnings and metrics still ride along.
type GenerateResponse struct {
	Success         bool                 `json:"success"`
	Message         string               `json:"message,omitempty"`
	ErrorCode       string               `json:"error_code,omitempty"`
	Mode            model.SchedulingMode `json:"modalita"`
	AutoPublishable bool                 `json:"auto_pubblicabile"`
	Shifts          []*model.Shift       `json:"turni"`
	Assignments     []*model.Assignment  `json:"assegnazioni"`
	Warnings        []generator.Warning  `json:"warnings"`
	Metrics         generator.Metrics    `json:"metrics"`
}

// Generate handles POST /api/v1/schedules/generate.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only POST is supported"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "failed to decode request body").WithCause(err))
		return
	}

	tenantID, appErr := parseTenantID(req.TenantID)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	dr := model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate}
	if err := dr.Validate(); err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidTimeRange, err.Error()))
		return
	}
	if h.maxRangeDays > 0 && len(dr.Days()) > h.maxRangeDays {
		respondError(w, apperrors.New(apperrors.CodeInvalidTimeRange, "date range exceeds the maximum allowed span"))
		return
	}

	ctx := r.Context()

	snap, err := loadSnapshot(ctx, tenantID, h.configs, h.criticalities)
	if err != nil {
		respondError(w, err)
		return
	}

	// DISABLED is an explicit tenant choice, reported as a client
	// error, never silently ignored.
	if snap.Config.Mode == model.ModeDisabled {
		respondError(w, apperrors.New(apperrors.CodeGenerationDisabled, "automatic scheduling is disabled for this tenant"))
		return
	}

	scope, appErr := parseNucleoScope(req.NucleoIDs)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	in, err := h.loadInput(ctx, tenantID, dr, snap.Config, req.Options, scope)
	if err != nil {
		respondError(w, err)
		return
	}

	genCtx := ctx
	if h.generationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, h.generationTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := generator.New(snap).Generate(genCtx, *in)
	if err != nil {
		metrics.RecordGeneration(tenantID.String(), "error", time.Since(start), 0, 0)
		respondError(w, apperrors.Wrap(err, apperrors.CodeInternal, "generation failed"))
		return
	}

	status := "ok"
	if !res.Success {
		status = "aborted"
	}
	metrics.RecordGeneration(tenantID.String(), status, time.Since(start),
		res.Metrics.UnderfilledSlots, res.Metrics.EquitySpread)

	autoPublish := h.autoPublishable(snap.Config, in.Options, res)

	if req.Persist && res.Success && len(res.Shifts) > 0 {
		if err := h.persist(ctx, res, autoPublish); err != nil {
			// The proposal was computed; surface the storage failure
			// together with what was generated so the caller can retry
			// persistence alone.
			appErr := apperrors.Wrap(err, apperrors.CodeDatabaseError, "generated proposal could not be stored")
			respondJSON(w, appErr.HTTPStatus, GenerateResponse{
				Success:     false,
				Message:     appErr.Message,
				ErrorCode:   string(appErr.Code),
				Mode:        snap.Config.Mode,
				Shifts:      res.Shifts,
				Assignments: res.Assignments,
				Warnings:    res.Warnings,
				Metrics:     res.Metrics,
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:         res.Success,
		Message:         res.Message,
		Mode:            snap.Config.Mode,
		AutoPublishable: autoPublish,
		Shifts:          res.Shifts,
		Assignments:     res.Assignments,
		Warnings:        res.Warnings,
		Metrics:         res.Metrics,
	})
}

// parseNucleoScope validates the optional nucleo id list.
func parseNucleoScope(raw []string) ([]uuid.UUID, *apperrors.AppError) {
	if len(raw) == 0 {
		return nil, nil
	}
	scope := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperrors.InvalidInput("nucleo_ids", "invalid uuid: "+s)
		}
		scope = append(scope, id)
	}
	return scope, nil
}

// loadInput gathers the immutable engine input for the run. A non-empty
// scope restricts generation to those nuclei; an id the tenant does not
// own reads as missing.
func (h *ScheduleHandler) loadInput(
	ctx context.Context,
	tenantID uuid.UUID,
	dr model.DateRange,
	cfg model.SchedulingConfig,
	opts *generator.Options,
	scope []uuid.UUID,
) (*generator.Input, error) {
	nuclei, err := h.nuclei.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(scope) > 0 {
		byID := make(map[uuid.UUID]*model.Nucleo, len(nuclei))
		for _, n := range nuclei {
			byID[n.ID] = n
		}
		scoped := make([]*model.Nucleo, 0, len(scope))
		for _, id := range scope {
			n, ok := byID[id]
			if !ok {
				return nil, apperrors.NotFound("nucleo", id.String())
			}
			scoped = append(scoped, n)
		}
		nuclei = scoped
	}
	collaborators, err := h.collaborators.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	preferences, err := h.preferences.ListApprovedForTenant(ctx, tenantID, dr.StartDate, dr.EndDate)
	if err != nil {
		return nil, err
	}

	// Existing commitments around the range feed rest-gap and weekly
	// cap checks; a week of margin on both sides covers every sliding
	// window.
	histStart, histEnd := widenRange(dr, 7)
	existingShifts, err := h.shifts.ListByRange(ctx, tenantID, histStart, histEnd)
	if err != nil {
		return nil, err
	}
	existingAssignments, err := h.shifts.ListAssignmentsByRange(ctx, tenantID, histStart, histEnd)
	if err != nil {
		return nil, err
	}

	options := generator.Options{
		RespectPreferences: cfg.RespectPreferences,
		OptimizeEquity:     true,
	}
	if opts != nil {
		options = *opts
	}

	return &generator.Input{
		TenantID:            tenantID,
		Range:               dr,
		Nuclei:              nuclei,
		Collaborators:       collaborators,
		Preferences:         preferences,
		ExistingShifts:      existingShifts,
		ExistingAssignments: existingAssignments,
		Options:             options,
	}, nil
}

// autoPublishable reports whether the run may be published without
// review: the mode must allow it and every proposed assignment must
// meet the stricter of the tenant's confidence threshold and the
// request's min_confidenza option.
func (h *ScheduleHandler) autoPublishable(cfg model.SchedulingConfig, opts generator.Options, res *generator.Result) bool {
	if !cfg.Mode.AllowsAutoPublish() {
		return false
	}
	threshold := cfg.ConfidenceThreshold
	if opts.MinConfidence > threshold {
		threshold = opts.MinConfidence
	}
	for _, a := range res.Assignments {
		if a.Confidence < threshold {
			return false
		}
	}
	return len(res.Assignments) > 0
}

func (h *ScheduleHandler) persist(ctx context.Context, res *generator.Result, publish bool) error {
	return h.shifts.CreateBatch(ctx, res.Shifts, res.Assignments, publish)
}

// widenRange extends the range by margin days on both sides, for
// history loading only.
func widenRange(dr model.DateRange, margin int) (string, string) {
	start, err1 := time.Parse(model.DateFormat, dr.StartDate)
	end, err2 := time.Parse(model.DateFormat, dr.EndDate)
	if err1 != nil || err2 != nil {
		return dr.StartDate, dr.EndDate
	}
	return start.AddDate(0, 0, -margin).Format(model.DateFormat),
		end.AddDate(0, 0, margin).Format(model.DateFormat)
}
