package protocol

import "time"

// Stage identifies one phase of the graduated protocol.
//
// The six numbered stages come from the stage catalog; "cleared" is the
// terminal pseudo-stage reached after completing stage_6. It has no
// catalog entry and permits no further stage mutation.
type Stage string

const (
	Stage1 Stage = "stage_1"
	Stage2 Stage = "stage_2"
	Stage3 Stage = "stage_3"
	Stage4 Stage = "stage_4"
	Stage5 Stage = "stage_5"
	Stage6 Stage = "stage_6"

	// StageCleared is terminal: once reached, only alert acknowledgement
	// may still mutate the protocol.
	StageCleared Stage = "cleared"
)

// Outcome records how a stage ended in the history log.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeReset     Outcome = "reset"
)

// Severity grades an alert for downstream display and paging.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ValidSeverities defines the allowed severity values.
var ValidSeverities = map[Severity]bool{
	SeverityLow:    true,
	SeverityMedium: true,
	SeverityHigh:   true,
}

// AlertTypeSymptomReturn is raised when a symptom check comes back
// positive after stage_1, forcing an implicit reset.
const AlertTypeSymptomReturn = "symptom_return"

// StageHistoryEntry is one audit record of a stage that ended, either by
// completion or by reset. Entries are append-only.
type StageHistoryEntry struct {
	Stage         Stage     `json:"stage"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
	DurationHours float64   `json:"durationHours"`
	Outcome       Outcome   `json:"outcome"`
	SupervisorID  string    `json:"supervisorId"`
	Notes         string    `json:"notes"`
}

// SymptomCheck is the most recent externally supplied symptom assessment.
type SymptomCheck struct {
	CheckedAt   time.Time `json:"checkedAt"`
	SymptomFree bool      `json:"symptomFree"`
}

// Alert is a raised condition surfaced to staff. Append-only except for
// the Acknowledged flag.
type Alert struct {
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	RaisedAt     time.Time `json:"raisedAt"`
	Acknowledged bool      `json:"acknowledged"`
}

// Protocol is the aggregate owned by the engine: one graduated recovery
// protocol for one incident and one player.
//
// Protocols serialize to a flat JSON structure with RFC 3339 timestamps;
// durations are non-negative real hours.
type Protocol struct {
	ProtocolID   string `json:"protocolId"`
	IncidentID   string `json:"incidentId"`
	PlayerID     string `json:"playerId"`
	CurrentStage Stage  `json:"currentStage"`

	// StageStartedAt marks when CurrentStage began. Always <= now.
	StageStartedAt time.Time `json:"stageStartedAt"`

	StageHistory []StageHistoryEntry `json:"stageHistory"`

	// SymptomFreeRequired is fixed at creation. When set, advancement
	// additionally requires a symptom-free check recorded during the
	// current stage.
	SymptomFreeRequired bool `json:"symptomFreeRequired"`

	// AutoProgressionEnabled is inert metadata reserved for future use.
	// The engine never auto-advances; advancement happens only on an
	// explicit call.
	AutoProgressionEnabled bool `json:"autoProgressionEnabled"`

	LastSymptomCheck *SymptomCheck `json:"lastSymptomCheck"`

	Alerts []Alert `json:"alerts"`

	// Version increments on every successful mutation and guards
	// optimistic read-modify-write at the store boundary.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cleared reports whether the protocol has reached the terminal stage.
func (p *Protocol) Cleared() bool {
	return p.CurrentStage == StageCleared
}

// Clone returns a deep copy. Engine operations clone the input snapshot
// before mutating so that a failed operation leaves the caller's copy
// untouched.
func (p *Protocol) Clone() *Protocol {
	out := *p
	out.StageHistory = make([]StageHistoryEntry, len(p.StageHistory))
	copy(out.StageHistory, p.StageHistory)
	out.Alerts = make([]Alert, len(p.Alerts))
	copy(out.Alerts, p.Alerts)
	if p.LastSymptomCheck != nil {
		check := *p.LastSymptomCheck
		out.LastSymptomCheck = &check
	}
	return &out
}
