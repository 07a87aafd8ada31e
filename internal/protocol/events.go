package protocol

// Event is a plain record emitted alongside a successful mutation.
// Events replace ad hoc transition logging: the caller forwards them to
// whatever notification sink it wires (UI toast, structured log, pager).
type Event interface {
	// Kind returns a stable identifier for the event type.
	Kind() string
}

// Event kind identifiers.
const (
	KindStageAdvanced     = "stage_advanced"
	KindProtocolCompleted = "protocol_completed"
	KindProtocolReset     = "protocol_reset"
	KindAlertRaised       = "alert_raised"
)

// StageAdvanced is emitted when a protocol moves forward one stage.
type StageAdvanced struct {
	ProtocolID string `json:"protocolId"`
	PlayerID   string `json:"playerId"`
	FromStage  Stage  `json:"fromStage"`
	ToStage    Stage  `json:"toStage"`
}

func (StageAdvanced) Kind() string { return KindStageAdvanced }

// ProtocolCompleted is emitted when advancement out of stage_6 reaches
// the terminal cleared state. Always accompanied by a StageAdvanced.
type ProtocolCompleted struct {
	ProtocolID string `json:"protocolId"`
	PlayerID   string `json:"playerId"`
}

func (ProtocolCompleted) Kind() string { return KindProtocolCompleted }

// ProtocolReset is emitted when a protocol reverts to stage_1, whether
// by explicit staff action or implicitly on symptom return.
type ProtocolReset struct {
	ProtocolID string `json:"protocolId"`
	PlayerID   string `json:"playerId"`
	FromStage  Stage  `json:"fromStage"`
	Reason     string `json:"reason"`
}

func (ProtocolReset) Kind() string { return KindProtocolReset }

// AlertRaised is emitted when a new alert is appended to the protocol.
type AlertRaised struct {
	ProtocolID string   `json:"protocolId"`
	PlayerID   string   `json:"playerId"`
	AlertType  string   `json:"type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
}

func (AlertRaised) Kind() string { return KindAlertRaised }
