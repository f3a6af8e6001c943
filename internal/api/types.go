package api

// Payload records for the read-only simulation API. Shapes mirror the server's
// wire format exactly; all validation happens in the client decode path, so
// consumers can rely on these being structurally sound.

// Agent categories.
const (
	AgentBenign  = "benign"
	AgentDeviant = "deviant"
)

// Event type tags emitted by the server's event logger.
const (
	EventAgentMove       = "agent_move"
	EventAgentPerceive   = "agent_perceive"
	EventAgentPlan       = "agent_plan"
	EventAgentReflect    = "agent_reflect"
	EventMessageSent     = "message_sent"
	EventMessageReceived = "message_received"
	EventConvStart       = "conversation_start"
	EventConvEnd         = "conversation_end"
	EventTacticUsed      = "tactic_used"
	EventPhaseChange     = "goal_phase_change"
	EventInfoRevealed    = "information_revealed"
	EventTrustChange     = "trust_change"
	EventStepStart       = "step_start"
	EventStepEnd         = "step_end"
	EventSimStart        = "simulation_start"
	EventSimEnd          = "simulation_end"
)

// Sensitivity tiers for extracted information.
const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityHigh   = "high"
)

// Snapshot is a point-in-time view of the running simulation. It is replaced
// wholesale on every successful poll, never merged field-by-field.
type Snapshot struct {
	Step    int                   `json:"step"`
	SimTime string                `json:"sim_time"`
	Grid    GridSize              `json:"grid"`
	Agents  map[string]AgentState `json:"agents"`
}

// GridSize is the world extent in tiles.
type GridSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AgentState is one agent's server-side state. The map key in Snapshot.Agents
// is the stable identity; everything here is display data.
type AgentState struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Pos      [2]int `json:"pos"`
	Sprite   string `json:"sprite"`
	Glyph    string `json:"pronunciatio"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

// EventRecord is one immutable entry from the server's event log.
type EventRecord struct {
	Step      int    `json:"step"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Agent     string `json:"agent"`
	Target    string `json:"target"`
	Content   string `json:"content"`
}

// TacticUse is a single social-engineering tactic application.
type TacticUse struct {
	Tactic string `json:"tactic"`
	Phase  int    `json:"phase"`
	Step   int    `json:"step"`
}

// ExtractedInfo is one piece of information a target revealed to the attacker.
type ExtractedInfo struct {
	InfoType    string `json:"info_type"`
	Sensitivity string `json:"sensitivity"`
	Channel     string `json:"channel"`
	Step        int    `json:"step"`
	Value       string `json:"value"`
}

// TargetResult is the attack progress against a single target.
// TrustLevel is in [0,1]; CurrentPhase is in [1,5]. Both are enforced by the
// payload schema on decode.
type TargetResult struct {
	TargetID         string          `json:"target_id"`
	TargetName       string          `json:"target_name"`
	MessagesSent     int             `json:"messages_sent"`
	MessagesReceived int             `json:"messages_received"`
	TacticsUsed      []TacticUse     `json:"tactics_used"`
	InfoExtracted    []ExtractedInfo `json:"info_extracted"`
	ChannelsUsed     []string        `json:"channels_used"`
	CurrentPhase     int             `json:"current_phase"`
	PhaseName        string          `json:"phase_name"`
	TrustLevel       float64         `json:"trust_level"`
}

// ResultsSnapshot is the server-computed attack progress report.
// AttackSuccess is authoritative; the client never recomputes it.
type ResultsSnapshot struct {
	RunID         string         `json:"run_id"`
	DeviantID     string         `json:"deviant_id"`
	DeviantName   string         `json:"deviant_name"`
	TotalSteps    int            `json:"total_steps"`
	SimTime       string         `json:"sim_time"`
	TotalMessages int            `json:"total_messages"`
	TotalReveals  int            `json:"total_reveals"`
	TotalTactics  int            `json:"total_tactics"`
	AttackSuccess bool           `json:"attack_success"`
	Targets       []TargetResult `json:"targets"`
}

// RunSummary is one archived run in the history list.
type RunSummary struct {
	RunID   string  `json:"run_id"`
	Date    string  `json:"date"`
	Steps   int     `json:"steps"`
	Reveals int     `json:"reveals"`
	SizeKB  float64 `json:"size_kb"`
}
