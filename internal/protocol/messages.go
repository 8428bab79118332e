package protocol

import "time"

// TurnTranscript announces the resolved question text for a turn.
type TurnTranscript struct {
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"` // audio or text
	Timestamp time.Time `json:"timestamp"`
}

// TurnReply carries the generated teacher reply.
type TurnReply struct {
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Reply     string    `json:"reply"`
	Model     string    `json:"model"`
	Role      string    `json:"role"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnSpeech reports a produced audio artifact.
type TurnSpeech struct {
	SessionID string    `json:"session_id"`
	Path      string    `json:"path"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// ModelSwitched announces a change of the active generation endpoint.
type ModelSwitched struct {
	SessionID string    `json:"session_id"`
	Label     string    `json:"label"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectTurnTranscript = "teacher.turn.transcript"
	SubjectTurnReply      = "teacher.turn.reply"
	SubjectTurnSpeech     = "teacher.turn.speech"
	SubjectModelSwitched  = "teacher.model.switched"
)
