package engine

// Event types delivered to subscribers.
const (
	EventAnswerRecorded = "answer_recorded"
	EventStageCompleted = "stage_completed"
	EventTimeUp         = "time_up"
	EventStageUnlocked  = "stage_unlocked"
	EventCountdown      = "countdown"
)

// Event is a notification for the presentation layer.
type Event struct {
	Type           string     `json:"type"`
	StageID        int        `json:"stageId,omitempty"`
	ChallengeIndex *int       `json:"challengeIndex,omitempty"`
	Correct        bool       `json:"correct,omitempty"`
	Points         int        `json:"points,omitempty"`
	Score          int        `json:"score,omitempty"`
	Attempts       int        `json:"attempts,omitempty"`
	Countdown      *Countdown `json:"countdown,omitempty"`
}

// Notifier delivers events. An empty email broadcasts to everyone.
type Notifier interface {
	Notify(email string, ev Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, Event) {}

func intPtr(i int) *int { return &i }
