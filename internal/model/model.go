package model

import "time"

type SessionStatus string

const (
	SessionRunning     SessionStatus = "Running"
	SessionCompleted   SessionStatus = "Completed"
	SessionCancelled   SessionStatus = "Cancelled"
	SessionInterrupted SessionStatus = "Interrupted"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionRunning, SessionCompleted, SessionCancelled, SessionInterrupted:
		return true
	}
	return false
}

// Finished reports whether the session can no longer accumulate time.
func (s SessionStatus) Finished() bool { return s != SessionRunning }

type Session struct {
	ID        string        `json:"id" yaml:"id"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	StoppedAt *time.Time    `json:"stoppedAt,omitempty" yaml:"stoppedAt,omitempty"`
	Status    SessionStatus `json:"status" yaml:"status"`
	TargetMs  int64         `json:"targetMs" yaml:"targetMs"`
	ActiveMs  int64         `json:"activeMs" yaml:"activeMs"`
	LabelID   *int64        `json:"labelId,omitempty" yaml:"labelId,omitempty"`
	// Note is nil when no note is persisted; an empty note is never stored.
	Note      *string   `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func (s Session) Target() time.Duration { return time.Duration(s.TargetMs) * time.Millisecond }

func (s Session) Active() time.Duration { return time.Duration(s.ActiveMs) * time.Millisecond }

// Segment is a continuous interval spent in one application.
type Segment struct {
	ID           string    `json:"id" yaml:"id"`
	SessionID    string    `json:"sessionId" yaml:"sessionId"`
	StartTime    time.Time `json:"startTime" yaml:"startTime"`
	EndTime      time.Time `json:"endTime" yaml:"endTime"`
	DurationSecs int64     `json:"durationSecs" yaml:"durationSecs"`
	BundleID     string    `json:"bundleId" yaml:"bundleId"`
	AppName      *string   `json:"appName,omitempty" yaml:"appName,omitempty"`
	WindowTitle  *string   `json:"windowTitle,omitempty" yaml:"windowTitle,omitempty"`
	Confidence   float64   `json:"confidence" yaml:"confidence"`
	Summary      *string   `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func (s Segment) Duration() time.Duration { return time.Duration(s.DurationSecs) * time.Second }

// DisplayName prefers the application name and falls back to the bundle id.
func (s Segment) DisplayName() string {
	if s.AppName != nil && *s.AppName != "" {
		return *s.AppName
	}
	return s.BundleID
}

// TopApp is the time spent in one application during a session.
type TopApp struct {
	BundleID     string  `json:"bundleId" yaml:"bundleId"`
	AppName      *string `json:"appName,omitempty" yaml:"appName,omitempty"`
	DurationSecs int64   `json:"durationSecs" yaml:"durationSecs"`
	Percentage   float64 `json:"percentage" yaml:"percentage"`
	Selected     bool    `json:"selected" yaml:"selected"`
}

func (a TopApp) Duration() time.Duration { return time.Duration(a.DurationSecs) * time.Second }

func (a TopApp) DisplayName() string {
	if a.AppName != nil && *a.AppName != "" {
		return *a.AppName
	}
	return a.BundleID
}

type Label struct {
	ID         int64      `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Color      string     `json:"color" yaml:"color"`
	OrderIndex int64      `json:"orderIndex" yaml:"orderIndex"`
	CreatedAt  time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" yaml:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty" yaml:"deletedAt,omitempty"`
}

// SessionSummary is one row of the history list.
type SessionSummary struct {
	Session
	TopApps []TopApp `json:"topApps" yaml:"topApps"`
}

// SessionResults is everything the results screen shows for one session.
type SessionResults struct {
	Session  Session   `json:"session" yaml:"session"`
	Label    *Label    `json:"label,omitempty" yaml:"label,omitempty"`
	Segments []Segment `json:"segments" yaml:"segments"`
	TopApps  []TopApp  `json:"topApps" yaml:"topApps"`
}
