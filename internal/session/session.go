package session

import (
	"sync"

	"go-cvbot-backend/internal/models"
)

// Stage is one named step of the collection flow. Stages advance in
// declaration order except where a handler branches explicitly.
type Stage int

const (
	StageSelectLocale Stage = iota
	StageStartChoice
	StagePersonalInfo
	StageContactInfo
	StageProfileImage
	StageWorkExperience
	StageEducation
	StageSkills
	StageCareerObjective
	StageCertifications
	StageProjects
	StageLanguages
	StageActivities
	StageConfirm
	StagePayment
	StageAwaitingDecision
)

var stageNames = map[Stage]string{
	StageSelectLocale:     "select_locale",
	StageStartChoice:      "start_choice",
	StagePersonalInfo:     "personal_info",
	StageContactInfo:      "contact_info",
	StageProfileImage:     "profile_image",
	StageWorkExperience:   "work_experience",
	StageEducation:        "education",
	StageSkills:           "skills",
	StageCareerObjective:  "career_objective",
	StageCertifications:   "certifications",
	StageProjects:         "projects",
	StageLanguages:        "languages",
	StageActivities:       "activities",
	StageConfirm:          "confirm",
	StagePayment:          "payment",
	StageAwaitingDecision: "awaiting_decision",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Session is the in-memory record of one user's in-progress collection.
// The composite collection state (candidate fields, section sequences,
// scratch record, stage pointers) is only ever touched by the update
// dispatcher, one event at a time. The small set of fields the status
// watcher also reads sits behind the session's own mutex.
type Session struct {
	UserID string
	ChatID int64

	Stage    Stage
	FieldIdx int

	CandidateUID string
	HasProfile   bool
	// FromMenu marks a stage entered through the section menu; completing
	// it returns to the menu instead of advancing linearly.
	FromMenu bool
	// Hydrated marks the session as holding the complete profile, either
	// loaded from the store or deliberately reset for a new CV. Menu edits
	// never persist from anything less, since confirmation rewrites every
	// stored section from the session.
	Hydrated bool

	Candidate models.Fields
	Scratch   models.Fields
	Sections  map[models.ChildKind][]models.Fields

	mu       sync.Mutex
	locale   string
	orderID  string
	notified bool
}

func newSession(userID string, chatID int64) *Session {
	return &Session{
		UserID:    userID,
		ChatID:    chatID,
		Stage:     StageSelectLocale,
		Candidate: models.Fields{},
		Scratch:   models.Fields{},
		Sections:  make(map[models.ChildKind][]models.Fields),
		locale:    "en",
	}
}

// ResetData clears everything collected so far but keeps identity, locale
// and the active order untouched. Used by the "create new CV" branch.
func (s *Session) ResetData() {
	s.Candidate = models.Fields{}
	s.Scratch = models.Fields{}
	s.Sections = make(map[models.ChildKind][]models.Fields)
	s.FieldIdx = 0
	s.CandidateUID = ""
	s.HasProfile = false
	s.FromMenu = false
	// a deliberate reset is the whole profile now
	s.Hydrated = true
}

// ClearScratch drops the partially-filled record wholesale. A scratch
// record is never partially retained across a loop or a stage advance.
func (s *Session) ClearScratch() {
	s.Scratch = models.Fields{}
	s.FieldIdx = 0
}

func (s *Session) SetLocale(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
}

func (s *Session) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

// SetOrder records the active order and re-arms the notification gate for
// the new submission.
func (s *Session) SetOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderID = orderID
	s.notified = false
}

func (s *Session) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// MarkNotified flips the already-notified flag and reports whether this
// caller won. The decision handler and the status watcher both call it
// before sending, so the user sees exactly one notification per decision.
func (s *Session) MarkNotified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notified {
		return false
	}
	s.notified = true
	return true
}

func (s *Session) Notified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notified
}
