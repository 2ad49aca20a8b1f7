package models

import (
	"strings"
	"time"
)

// ChildKind names one of the candidate's child record collections.
type ChildKind string

const (
	KindWorkExperience     ChildKind = "work_experience"
	KindEducation          ChildKind = "education"
	KindSkill              ChildKind = "skill"
	KindCareerObjective    ChildKind = "career_objective"
	KindCertificationAward ChildKind = "certification_award"
	KindProject            ChildKind = "project"
	KindLanguage           ChildKind = "language"
	KindOtherActivity      ChildKind = "other_activity"
)

// AllChildKinds is the persistence order for a full submission.
var AllChildKinds = []ChildKind{
	KindWorkExperience,
	KindEducation,
	KindSkill,
	KindCareerObjective,
	KindCertificationAward,
	KindProject,
	KindLanguage,
	KindOtherActivity,
}

type Candidate struct {
	UID            string    `json:"uid"`
	TelegramUserID string    `json:"telegram_user_id"`
	Fields         Fields    `json:"fields"`
	LastUpdatedAt  time.Time `json:"last_updated_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Fields is a named-field map. Optional fields the user skipped are absent,
// never stored as empty strings.
type Fields map[string]string

// Clone returns an independent copy so sessions never alias stored data.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge overwrites only the keys present in src, leaving unseen keys intact.
func (f Fields) Merge(src Fields) {
	for k, v := range src {
		f[k] = v
	}
}

// FullName joins the name parts, ignoring missing ones.
func (c *Candidate) FullName() string {
	parts := []string{}
	for _, key := range []string{"firstName", "middleName", "lastName"} {
		if v := c.Fields[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// ChildRecord is one entry of a candidate's child collection. The field set
// per kind is defined by the collection flow's section tables.
type ChildRecord struct {
	ID           string    `json:"id"`
	CandidateUID string    `json:"candidate_uid"`
	Kind         ChildKind `json:"kind"`
	Fields       Fields    `json:"fields"`
	CreatedAt    time.Time `json:"created_at"`
}
