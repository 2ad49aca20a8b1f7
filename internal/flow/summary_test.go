package flow

import (
	"strings"
	"testing"

	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"

	"github.com/stretchr/testify/assert"
)

func summarySession() *session.Session {
	reg := session.NewRegistry()
	sess := reg.GetOrCreate("1", 1)
	sess.Candidate = models.Fields{
		"firstName":   "Abebe",
		"lastName":    "Bekele",
		"phoneNumber": "+251911223344",
		"city":        "Addis Ababa",
		"country":     "Ethiopia",
	}
	sess.Sections[models.KindWorkExperience] = []models.Fields{
		{"jobTitle": "Developer", "companyName": "Acme", "duration": "2021 - 2023", "description": "Built things"},
	}
	sess.Sections[models.KindSkill] = []models.Fields{
		{"skillName": "Go", "proficiency": "Advanced"},
		{"skillName": "SQL", "proficiency": "Intermediate"},
	}
	return sess
}

func TestBuildSummaryDeterministic(t *testing.T) {
	sess := summarySession()
	assert.Equal(t, BuildSummary(sess), BuildSummary(sess))
}

func TestBuildSummaryContent(t *testing.T) {
	sess := summarySession()
	out := BuildSummary(sess)

	assert.Contains(t, out, "Name: Abebe Bekele")
	assert.Contains(t, out, "Location: Addis Ababa, Ethiopia")
	assert.Contains(t, out, "Work Experience:")
	assert.Contains(t, out, "- Developer, Acme, 2021 - 2023, Built things")
	assert.Contains(t, out, "- Go, Advanced")
	assert.Contains(t, out, "- SQL, Intermediate")
	//sections never collected do not appear
	assert.NotContains(t, out, "Education:")
	assert.NotContains(t, out, "Projects:")
}

func TestBuildSummarySkippedFieldsOmitted(t *testing.T) {
	sess := summarySession()
	out := BuildSummary(sess)
	//no LinkedIn line because the field was never set
	assert.NotContains(t, out, "LinkedIn")

	sess.Candidate["linkedinProfile"] = "https://linkedin.com/in/abebe"
	assert.Contains(t, BuildSummary(sess), "LinkedIn: https://linkedin.com/in/abebe")
}

func TestBuildSummarySectionOrderFixed(t *testing.T) {
	sess := summarySession()
	out := BuildSummary(sess)

	work := strings.Index(out, "Work Experience:")
	skills := strings.Index(out, "Skills:")
	assert.Less(t, work, skills, "work experience renders before skills")
}
