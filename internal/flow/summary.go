package flow

import (
	"fmt"
	"strings"

	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"
)

// BuildSummary renders every populated field and sequence in a fixed
// order, so the same session always produces the same text.
func BuildSummary(sess *session.Session) string {
	var b strings.Builder

	name := joinFields(sess.Candidate, " ", "firstName", "middleName", "lastName")
	if name != "" {
		fmt.Fprintf(&b, "Name: %s\n", name)
	}
	contact := joinFields(sess.Candidate, " | ", "phoneNumber", "emailAddress")
	if contact != "" {
		fmt.Fprintf(&b, "Contact: %s\n", contact)
	}
	if v := sess.Candidate["linkedinProfile"]; v != "" {
		fmt.Fprintf(&b, "LinkedIn: %s\n", v)
	}
	location := joinFields(sess.Candidate, ", ", "city", "country")
	if location != "" {
		fmt.Fprintf(&b, "Location: %s\n", location)
	}
	if sess.Candidate["profileFileID"] != "" {
		b.WriteString("Profile photo: attached\n")
	}

	writeSection(&b, "Work Experience", sess.Sections[models.KindWorkExperience], "jobTitle", "companyName", "duration", "description")
	writeSection(&b, "Education", sess.Sections[models.KindEducation], "degreeName", "institutionName", "startYear", "endYear", "gpa")
	writeSection(&b, "Skills", sess.Sections[models.KindSkill], "skillName", "proficiency")
	writeSection(&b, "Career Objective", sess.Sections[models.KindCareerObjective], "summaryText")
	writeSection(&b, "Certifications & Awards", sess.Sections[models.KindCertificationAward], "certificateName", "issuer")
	writeSection(&b, "Projects", sess.Sections[models.KindProject], "projectTitle", "description", "projectLink")
	writeSection(&b, "Languages", sess.Sections[models.KindLanguage], "languageName", "proficiencyLevel")
	writeSection(&b, "Other Activities", sess.Sections[models.KindOtherActivity], "description")

	return strings.TrimRight(b.String(), "\n")
}

func joinFields(fields models.Fields, sep string, keys ...string) string {
	parts := []string{}
	for _, key := range keys {
		if v := fields[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func writeSection(b *strings.Builder, title string, records []models.Fields, keys ...string) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, rec := range records {
		fmt.Fprintf(b, "- %s\n", joinFields(rec, ", ", keys...))
	}
}
