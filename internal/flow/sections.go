package flow

import (
	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"
)

// fieldSpec is one prompt of a field sequence. Optional fields accept the
// skip sentinel, which leaves the field absent rather than empty.
type fieldSpec struct {
	key      string
	prompt   string
	optional bool
}

var personalFields = []fieldSpec{
	{key: "firstName", prompt: "field.firstName"},
	{key: "middleName", prompt: "field.middleName", optional: true},
	{key: "lastName", prompt: "field.lastName"},
}

var contactFields = []fieldSpec{
	{key: "phoneNumber", prompt: "field.phoneNumber"},
	{key: "emailAddress", prompt: "field.emailAddress"},
	{key: "linkedinProfile", prompt: "field.linkedinProfile", optional: true},
	{key: "city", prompt: "field.city"},
	{key: "country", prompt: "field.country"},
}

// sectionSpec describes one repeatable subsection: its stage, the child
// kind its records persist under, the record's field sequence and the
// stage that follows when the user chooses to continue.
type sectionSpec struct {
	stage  session.Stage
	kind   models.ChildKind
	fields []fieldSpec
	next   session.Stage
}

var repeatSections = []sectionSpec{
	{
		stage: session.StageWorkExperience,
		kind:  models.KindWorkExperience,
		next:  session.StageEducation,
		fields: []fieldSpec{
			{key: "jobTitle", prompt: "field.work.jobTitle"},
			{key: "companyName", prompt: "field.work.companyName"},
			{key: "duration", prompt: "field.work.duration"},
			{key: "description", prompt: "field.work.description"},
		},
	},
	{
		stage: session.StageEducation,
		kind:  models.KindEducation,
		next:  session.StageSkills,
		fields: []fieldSpec{
			{key: "degreeName", prompt: "field.edu.degreeName"},
			{key: "institutionName", prompt: "field.edu.institutionName"},
			{key: "startYear", prompt: "field.edu.startYear"},
			{key: "endYear", prompt: "field.edu.endYear"},
			{key: "gpa", prompt: "field.edu.gpa", optional: true},
		},
	},
	{
		stage: session.StageSkills,
		kind:  models.KindSkill,
		next:  session.StageCareerObjective,
		fields: []fieldSpec{
			{key: "skillName", prompt: "field.skill.skillName"},
			{key: "proficiency", prompt: "field.skill.proficiency"},
		},
	},
	{
		stage: session.StageCertifications,
		kind:  models.KindCertificationAward,
		next:  session.StageProjects,
		fields: []fieldSpec{
			{key: "certificateName", prompt: "field.cert.certificateName"},
			{key: "issuer", prompt: "field.cert.issuer"},
		},
	},
	{
		stage: session.StageProjects,
		kind:  models.KindProject,
		next:  session.StageLanguages,
		fields: []fieldSpec{
			{key: "projectTitle", prompt: "field.project.projectTitle"},
			{key: "description", prompt: "field.project.description"},
			{key: "projectLink", prompt: "field.project.projectLink", optional: true},
		},
	},
	{
		stage: session.StageLanguages,
		kind:  models.KindLanguage,
		next:  session.StageActivities,
		fields: []fieldSpec{
			{key: "languageName", prompt: "field.lang.languageName"},
			{key: "proficiencyLevel", prompt: "field.lang.proficiencyLevel"},
		},
	},
}

func sectionByStage(stage session.Stage) *sectionSpec {
	for i := range repeatSections {
		if repeatSections[i].stage == stage {
			return &repeatSections[i]
		}
	}
	return nil
}

func sectionByKind(kind models.ChildKind) *sectionSpec {
	for i := range repeatSections {
		if repeatSections[i].kind == kind {
			return &repeatSections[i]
		}
	}
	return nil
}

// menuEntry maps a section-menu button onto the stage it jumps into and,
// for repeatable/free-text sections, the child kind it resets.
type menuEntry struct {
	id       string
	labelKey string
	stage    session.Stage
	kind     models.ChildKind
}

var menuEntries = []menuEntry{
	{id: "personal_info", labelKey: "section.personal_info", stage: session.StagePersonalInfo},
	{id: "contact_info", labelKey: "section.contact_info", stage: session.StageContactInfo},
	{id: "work_experience", labelKey: "section.work_experience", stage: session.StageWorkExperience, kind: models.KindWorkExperience},
	{id: "education", labelKey: "section.education", stage: session.StageEducation, kind: models.KindEducation},
	{id: "skills", labelKey: "section.skill", stage: session.StageSkills, kind: models.KindSkill},
	{id: "career_objective", labelKey: "section.career_objective", stage: session.StageCareerObjective, kind: models.KindCareerObjective},
	{id: "certifications", labelKey: "section.certification_award", stage: session.StageCertifications, kind: models.KindCertificationAward},
	{id: "projects", labelKey: "section.project", stage: session.StageProjects, kind: models.KindProject},
	{id: "languages", labelKey: "section.language", stage: session.StageLanguages, kind: models.KindLanguage},
	{id: "activities", labelKey: "section.other_activity", stage: session.StageActivities, kind: models.KindOtherActivity},
}

func menuEntryByID(id string) *menuEntry {
	for i := range menuEntries {
		if menuEntries[i].id == id {
			return &menuEntries[i]
		}
	}
	return nil
}
