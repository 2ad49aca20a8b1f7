// User-facing string tables. Amharic is partially translated; any missing
// key falls back to English so new prompts never break the flow.
package i18n

import "golang.org/x/text/language"

const DefaultLocale = "en"

var supported = []language.Tag{
	language.English,
	language.Amharic,
}

var matcher = language.NewMatcher(supported)

// Normalize maps an arbitrary locale code onto a supported locale.
func Normalize(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLocale
	}
	_, idx, _ := matcher.Match(tag)
	base, _ := supported[idx].Base()
	return base.String()
}

// T resolves a prompt for the locale, falling back to English and finally
// to the key itself so a typo surfaces visibly instead of as an empty message.
func T(locale, key string) string {
	if table, ok := prompts[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := prompts[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

var prompts = map[string]map[string]string{
	"en": {
		"choose_locale": "Welcome to the CV Bot! Please choose your language:",
		"welcome_new":   "Let's create your professional CV.",
		"welcome_back":  "Welcome back! You already have a profile. Would you like to update your information or create a new CV?",
		"btn_update":    "Update Profile",
		"btn_new":       "Create New CV",
		"section_menu":  "Which section would you like to update?",

		"section.personal_info":       "Personal Info",
		"section.contact_info":        "Contact Info",
		"section.work_experience":     "Work Experience",
		"section.education":           "Education",
		"section.skill":               "Skills",
		"section.career_objective":    "Career Objective",
		"section.certification_award": "Certifications",
		"section.project":             "Projects",
		"section.language":            "Languages",
		"section.other_activity":      "Other Activities",

		"field.firstName":       "Please enter your first name:",
		"field.middleName":      "Please enter your middle name (or type 'skip'):",
		"field.lastName":        "Please enter your last name:",
		"field.phoneNumber":     "Please enter your phone number (e.g., +251911223344):",
		"field.emailAddress":    "Please enter your email address:",
		"field.linkedinProfile": "Please enter your LinkedIn profile URL (or type 'skip'):",
		"field.city":            "Please enter your city of residence:",
		"field.country":         "Please enter your country:",

		"field.work.jobTitle":    "What was your job title?",
		"field.work.companyName": "Which company did you work for?",
		"field.work.duration":    "How long did you work there (e.g., 2021 - 2023)?",
		"field.work.description": "Briefly describe your responsibilities:",

		"field.edu.degreeName":      "What degree did you earn?",
		"field.edu.institutionName": "Which institution did you attend?",
		"field.edu.startYear":       "What year did you start?",
		"field.edu.endYear":         "What year did you finish (or expect to)?",
		"field.edu.gpa":             "What was your GPA (or type 'skip')?",

		"field.skill.skillName":   "Name a skill:",
		"field.skill.proficiency": "Your proficiency (Beginner/Intermediate/Advanced/Expert):",

		"field.cert.certificateName": "Name of the certification or award:",
		"field.cert.issuer":          "Who issued it?",

		"field.project.projectTitle": "Project title:",
		"field.project.description":  "Describe the project:",
		"field.project.projectLink":  "Project link (or type 'skip'):",

		"field.lang.languageName":     "Which language do you speak?",
		"field.lang.proficiencyLevel": "Your level (Native/Fluent/Intermediate/Basic):",

		"added.work_experience":     "Work experience added ✅ Would you like to add another position?",
		"added.education":           "Education added ✅ Would you like to add another entry?",
		"added.skill":               "Skill added ✅ Would you like to add another skill?",
		"added.certification_award": "Certification added ✅ Would you like to add another?",
		"added.project":             "Project added ✅ Would you like to add another project?",
		"added.language":            "Language added ✅ Would you like to add another language?",
		"btn_add_another":           "Add Another",
		"btn_continue":              "Continue",

		"career_objective_prompt": "Now please write your career objective/summary:",
		"activities_prompt":       "Finally, please describe any other activities (volunteering, hobbies, etc.):",

		"profile_image_prompt": "Please send a profile photo (JPEG/PNG), or type 'skip':",
		"profile_image_saved":  "Profile photo saved ✅",

		"summary_header": "Here's a summary of your information:",
		"btn_confirm":    "✅ Confirm",
		"btn_edit":       "✏️ Edit",

		"payment_instructions": "Please make a payment of 100 Birr to:\n\nBank: Commercial Bank of Ethiopia\nAccount: 1000123456789\nName: CV Bot Service\n\nAfter payment, please upload a screenshot or PDF of the payment confirmation.",
		"payment_ack":          "Payment screenshot received ✅",
		"payment_confirmation": "Thank you! Your payment is being processed. We will notify you once it's verified.",
		"awaiting_decision":    "Your payment is still being reviewed. We will notify you as soon as it's verified.",

		"verified_message": "✅ Payment Approved!\n\nYour payment has been verified and approved. Thank you for your submission!",
		"rejected_message": "❌ Payment Rejected\n\nReason: %s\n\nPlease contact support if you believe this was an error.",

		"error_generic":   "An error occurred. Please try again or contact support.",
		"file_too_large":  "That file is too large. Please upload a file under %d MB.",
		"file_wrong_type": "Unsupported file type. Please upload a JPEG, PNG or PDF.",
		"awaiting_file":   "Please upload the payment confirmation as a photo or PDF document.",

		"cancelled": "Operation cancelled. Type /start to begin again.",
		"help":      "Use /start to create or update your CV profile.\nUse /cancel to stop the current operation.",
	},
	"am": {
		"choose_locale":        "እንኳን ወደ CV ቦት በደህና መጡ! ቋንቋዎን ይምረጡ:",
		"welcome_new":          "ሙያዊ CV እንፍጠር።",
		"welcome_back":         "እንኳን ደህና መጡ! መገለጫ አለዎት። መረጃዎን ማዘመን ይፈልጋሉ ወይስ አዲስ CV መፍጠር?",
		"btn_update":           "መገለጫ አዘምን",
		"btn_new":              "አዲስ CV ፍጠር",
		"payment_confirmation": "እናመሰግናለን! ክፍያዎ በሂደት ላይ ነው። ከተረጋገጠ በኋላ እናሳውቅዎታለን።",
		"verified_message":     "✅ ክፍያው ጸድቋል! እናመሰግናለን!",
		"rejected_message":     "❌ ክፍያው ውድቅ ተደርጓል\n\nምክንያት: %s",
		"error_generic":        "ስህተት ተከስቷል። እባክዎ እንደገና ይሞክሩ።",
		"cancelled":            "ክንውኑ ተሰርዟል። እንደገና ለመጀመር /start ይጻፉ።",
	},
}
