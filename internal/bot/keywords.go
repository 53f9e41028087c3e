package bot

import (
	"strings"

	"ngmc-chatbot-backend/internal/models"
)

// categoryStaff routes a message to the staff directory instead of the link
// catalog.
const categoryStaff = "staff"

// fallbackTitle matches the title the original chatbot used when nothing
// in the message gave a better one.
const fallbackTitle = "NGMC Query Response"

type rule struct {
	category string
	title    string
	keywords []string
}

// Rule order matters: the first match wins, so the more specific document
// categories come before the broad staff rule.
var rules = []rule{
	{
		category: models.CategoryExamSchedule,
		title:    "Exam Schedule Enquiry",
		keywords: []string{"exam", "examination", "timetable", "time table"},
	},
	{
		category: models.CategoryFeeStructure,
		title:    "Fee Structure Enquiry",
		keywords: []string{"fee", "fees", "tuition"},
	},
	{
		category: models.CategorySeatingArrangements,
		title:    "Seating Arrangement Enquiry",
		keywords: []string{"seating", "seat allocation", "hall ticket"},
	},
	{
		category: models.CategorySyllabus,
		title:    "Syllabus Enquiry",
		keywords: []string{"syllabus", "curriculum"},
	},
	{
		category: categoryStaff,
		title:    "Staff Enquiry",
		keywords: []string{"staff", "faculty", "professor", "hod", "head of", "department", "principal"},
	},
}

func matchRule(message string) (rule, bool) {
	lowered := strings.ToLower(message)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lowered, keyword) {
				return r, true
			}
		}
	}
	return rule{}, false
}

// TitleFor derives a chat title from its first message by keyword match.
func TitleFor(message string) string {
	if r, ok := matchRule(message); ok {
		return r.title
	}
	return fallbackTitle
}
