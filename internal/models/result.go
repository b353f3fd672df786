package models

type Mention string

const (
	MentionExcellent    Mention = "Excellent"
	MentionGood         Mention = "Good"
	MentionFairlyGood   Mention = "Fairly Good"
	MentionPass         Mention = "Pass"
	MentionInsufficient Mention = "Insufficient"
)

type Decision string

const (
	DecisionAdmitted Decision = "Admitted"
	DecisionRejected Decision = "Rejected"
	DecisionRetake   Decision = "Retake/Control"
)

// SubjectResult is one subject line of a student's year.
// TermAverages only holds the terms whose average is defined.
type SubjectResult struct {
	Subject      Subject          `json:"subject"`
	TermAverages map[Term]float64 `json:"term_averages"`
	Annual       float64          `json:"annual"`
	Recorded     bool             `json:"recorded"`
	Complete     bool             `json:"complete"`
	Earned       bool             `json:"earned"`
}

// Result is computed on demand and never stored.
type Result struct {
	Student        Student          `json:"student"`
	Subjects       []SubjectResult  `json:"subjects"`
	TermAverages   map[Term]float64 `json:"term_averages"`
	GeneralAverage float64          `json:"general_average"`
	Credits        int              `json:"credits"`
	Rank           int              `json:"rank"`
	Mention        Mention          `json:"mention"`
	Decision       Decision         `json:"decision"`
}
