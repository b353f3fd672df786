package scoring

import (
	"github.com/shrimpsizemoose/betyg/internal/models"
)

func ClassifyMention(average float64) models.Mention {
	switch {
	case average >= 16:
		return models.MentionExcellent
	case average >= 14:
		return models.MentionGood
	case average >= 12:
		return models.MentionFairlyGood
	case average >= passMark:
		return models.MentionPass
	default:
		return models.MentionInsufficient
	}
}

// ClassifyDecision admits from 10 up. Below that the student is rejected,
// except at a level with a retake band where [7, 10) sends them to the
// control session.
func ClassifyDecision(average float64, level models.Level) models.Decision {
	if average >= passMark {
		return models.DecisionAdmitted
	}
	if level.HasRetakeBand && average >= retakeFloor {
		return models.DecisionRetake
	}
	return models.DecisionRejected
}
