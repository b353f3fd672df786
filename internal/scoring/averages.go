package scoring

import (
	"math"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

const (
	ccWeight   = 0.4
	examWeight = 0.6

	passMark    = 10.0
	retakeFloor = 7.0
)

// the last term counts double
var termWeights = map[models.Term]float64{
	models.Term1: 1,
	models.Term2: 1,
	models.Term3: 2,
}

// Round2 rounds half away from zero to two decimals. Every intermediate
// average goes through it before being combined further.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// hundredths turns an already rounded average into an exact integer amount,
// so weighted sums do not depend on summation order.
func hundredths(v float64) float64 {
	return math.Round(v * 100)
}

// SubjectAverage combines continuous assessment and exam for one term.
// ok is false when either score is missing: the average is undefined, not 0.
// Out of range scores are rejected.
func SubjectAverage(e models.GradeEntry) (avg float64, ok bool, err error) {
	if err := e.Validate(); err != nil {
		return 0, false, err
	}
	if e.CC == nil || e.Exam == nil {
		return 0, false, nil
	}
	return Round2(ccWeight**e.CC + examWeight**e.Exam), true, nil
}

func annualAverage(terms map[models.Term]float64) (float64, error) {
	var missing []models.Term
	for _, t := range models.Terms {
		if _, ok := terms[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return 0, &models.IncompleteDataError{Missing: missing}
	}

	var sum, weights float64
	for _, t := range models.Terms {
		sum += terms[t] * termWeights[t]
		weights += termWeights[t]
	}
	return Round2(sum / weights), nil
}

// AnnualSubjectAverage is (T1 + T2 + 2*T3) / 4 over the defined term
// averages of a subject, or 0 when any term is missing.
func AnnualSubjectAverage(terms map[models.Term]float64) float64 {
	avg, err := annualAverage(terms)
	if err != nil {
		return 0
	}
	return avg
}

// SubjectLine evaluates one subject from the entries recorded for it.
// Entries of other subjects are ignored.
func SubjectLine(subject models.Subject, entries []models.GradeEntry) (models.SubjectResult, error) {
	line := models.SubjectResult{
		Subject:      subject,
		TermAverages: make(map[models.Term]float64, len(models.Terms)),
	}

	for _, e := range entries {
		if e.SubjectID != subject.ID {
			continue
		}
		line.Recorded = true

		avg, ok, err := SubjectAverage(e)
		if err != nil {
			return line, err
		}
		if ok {
			line.TermAverages[e.Term] = avg
		}
	}

	annual, err := annualAverage(line.TermAverages)
	switch {
	case err == nil:
		line.Annual = annual
		line.Complete = true
		line.Earned = annual >= passMark
	case models.IsIncomplete(err):
		// counts as 0 and earns nothing
	default:
		return line, err
	}

	return line, nil
}

// GeneralAverage is the coefficient weighted mean of the annual averages of
// every subject with at least one recorded entry. Credits add up the
// coefficients of the subjects passed over the full year.
func GeneralAverage(lines []models.SubjectResult) (float64, int) {
	var points float64
	var coefficients, credits int

	for _, l := range lines {
		if !l.Recorded {
			continue
		}
		points += hundredths(l.Annual) * float64(l.Subject.Coefficient)
		coefficients += l.Subject.Coefficient
		if l.Complete && l.Annual >= passMark {
			credits += l.Subject.Coefficient
		}
	}

	if coefficients == 0 {
		return 0, 0
	}
	return Round2(points / float64(coefficients) / 100), credits
}

// TermAverages gives, for each term, the coefficient weighted mean of the
// subject averages defined in that term. Terms without any are left out.
func TermAverages(lines []models.SubjectResult) map[models.Term]float64 {
	out := make(map[models.Term]float64, len(models.Terms))
	for _, t := range models.Terms {
		var points float64
		var coefficients int
		for _, l := range lines {
			avg, ok := l.TermAverages[t]
			if !ok {
				continue
			}
			points += hundredths(avg) * float64(l.Subject.Coefficient)
			coefficients += l.Subject.Coefficient
		}
		if coefficients > 0 {
			out[t] = Round2(points / float64(coefficients) / 100)
		}
	}
	return out
}
