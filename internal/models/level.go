package models

// Track is a specialization offered at a level.
type Track struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Level is an academic year together with the tracks it offers.
// HasRetakeBand marks the exit level, where averages in [7, 10) lead to a
// retake instead of a rejection.
type Level struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	HasRetakeBand bool    `json:"has_retake_band"`
	Tracks        []Track `json:"tracks"`
}

func (l Level) AllowsTrack(code string) bool {
	for _, t := range l.Tracks {
		if t.Code == code {
			return true
		}
	}
	return false
}

func (l Level) TrackCodes() []string {
	codes := make([]string, 0, len(l.Tracks))
	for _, t := range l.Tracks {
		codes = append(codes, t.Code)
	}
	return codes
}
