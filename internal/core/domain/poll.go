package domain

import "time"

type PollStatus string

const (
	PollActive PollStatus = "active"
	PollEnded  PollStatus = "ended"
)

type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID                 PollID       `json:"id"`
	Question           string       `json:"question"`
	Options            []PollOption `json:"options"`
	CreatedAt          time.Time    `json:"createdAt"`
	ExpiresAt          *time.Time   `json:"expiresAt,omitempty"`
	IsAnonymous        bool         `json:"isAnonymous"`
	AllowMultipleVotes bool         `json:"allowMultipleVotes"`
	Status             PollStatus   `json:"status"`
}

type OptionResult struct {
	OptionID string
	Text     string
	Votes    int
	Percent  float64
}

// Results computes per-option vote percentages. With zero total votes every
// percentage is 0.
func (p Poll) Results() []OptionResult {
	total := 0
	for _, o := range p.Options {
		total += o.Votes
	}

	results := make([]OptionResult, 0, len(p.Options))
	for _, o := range p.Options {
		r := OptionResult{OptionID: o.ID, Text: o.Text, Votes: o.Votes}
		if total > 0 {
			r.Percent = float64(o.Votes) / float64(total) * 100
		}
		results = append(results, r)
	}
	return results
}

// Option returns the option with the given identifier, if present.
func (p Poll) Option(id string) (PollOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return PollOption{}, false
}
