package types

import "encoding/json"

// AIReasoning is a tagged value for AI-produced reasoning text. A locked
// reasoning carries no text; downstream code cannot mistake the locked state
// for real content.
type AIReasoning struct {
	Text   string
	Locked bool
}

// Visible returns reasoning text readable by the traveler.
func Visible(text string) AIReasoning {
	return AIReasoning{Text: text}
}

// LockedReasoning returns the redacted reasoning used for non-premium callers.
func LockedReasoning() AIReasoning {
	return AIReasoning{Locked: true}
}

type reasoningJSON struct {
	Text   string `json:"text,omitempty"`
	Locked bool   `json:"locked"`
}

func (r AIReasoning) MarshalJSON() ([]byte, error) {
	out := reasoningJSON{Locked: r.Locked}
	if !r.Locked {
		out.Text = r.Text
	}
	return json.Marshal(out)
}

func (r *AIReasoning) UnmarshalJSON(data []byte) error {
	var in reasoningJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Locked = in.Locked
	if in.Locked {
		r.Text = ""
	} else {
		r.Text = in.Text
	}
	return nil
}
