package gemini

// MaxSuggestedTags caps the tags returned by SuggestTags.
const MaxSuggestedTags = 5

type cardsPromptData struct {
	Text  string
	Count int
}

type improvePromptData struct {
	Front       string
	Back        string
	Instruction string
}

type tagsPromptData struct {
	Front   string
	Back    string
	MaxTags int
}

// cardsResponse is the JSON shape requested by the card generation prompt.
type cardsResponse struct {
	Cards []cardSchema `json:"cards"`
}

type cardSchema struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type improveResponse struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}
