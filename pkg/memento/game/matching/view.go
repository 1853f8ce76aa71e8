package matching

// CardView is a card as shown to the player; Value is empty while face down.
type CardView struct {
	ID       int    `json:"id"`
	Value    string `json:"value,omitempty"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
}

// View is the player facing rendering of a State.
type View struct {
	Cards    []CardView `json:"cards"`
	Moves    int        `json:"moves"`
	Phase    Phase      `json:"phase"`
	Complete bool       `json:"complete"`
	Message  string     `json:"message,omitempty"`
}

// NewView hides the faces of unrevealed cards.
func NewView(s State) View {
	v := View{
		Cards:    make([]CardView, len(s.Cards)),
		Moves:    s.Moves,
		Phase:    s.Phase(),
		Complete: s.Complete,
	}
	for i, card := range s.Cards {
		cv := CardView{ID: card.ID, Revealed: card.Revealed, Matched: card.Matched}
		if card.Revealed || card.Matched {
			cv.Value = card.Value
		}
		v.Cards[i] = cv
	}
	if s.Complete {
		v.Message = CompletionMessage(s.Moves)
	}
	return v
}
