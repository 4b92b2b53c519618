// Package domain defines the core data model for conversation evaluation:
// conversations and their turns, retrieved context passages, judge output,
// per-turn metrics and scores, and the aggregate evaluation result.
// All types are plain values with no behavior beyond construction and
// invariant enforcement, keeping the evaluation pipeline free of hidden state.
package domain

// Speaker roles as they appear on the wire. Role alternation between turns
// is expected but never enforced; the orchestrator tolerates drift.
const (
	// RoleUser marks a turn authored by the human user.
	RoleUser = "User"

	// RoleAI marks a turn authored by the assistant under evaluation.
	RoleAI = "AI/Chatbot"
)

// ConversationTurn is a single message within a conversation.
type ConversationTurn struct {
	// Turn is the ordinal position of this message within the conversation.
	Turn int `json:"turn"`

	// SenderID identifies the account that authored the message.
	SenderID int `json:"sender_id"`

	// Role is the speaker role, one of RoleUser or RoleAI.
	Role string `json:"role"`

	// Message is the raw message text.
	Message string `json:"message"`

	// CreatedAt is the message creation timestamp in RFC 3339 form.
	CreatedAt string `json:"created_at"`
}

// IsAI reports whether this turn was authored by the assistant.
func (t ConversationTurn) IsAI() bool { return t.Role == RoleAI }

// IsUser reports whether this turn was authored by the user.
func (t ConversationTurn) IsUser() bool { return t.Role == RoleUser }

// Conversation is an ordered sequence of turns belonging to one chat.
type Conversation struct {
	// ChatID identifies the conversation.
	ChatID int `json:"chat_id"`

	// UserID identifies the user the conversation belongs to.
	UserID int `json:"user_id"`

	// Turns holds the ordered message sequence.
	Turns []ConversationTurn `json:"conversation_turns"`
}

// UserTurnBefore returns the user turn whose ordinal is exactly one less
// than the given AI turn. It returns false when no such turn exists, which
// callers treat as a skippable data gap rather than an error.
func (c Conversation) UserTurnBefore(ai ConversationTurn) (ConversationTurn, bool) {
	for _, t := range c.Turns {
		if t.Turn == ai.Turn-1 && t.IsUser() {
			return t, true
		}
	}
	return ConversationTurn{}, false
}

// AITurns returns the assistant turns in input order. These are the
// evaluation targets.
func (c Conversation) AITurns() []ConversationTurn {
	var out []ConversationTurn
	for _, t := range c.Turns {
		if t.IsAI() {
			out = append(out, t)
		}
	}
	return out
}

// ContextPassage is one retrieved context passage, the unit of grounding
// evidence. Token counts come from the upstream retrieval step and feed
// cost accounting.
type ContextPassage struct {
	// ID identifies the passage within the retrieval store.
	ID int `json:"id"`

	// SourceURL locates the passage origin, when known.
	SourceURL string `json:"source_url,omitempty"`

	// Text is the passage content.
	Text string `json:"text"`

	// Tokens is the passage token count as reported by retrieval.
	Tokens int `json:"tokens"`

	// CreatedAt records when the passage was ingested.
	CreatedAt string `json:"created_at,omitempty"`
}

// ContextSources names the subset of the passage pool that retrieval
// actually consumed for grounding.
type ContextSources struct {
	// VectorsUsed lists the IDs of passages marked as used.
	VectorsUsed []int `json:"vectors_used"`
}

// ContextData carries the full passage pool plus the used-subset marker.
type ContextData struct {
	// VectorData is the full candidate passage pool.
	VectorData []ContextPassage `json:"vector_data"`

	// Sources identifies which passages were actually used.
	Sources ContextSources `json:"sources"`
}

// ContextSet is the retrieved-context payload accompanying a conversation.
// The envelope fields mirror the upstream retrieval service response.
type ContextSet struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       ContextData `json:"data"`
}

// UsedPassages resolves the used-passage subset in vectors_used order,
// silently dropping IDs that have no matching passage. Only this subset
// participates in scoring evidence and cost accounting; the grand superset
// never does.
func (cs ContextSet) UsedPassages() []ContextPassage {
	if len(cs.Data.Sources.VectorsUsed) == 0 {
		return nil
	}
	byID := make(map[int]ContextPassage, len(cs.Data.VectorData))
	for _, p := range cs.Data.VectorData {
		byID[p.ID] = p
	}
	var used []ContextPassage
	for _, id := range cs.Data.Sources.VectorsUsed {
		if p, ok := byID[id]; ok {
			used = append(used, p)
		}
	}
	return used
}

// EvaluationRequest is the payload consumed from the caller: one
// conversation plus its retrieved context.
type EvaluationRequest struct {
	Conversation Conversation `json:"conversation"`
	Context      ContextSet   `json:"context_vectors"`
}

// Validate checks the request for contract violations. A failure here is a
// programming/data-contract error and fails the whole evaluation; it is the
// only error class allowed to do so.
func (r EvaluationRequest) Validate() error {
	if len(r.Conversation.Turns) == 0 {
		return NewRequestError("conversation", "conversation_turns must not be empty")
	}
	for i, t := range r.Conversation.Turns {
		if t.Role != RoleUser && t.Role != RoleAI {
			return NewRequestError("conversation",
				"turn %d has unknown role %q", i, t.Role)
		}
	}
	return nil
}
