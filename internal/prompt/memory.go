package prompt

// PublicMessage is one LLM_PUBLIC_MESSAGE entry retained in memory.
type PublicMessage struct {
	TurnIndex int    `json:"turn_index"`
	PlayerID  string `json:"player_id"`
	Text      string `json:"text"`
}

// NotableAction is a compact, space_key-only summary of an engine
// event worth remembering across decisions (a purchase, a rent
// payment, a bankruptcy, and so on). Raw board structure is
// deliberately excluded per spec.md §4.2.
type NotableAction struct {
	TurnIndex int    `json:"turn_index"`
	Summary   string `json:"summary"`
}

const (
	maxPublicMessages  = 20
	maxNotableActions  = 20
	maxPrivateThoughts = 10
)

// Store accumulates the rolling memory windows spec.md §4.2 requires:
// the last 20 public messages, the last 20 notable actions, and (per
// player) the last 10 private thoughts. It is owned by the pipeline,
// which appends to it as engine/LLM events arrive; the prompt builder
// only reads a per-player snapshot of it.
type Store struct {
	publicMessages  []PublicMessage
	notableActions  []NotableAction
	privateThoughts map[string][]string
}

// NewStore builds an empty memory Store.
func NewStore() *Store {
	return &Store{privateThoughts: make(map[string][]string)}
}

// RecordPublicMessage appends a public message, trimming to the last
// maxPublicMessages.
func (s *Store) RecordPublicMessage(turnIndex int, playerID, text string) {
	if text == "" {
		return
	}
	s.publicMessages = append(s.publicMessages, PublicMessage{TurnIndex: turnIndex, PlayerID: playerID, Text: text})
	if len(s.publicMessages) > maxPublicMessages {
		s.publicMessages = s.publicMessages[len(s.publicMessages)-maxPublicMessages:]
	}
}

// RecordPrivateThought appends playerID's private thought, trimming
// to that player's last maxPrivateThoughts.
func (s *Store) RecordPrivateThought(playerID, text string) {
	if text == "" {
		return
	}
	list := append(s.privateThoughts[playerID], text)
	if len(list) > maxPrivateThoughts {
		list = list[len(list)-maxPrivateThoughts:]
	}
	s.privateThoughts[playerID] = list
}

// RecordNotableAction appends a plain-text, space_key-only summary of
// something worth remembering, trimming to the last maxNotableActions.
func (s *Store) RecordNotableAction(turnIndex int, summary string) {
	if summary == "" {
		return
	}
	s.notableActions = append(s.notableActions, NotableAction{TurnIndex: turnIndex, Summary: summary})
	if len(s.notableActions) > maxNotableActions {
		s.notableActions = s.notableActions[len(s.notableActions)-maxNotableActions:]
	}
}

// Snapshot is the per-player memory view handed to the prompt builder:
// the shared public-message and notable-action windows plus only the
// requesting player's own private thoughts (spec.md §4.2 — a player
// never sees another player's private reasoning).
type Snapshot struct {
	PublicMessages  []PublicMessage `json:"public_messages"`
	NotableActions  []NotableAction `json:"notable_actions"`
	PrivateThoughts []string        `json:"private_thoughts"`
}

// SnapshotFor builds the memory Snapshot visible to playerID.
func (s *Store) SnapshotFor(playerID string) Snapshot {
	return Snapshot{
		PublicMessages:  append([]PublicMessage(nil), s.publicMessages...),
		NotableActions:  append([]NotableAction(nil), s.notableActions...),
		PrivateThoughts: append([]string(nil), s.privateThoughts[playerID]...),
	}
}
