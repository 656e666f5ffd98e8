package credstore

// State is the setup progress of a Store.
type State int

const (
	StateUninitialized State = iota
	StateConnectionOpen
	StateJournalModeSet
	StateSchemaReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnectionOpen:
		return "connection_open"
	case StateJournalModeSet:
		return "journal_mode_set"
	case StateSchemaReady:
		return "schema_ready"
	default:
		return "unknown"
	}
}
