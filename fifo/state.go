package fifo

// State identifies one of the possible states transport can be in.
type State int

// states
const (
	// Uninitialized means that fifo is not opened yet.
	Uninitialized State = iota
	// Ready means that fifo is opened for writing.
	Ready
	// Prepared means that block length is known and blocks can be written.
	Prepared
	// Closed means that write descriptor is released. It's terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Prepared:
		return "prepared"
	case Closed:
		return "closed"
	}
	return "unknown"
}
