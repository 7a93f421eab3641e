package staged

// State del editor. Las transiciones las dispara el llamador de forma
// explícita (Load, Commit, Cancel).
//
//	Idle -> Loading -> Loaded | Failed
//	Loaded -> Committing -> Loaded
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}
