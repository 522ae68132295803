package export

// State is a step of one export invocation.
type State int

const (
	Idle State = iota
	Cloning
	StyleInlining
	Serializing
	Decoding
	Drawing
	Encoding
	Downloaded
	Failed
)

var stateNames = [...]string{
	Idle:          "idle",
	Cloning:       "cloning",
	StyleInlining: "style-inlining",
	Serializing:   "serializing",
	Decoding:      "decoding",
	Drawing:       "drawing",
	Encoding:      "encoding",
	Downloaded:    "downloaded",
	Failed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends an invocation.
func (s State) Terminal() bool { return s == Downloaded || s == Failed }

// next lists the legal forward transitions. Any non-terminal state may
// also move to Failed.
var next = map[State]State{
	Idle:          Cloning,
	Cloning:       StyleInlining,
	StyleInlining: Serializing,
	Serializing:   Decoding,
	Decoding:      Drawing,
	Drawing:       Encoding,
	Encoding:      Downloaded,
}

func canTransition(from, to State) bool {
	if to == Failed {
		return !from.Terminal()
	}
	return next[from] == to
}
