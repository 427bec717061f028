package detect

import "strconv"

// Register is the emotional category of a candidate.
type Register string

const (
	RegisterFailure  Register = "failure"
	RegisterTension  Register = "tension"
	RegisterProgress Register = "progress"
)

// Category groups taxonomy ids for presentation (icon choice, collapse
// keys).
type Category string

const (
	CategoryNavigation Category = "navigation"
	CategoryStealth    Category = "stealth"
	CategoryObjective  Category = "objective"
	CategoryEquipment  Category = "equipment"
	CategorySystem     Category = "system"
)

// Context carries the resolved human labels a candidate's templates may
// reference. It is a closed struct rather than an open string map so a
// taxonomy id cannot grow untyped context keys.
type Context struct {
	Room       string `json:"room,omitempty"`
	Door       string `json:"door,omitempty"`
	Item       string `json:"item,omitempty"`
	Terminal   string `json:"terminal,omitempty"`
	Guard      string `json:"guard,omitempty"`
	GuardRoom  string `json:"guard_room,omitempty"`
	AgentRoom  string `json:"agent_room,omitempty"`
	StallTurns int64  `json:"stall_turns,omitempty"`
	Level      int64  `json:"level,omitempty"`
	Percent    int64  `json:"percent,omitempty"`
}

// Field resolves a template placeholder name to its context value.
// Empty values report ok=false so the renderer can fall back to the
// taxonomy's generic sentence.
func (c Context) Field(name string) (string, bool) {
	switch name {
	case "room":
		return c.Room, c.Room != ""
	case "door":
		return c.Door, c.Door != ""
	case "item":
		return c.Item, c.Item != ""
	case "terminal":
		return c.Terminal, c.Terminal != ""
	case "guard":
		return c.Guard, c.Guard != ""
	case "guard_room":
		return c.GuardRoom, c.GuardRoom != ""
	case "agent_room":
		return c.AgentRoom, c.AgentRoom != ""
	case "stall_turns":
		return formatInt(c.StallTurns), c.StallTurns > 0
	case "level":
		return formatInt(c.Level), true
	case "percent":
		return formatInt(c.Percent), c.Percent > 0
	default:
		return "", false
	}
}

// Candidate is one raw detection result, immutable once created.
type Candidate struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Register Register `json:"register"`
	Priority int      `json:"priority"`
	Turn     int64    `json:"turn"`
	AgentID  string   `json:"agent_id,omitempty"`
	SeqStart int64    `json:"seq_start"`
	SeqEnd   int64    `json:"seq_end"`
	Context  Context  `json:"context"`
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
