package domain

// ChatTurn roles. History turns only ever carry these three values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ScriptSegment is one timed beat of the video-script outline.
type ScriptSegment struct {
	StartSecond int    `json:"start_second"`
	Description string `json:"description"`
}

// Asset is the structured marketing bundle produced per request. It carries
// no identity of its own; persistence wraps it in a Message.
type Asset struct {
	Title         string          `json:"title"`
	SellingPoints []string        `json:"selling_points"`
	Atmosphere    string          `json:"atmosphere"`
	VideoScript   []ScriptSegment `json:"video_script"`
}

// ChatTurn is a single conversation turn as seen by the model. ImageRef is
// only honored on the final user turn; history turns stay plain text.
type ChatTurn struct {
	Role     string
	Content  string
	ImageRef string
}

// GenerationRequest carries everything one text-generation run needs. It is
// built once per inbound message and never mutated while the pipeline runs.
type GenerationRequest struct {
	Description string
	History     []ChatTurn
	ImageRef    string
	Locale      string
}

// CompositionRequest describes one hero-image transform.
type CompositionRequest struct {
	SourceImageRef  string
	InstructionText string
	SizeTag         string
}
