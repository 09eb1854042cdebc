package domain

// OutputKind enumerates the artifact categories a provider can produce.
type OutputKind string

const (
	KindText  OutputKind = "text"
	KindImage OutputKind = "image"
	KindVideo OutputKind = "video"
	KindMusic OutputKind = "music"
)

// ModelAuto asks the dispatcher to pick a provider by precedence rules.
const ModelAuto = "auto"

// GenerationRequest is a single user action handed to the dispatcher.
// Immutable once constructed; consumed exactly once.
type GenerationRequest struct {
	Input         string
	LearningTopic string
	Model         string // "", "auto", or an explicit provider id
	Genre         string
	DurationSec   int
	CustomPrompt  string
	FileName      string // name of an attached file, if any
	TestMode      bool
}

// Topic returns the subject the generated artifact should teach. The
// dispatcher rejects requests where both fields are empty, so callers can
// rely on a non-empty result after validation.
func (r GenerationRequest) Topic() string {
	if r.LearningTopic != "" {
		return r.LearningTopic
	}
	return r.Input
}

// Prompt returns the text handed to non-music providers: the raw input
// when present, otherwise the learning topic.
func (r GenerationRequest) Prompt() string {
	if r.Input != "" {
		return r.Input
	}
	return r.LearningTopic
}

// ResultStatus is the lifecycle state of a GenerationResult.
type ResultStatus string

const (
	StatusProcessing ResultStatus = "processing"
	StatusCompleted  ResultStatus = "completed"
	StatusFailed     ResultStatus = "failed"
)

// GenerationResult is the uniform envelope every provider response is
// normalized into. Results are never mutated; polling produces a fresh one.
//
// A processing result always carries a JobID that can be polled to a
// terminal JobStatus.
type GenerationResult struct {
	Output         string // artifact URL or inline text
	Kind           OutputKind
	Provider       string // provider id that produced it
	PromptUsed     string
	JobID          string // music track id while processing
	TaskID         string // composition task id, when the provider exposes one
	Status         ResultStatus
	ProviderStatus string // raw upstream status string
	Title          string
	Lyrics         string
	Version        int
}

// ProviderDescriptor identifies one entry of the static provider registry.
// Built once at process start and read-only afterwards.
type ProviderDescriptor struct {
	ID     string     // model id used in requests, e.g. "gpt-image-1"
	Vendor string     // e.g. "OpenAI"
	Kind   OutputKind // capability
}
