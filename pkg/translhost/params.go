package translhost

var (
	// DefaultAPIURL is used when a translate message carries settings
	// without an explicit backend endpoint.
	DefaultAPIURL = "http://localhost:11434"
)

const (
	DefaultModel          = "qwen3:4b"
	DefaultPromptTemplate = "{text}" // identity substitution when no template is given
	DefaultTemperature    = 0.7
	DefaultTopP           = 0.9
	DefaultTopK           = 40
	DefaultRepeatPenalty  = 1.1

	// RequestTimeoutSec bounds one backend round trip. The host processes
	// messages strictly one at a time, so a stalled backend stalls the
	// whole session until this expires.
	RequestTimeoutSec = 120

	// MaxFrameSize caps the declared length prefix of an inbound frame.
	// Anything larger is treated as a malformed frame.
	MaxFrameSize = 64 << 20

	// FallbackLogFileName is the file attached inside the system temp
	// directory when no usable log path was provided.
	FallbackLogFileName = "translator_host.log"

	MessageTypeTranslate = "translate"
	MessageTypePing      = "ping"

	APITypeOllama = "ollama"
	APITypeOpenAI = "openai"
)
