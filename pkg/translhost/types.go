package translhost

// Message is one decoded frame received from the controlling process. It is
// consumed by a single dispatch cycle and never retained.
type Message struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Context  *Context  `json:"context,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}

// Context carries the text surrounding the fragment to translate. Both
// fields are optional and default to empty.
type Context struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Settings is the per-message configuration attached to translate requests.
// Numeric sampling parameters are pointers so an absent field can fall back
// to its default without clobbering an explicit zero.
type Settings struct {
	OllamaAPIURL      string   `json:"ollamaApiUrl,omitempty"`
	LLMModel          string   `json:"llmModel,omitempty"`
	TranslationPrompt string   `json:"translationPrompt,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"topP,omitempty"`
	TopK              *int     `json:"topK,omitempty"`
	RepeatPenalty     *float64 `json:"repeatPenalty,omitempty"`
	LogFilePath       string   `json:"logFilePath,omitempty"`
	APIType           string   `json:"apiType,omitempty"`
}

func (s *Settings) apiURL() string {
	if s.OllamaAPIURL == "" {
		return DefaultAPIURL
	}
	return s.OllamaAPIURL
}

func (s *Settings) model() string {
	if s.LLMModel == "" {
		return DefaultModel
	}
	return s.LLMModel
}

func (s *Settings) promptTemplate() string {
	if s.TranslationPrompt == "" {
		return DefaultPromptTemplate
	}
	return s.TranslationPrompt
}

func (s *Settings) temperature() float64 {
	if s.Temperature == nil {
		return DefaultTemperature
	}
	return *s.Temperature
}

func (s *Settings) topP() float64 {
	if s.TopP == nil {
		return DefaultTopP
	}
	return *s.TopP
}

func (s *Settings) topK() int {
	if s.TopK == nil {
		return DefaultTopK
	}
	return *s.TopK
}

func (s *Settings) repeatPenalty() float64 {
	if s.RepeatPenalty == nil {
		return DefaultRepeatPenalty
	}
	return *s.RepeatPenalty
}

// Result is the outcome of one translation request. Exactly one of Text or
// Err is meaningful; Err empty means success.
type Result struct {
	Text string
	Err  string
}

// reply converts a Result into the wire object forwarded to the controller:
// {"result": ...} on success, {"error": ...} otherwise, never both.
func (r Result) reply() map[string]any {
	if r.Err != "" {
		return map[string]any{"error": r.Err}
	}
	return map[string]any{"result": r.Text}
}
