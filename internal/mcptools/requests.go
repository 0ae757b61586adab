package mcptools

// Request shapes for each Engine Façade operation (spec.md §4.11),
// reflected into JSON Schema by internal/toolschema. Field comments
// become each property's schema description.

// ValidateGrammarRequest is the input to validate_grammar.
type ValidateGrammarRequest struct {
	// GrammarText is the full ANTLR4 .g4 source to validate.
	GrammarText string `json:"grammarText" jsonschema:"required"`
}

// ParseSampleRequest is the input to parse_sample.
type ParseSampleRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Input       string `json:"input" jsonschema:"required"`
	StartRule   string `json:"startRule" jsonschema:"required"`
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`
}

// DetectAmbiguityRequest is the input to detect_ambiguity.
type DetectAmbiguityRequest struct {
	GrammarText       string   `json:"grammarText" jsonschema:"required"`
	StartRule         string   `json:"startRule" jsonschema:"required"`
	Samples           []string `json:"samples" jsonschema:"required"`
	PerSampleTimeoutSeconds int `json:"perSampleTimeoutSeconds,omitempty"`
}

// AnalyzeCallGraphRequest is the input to analyze_call_graph.
type AnalyzeCallGraphRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
}

// AnalyzeComplexityRequest is the input to analyze_complexity.
type AnalyzeComplexityRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
}

// AnalyzeLeftRecursionRequest is the input to analyze_left_recursion.
type AnalyzeLeftRecursionRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
}

// AnalyzeFirstFollowRequest is the input to analyze_first_follow.
type AnalyzeFirstFollowRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Rule        string `json:"rule,omitempty"`
}

// VisualizeATNRequest is the input to visualize_atn.
type VisualizeATNRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Rule        string `json:"rule" jsonschema:"required"`
}

// VisualizeDecisionRequest is the input to visualize_decision.
type VisualizeDecisionRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Rule        string `json:"rule" jsonschema:"required"`
}

// ProfileParseRequest is the input to profile_parse.
type ProfileParseRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Input       string `json:"input" jsonschema:"required"`
	StartRule   string `json:"startRule" jsonschema:"required"`
}

// GenerateTestInputsRequest is the input to generate_test_inputs.
type GenerateTestInputsRequest struct {
	GrammarText string `json:"grammarText" jsonschema:"required"`
	Rule        string `json:"rule" jsonschema:"required"`
	MaxCount    int    `json:"maxCount,omitempty"`
}
