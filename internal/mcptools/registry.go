// Package mcptools adapts the Engine Façade (C11) to MCP tool calls,
// following the teacher's mcptools/tools.go shape: a Registry holding
// a slice of ToolDef{Name, Description, InputSchema, Handler} values,
// looked up by name on dispatch. Here InputSchema is generated by
// internal/toolschema instead of hand-written, and the backing state
// is the antlrlens Engine instead of an editor.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/odvcencio/antlrlens/engine"
	"github.com/odvcencio/antlrlens/internal/toolschema"
)

// ToolDef describes one MCP tool (mirrors the teacher's mcptools.ToolDef).
type ToolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     func(params json.RawMessage) (interface{}, error)
}

// Registry holds every MCP tool wired to the Engine Façade.
type Registry struct {
	eng   *engine.Engine
	tools []ToolDef
}

// NewRegistry builds a Registry backed by eng, registering one tool
// per Engine Façade operation (spec.md §10.8).
func NewRegistry(eng *engine.Engine) *Registry {
	r := &Registry{eng: eng}
	r.registerTools()
	return r
}

// Tools returns all registered MCP tools.
func (r *Registry) Tools() []ToolDef {
	return r.tools
}

// HandleTool dispatches a tool call by name.
func (r *Registry) HandleTool(name string, params json.RawMessage) (interface{}, error) {
	for _, t := range r.tools {
		if t.Name == name {
			return t.Handler(params)
		}
	}
	return nil, fmt.Errorf("unknown tool: %s", name)
}

func (r *Registry) registerTools() {
	r.tools = []ToolDef{
		r.toolValidateGrammar(),
		r.toolParseSample(),
		r.toolDetectAmbiguity(),
		r.toolAnalyzeCallGraph(),
		r.toolAnalyzeComplexity(),
		r.toolAnalyzeLeftRecursion(),
		r.toolAnalyzeFirstFollow(),
		r.toolVisualizeATN(),
		r.toolVisualizeDecision(),
		r.toolProfileParse(),
		r.toolGenerateTestInputs(),
	}
}

func (r *Registry) toolValidateGrammar() ToolDef {
	return ToolDef{
		Name:        "validate_grammar",
		Description: "Parses and validates an ANTLR4 grammar, reporting rule counts, errors, and warnings.",
		InputSchema: toolschema.Of[ValidateGrammarRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req ValidateGrammarRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, _ := r.eng.Validate(req.GrammarText)
			return result, nil
		},
	}
}

func (r *Registry) toolParseSample() ToolDef {
	return ToolDef{
		Name:        "parse_sample",
		Description: "Lexes and parses a sample input against a grammar rule, returning the parse tree, tokens, and any errors.",
		InputSchema: toolschema.Of[ParseSampleRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req ParseSampleRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			timeout := time.Duration(req.TimeoutSeconds) * time.Second
			result, _ := r.eng.ParseSample(context.Background(), req.GrammarText, req.Input, req.StartRule, timeout)
			return result, nil
		},
	}
}

func (r *Registry) toolDetectAmbiguity() ToolDef {
	return ToolDef{
		Name:        "detect_ambiguity",
		Description: "Parses a batch of sample inputs and reports ambiguity/context-sensitivity events per sample and per rule.",
		InputSchema: toolschema.Of[DetectAmbiguityRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req DetectAmbiguityRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			timeout := time.Duration(req.PerSampleTimeoutSeconds) * time.Second
			result, _ := r.eng.DetectAmbiguity(req.GrammarText, req.StartRule, req.Samples, timeout)
			return result, nil
		},
	}
}

func (r *Registry) toolAnalyzeCallGraph() ToolDef {
	return ToolDef{
		Name:        "analyze_call_graph",
		Description: "Builds the rule call graph: edges, cycles, BFS depths from the start rule, and unused rules.",
		InputSchema: toolschema.Of[AnalyzeCallGraphRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req AnalyzeCallGraphRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.AnalyzeCallGraph(req.GrammarText)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}

func (r *Registry) toolAnalyzeComplexity() ToolDef {
	return ToolDef{
		Name:        "analyze_complexity",
		Description: "Reports per-rule alternative/decision-point counts and aggregate complexity metrics.",
		InputSchema: toolschema.Of[AnalyzeComplexityRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req AnalyzeComplexityRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.AnalyzeComplexity(req.GrammarText)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}

func (r *Registry) toolAnalyzeLeftRecursion() ToolDef {
	return ToolDef{
		Name:        "analyze_left_recursion",
		Description: "Reports which rules are left-recursive, whether the ATN builder transformed them, and any indirect left-recursion cycles.",
		InputSchema: toolschema.Of[AnalyzeLeftRecursionRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req AnalyzeLeftRecursionRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.AnalyzeLeftRecursion(req.GrammarText)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}

func (r *Registry) toolAnalyzeFirstFollow() ToolDef {
	return ToolDef{
		Name:        "analyze_first_follow",
		Description: "Computes FIRST/FOLLOW sets per rule and flags decisions that are ambiguous by lookahead, optionally restricted to one rule.",
		InputSchema: toolschema.Of[AnalyzeFirstFollowRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req AnalyzeFirstFollowRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.AnalyzeFirstFollow(req.GrammarText, req.Rule)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}

func (r *Registry) toolVisualizeATN() ToolDef {
	return ToolDef{
		Name:        "visualize_atn",
		Description: "Renders a rule's ATN as DOT and Mermaid state-diagram source.",
		InputSchema: toolschema.Of[VisualizeATNRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req VisualizeATNRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.VisualizeATN(req.GrammarText, req.Rule)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}

func (r *Registry) toolVisualizeDecision() ToolDef {
	return ToolDef{
		Name:        "visualize_decision",
		Description: "Enumerates a rule's decision points and renders the sub-ATN rooted at each one as DOT.",
		InputSchema: toolschema.Of[VisualizeDecisionRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req VisualizeDecisionRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.VisualizeDecision(req.GrammarText, req.Rule)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}

func (r *Registry) toolProfileParse() ToolDef {
	return ToolDef{
		Name:        "profile_parse",
		Description: "Parses a sample with profiling enabled, returning per-decision invocation/lookahead/transition/ambiguity/error statistics.",
		InputSchema: toolschema.Of[ProfileParseRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req ProfileParseRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, _ := r.eng.Profile(context.Background(), req.GrammarText, req.Input, req.StartRule)
			return result, nil
		},
	}
}

func (r *Registry) toolGenerateTestInputs() ToolDef {
	return ToolDef{
		Name:        "generate_test_inputs",
		Description: "Generates sample input strings that exercise a rule's alternatives, up to maxCount.",
		InputSchema: toolschema.Of[GenerateTestInputsRequest](),
		Handler: func(params json.RawMessage) (interface{}, error) {
			var req GenerateTestInputsRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
			result, problems := r.eng.GenerateTestInputs(req.GrammarText, req.Rule, req.MaxCount)
			if problems.HasErrors() {
				return nil, problems
			}
			return result, nil
		},
	}
}
