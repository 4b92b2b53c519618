package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// judgePromptTemplate is the fixed evaluation prompt. The judge is
// instructed to answer with a strict JSON object; everything else about
// its output is treated defensively.
const judgePromptTemplate = `USER QUERY:
{{.Query}}

CONTEXT (Passage IDs: {{.PassageIDs}}):
{{.Context}}

AI RESPONSE:
{{.Response}}

QUESTION: Is there any information stated in the AI response that is NOT present in the context above? If yes, mark it as a hallucination.

Return JSON:
{"hallucination": true/false, "hallucinated_claims": ["specific information not in context"], "relevance_score": 0.0-1.0, "completeness_score": 0.0-1.0, "missing_info": []}
`

// contextSeparator joins passage texts inside the prompt.
const contextSeparator = "\n\n"

// JudgeClient formats the fixed evaluation prompt, invokes the judge
// model, and defensively parses its reply into a normalized Judgment.
// Transport and parse failures both degrade to safe defaults; a judge
// failure never propagates as an error, so one bad turn cannot abort its
// siblings.
type JudgeClient struct {
	llm    ports.LLMClient
	tmpl   *template.Template
	logger *slog.Logger
	tracer trace.Tracer

	maxTokens     int
	temperature   float64
	contextWindow int
}

// NewJudgeClient creates a judge client around the given LLM client.
// Generation parameters come from the pipeline configuration; timeouts are
// the LLM client's concern (judge calls are allowed to be very slow).
func NewJudgeClient(llm ports.LLMClient, cfg Config, logger *slog.Logger) (*JudgeClient, error) {
	if llm == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("judgePrompt").Parse(judgePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse judge prompt template: %w", err)
	}

	return &JudgeClient{
		llm:           llm,
		tmpl:          tmpl,
		logger:        logger,
		tracer:        otel.Tracer("judge-client"),
		maxTokens:     cfg.JudgeMaxTokens,
		temperature:   cfg.JudgeTemperature,
		contextWindow: cfg.JudgeContextWindow,
	}, nil
}

// Judge evaluates one response against its query and context passages.
// The returned Judgment is always usable: a real parsed judgment, the
// neutral default on parse failure, or the neutral default tagged
// MethodLLMJudgeError on transport failure.
func (jc *JudgeClient) Judge(ctx context.Context, query, response string, passages []domain.ContextPassage) domain.Judgment {
	ctx, span := jc.tracer.Start(ctx, "JudgeClient.Judge",
		trace.WithAttributes(
			attribute.String("judge.model", jc.llm.GetModel()),
			attribute.Int("judge.passages", len(passages)),
		),
	)
	defer span.End()

	prompt, err := jc.buildPrompt(query, response, passages)
	if err != nil {
		// Template execution over plain strings cannot realistically fail,
		// but a judgment must still come back if it does.
		span.RecordError(err)
		return domain.ErrorJudgment(err)
	}

	options := map[string]any{
		"temperature":    jc.temperature,
		"max_tokens":     jc.maxTokens,
		"context_window": jc.contextWindow,
		"format":         "json",
	}

	raw, err := jc.llm.Complete(ctx, prompt, options)
	if err != nil {
		span.RecordError(err)
		jc.logger.Warn("judge call failed, substituting neutral judgment", "error", err)
		return domain.ErrorJudgment(err)
	}

	judgment := parseJudgment(raw)
	span.SetAttributes(
		attribute.Bool("judge.hallucination", judgment.Hallucination),
		attribute.Int("judge.claims", len(judgment.HallucinatedClaims)),
		attribute.String("judge.method", judgment.Method),
	)
	return judgment
}

func (jc *JudgeClient) buildPrompt(query, response string, passages []domain.ContextPassage) (string, error) {
	texts := make([]string, len(passages))
	ids := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
		ids[i] = strconv.Itoa(p.ID)
	}
	passageIDs := "[unknown]"
	if len(ids) > 0 {
		passageIDs = "[" + strings.Join(ids, ", ") + "]"
	}

	var buf bytes.Buffer
	data := struct {
		Query      string
		Context    string
		Response   string
		PassageIDs string
	}{
		Query:      query,
		Context:    strings.Join(texts, contextSeparator),
		Response:   response,
		PassageIDs: passageIDs,
	}
	if err := jc.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute judge prompt template: %w", err)
	}
	return buf.String(), nil
}

// judgeReply mirrors the JSON shape requested from the judge. Score fields
// are pointers so an omitted score is distinguishable from an explicit 0,
// and list entries stay raw because models return both plain strings and
// nested structures.
type judgeReply struct {
	Hallucination      bool              `json:"hallucination"`
	HallucinatedClaims []json.RawMessage `json:"hallucinated_claims"`
	RelevanceScore     *float64          `json:"relevance_score"`
	CompletenessScore  *float64          `json:"completeness_score"`
	MissingInfo        []json.RawMessage `json:"missing_info"`
}

// parseJudgment turns raw judge output into a normalized Judgment,
// substituting the neutral default when no parseable JSON object can be
// recovered.
func parseJudgment(raw string) domain.Judgment {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return domain.NeutralJudgment()
	}

	var reply judgeReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return domain.NeutralJudgment()
	}

	j := domain.Judgment{
		Hallucination:      reply.Hallucination,
		HallucinatedClaims: normalizeEntries(reply.HallucinatedClaims),
		MissingInfo:        normalizeEntries(reply.MissingInfo),
		Method:             domain.MethodLLMJudge,
	}
	if reply.RelevanceScore != nil {
		j.RelevanceScore = *reply.RelevanceScore
		j.RelevancePresent = true
	}
	if reply.CompletenessScore != nil {
		j.CompletenessScore = *reply.CompletenessScore
		j.CompletenessPresent = true
	}
	return j.Clamp()
}

// normalizeEntries flattens a list of judge-model values to plain strings.
// Plain strings pass through; {claim, score, label} objects contribute
// their claim text; anything else keeps its compact JSON form.
func normalizeEntries(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}

		var structured struct {
			Claim string `json:"claim"`
		}
		if err := json.Unmarshal(r, &structured); err == nil && structured.Claim != "" {
			out = append(out, structured.Claim)
			continue
		}

		out = append(out, strings.TrimSpace(string(r)))
	}
	return out
}

// extractJSON recovers a JSON object from a response that may wrap it in
// markdown code fences or surrounding prose. It returns the first
// balanced top-level object, respecting strings and escapes, or "" when
// none exists.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json") + len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if strings.Contains(response, "```") {
		start := strings.Index(response, "```") + 3
		if nl := strings.Index(response[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escapeNext := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
