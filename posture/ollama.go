package posture

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Generator is the slice of the Ollama client the advisor needs.
type Generator interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// ModelAdvisor asks a local language model for a one-word order.
type ModelAdvisor struct {
	gen     Generator
	model   string
	timeout time.Duration
}

func NewModelAdvisor(gen Generator, model string, timeout time.Duration) *ModelAdvisor {
	if model == "" {
		model = "llama3.2"
	}
	return &ModelAdvisor{gen: gen, model: model, timeout: timeout}
}

// NewOllamaAdvisor connects to host, or to OLLAMA_HOST when host is empty.
func NewOllamaAdvisor(host, model string, timeout time.Duration) (*ModelAdvisor, error) {
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		return NewModelAdvisor(c, model, timeout), nil
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}
	return NewModelAdvisor(api.NewClient(u, http.DefaultClient), model, timeout), nil
}

const promptTemplate = `You are a StarCraft II Bot. Analyze the enemy and choose a strategy.

LOGIC GATES:
1. IF enemy has (Tanks, Bunkers, Planetary Fortress) -> STOP RUSH. Output: MACRO.
2. IF enemy has (Void Rays, Banshees, Battlecruisers) -> STOP RUSH. Output: COUNTER.
3. IF enemy has NO army and NO defense -> ATTACK. Output: RUSH.
4. IF I have 0 Gas -> MACRO.

Situation: %q

COMMAND (Reply with ONE word: RUSH, MACRO, or COUNTER):`

func prompt(summary string) string {
	return fmt.Sprintf(promptTemplate, summary)
}

func (m *ModelAdvisor) Advise(ctx context.Context, s Situation) (Posture, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	stream := false
	req := &api.GenerateRequest{
		Model:  m.model,
		Prompt: prompt(s.Summary),
		Stream: &stream,
	}
	var reply strings.Builder
	err := m.gen.Generate(ctx, req, func(r api.GenerateResponse) error {
		reply.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("generate posture: %w", err)
	}

	p := ParseReply(reply.String())
	slog.Debug("model advice", "model", m.model, "reply", reply.String(), "posture", p)
	return p, nil
}

// ParseReply reads the first word of a model reply, ignoring markdown bold
// and full stops. Anything that is not a known order means Defensive.
func ParseReply(reply string) Posture {
	cleaned := strings.NewReplacer("*", "", ".", "").Replace(reply)
	fields := strings.Fields(strings.ToUpper(cleaned))
	if len(fields) == 0 {
		return Defensive
	}
	switch fields[0] {
	case "RUSH":
		return Aggressive
	case "COUNTER":
		return Counter
	case "MACRO":
		return Defensive
	}
	return Defensive
}
