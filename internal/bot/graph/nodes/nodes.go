package nodes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/ai-rag-weather/server/internal/bot/intent"
	"github.com/ai-rag-weather/server/internal/bot/model"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// Node names used in graph construction
const (
	NodeRouter    = "Router"
	NodeWeather   = "Weather"
	NodeRAG       = "RAG"
	NodeSynthesis = "Synthesis"
)

const missingCityAnswer = "Please mention a city, e.g., “What’s the weather in Mumbai?”"

const citySuggestionLimit = 3

// NewRouterNode creates the Router node that seeds the query state.
func NewRouterNode() *compose.Lambda {
	return compose.InvokableLambda(routerFunc)
}

// routerFunc resolves the intent. A caller-supplied intent (the UI's
// force-weather toggle) wins over classification.
func routerFunc(ctx context.Context, input model.QueryInput) (*model.QueryState, error) {
	in := input.Intent
	if in == "" {
		in = intent.Classify(input.UserInput)
	}
	logx.Debug().Str("intent", string(in)).Msg("query routed")
	return &model.QueryState{UserInput: input.UserInput, Intent: in}, nil
}

// NewIntentCondition creates the branch condition after the router.
func NewIntentCondition() func(context.Context, *model.QueryState) (string, error) {
	return func(ctx context.Context, state *model.QueryState) (string, error) {
		if state.Intent == model.IntentWeather {
			return NodeWeather, nil
		}
		return NodeRAG, nil
	}
}

// NewWeatherNode creates the Weather node. It never returns an error:
// every failure becomes an answer so the run always reaches synthesis.
func NewWeatherNode(gw model.WeatherGateway) *compose.Lambda {
	return compose.InvokableLambda(weatherFunc(gw))
}

func weatherFunc(gw model.WeatherGateway) func(context.Context, *model.QueryState) (*model.QueryState, error) {
	return func(ctx context.Context, state *model.QueryState) (*model.QueryState, error) {
		out := state.Clone()

		city, ok := intent.ExtractCity(state.UserInput)
		if !ok {
			out.Answer = missingCityAnswer
			return out, nil
		}

		rec, err := gw.Fetch(ctx, city)
		if err == nil && rec != nil {
			// leave Answer unset so synthesis composes it
			out.Weather = rec
			return out, nil
		}
		logx.Warn().Err(err).Str("city", city).Msg("weather fetch failed, trying city suggestions")

		suggestions := gw.SearchCities(ctx, city, citySuggestionLimit)
		if len(suggestions) > 0 {
			out.Answer = fmt.Sprintf("Couldn’t find '%s'. Did you mean one of these? %s. Try again with a suggestion.",
				city, formatSuggestions(suggestions))
			return out, nil
		}

		out.Answer = fmt.Sprintf("Couldn’t fetch weather for %s or find similar cities. Check spelling or try another city.", city)
		return out, nil
	}
}

// NewRAGNode creates the RAG node. Gateway failures become a warning
// answer with Retrieval left unset; nothing propagates to the caller.
func NewRAGNode(gw model.RetrievalGateway) *compose.Lambda {
	return compose.InvokableLambda(ragFunc(gw))
}

func ragFunc(gw model.RetrievalGateway) func(context.Context, *model.QueryState) (*model.QueryState, error) {
	return func(ctx context.Context, state *model.QueryState) (*model.QueryState, error) {
		out := state.Clone()

		result, err := gw.Retrieve(ctx, state.UserInput)
		if err != nil {
			logx.Error().Err(err).Msg("retrieval failed")
			out.Answer = fmt.Sprintf("⚠️ Retrieval step failed: %v", err)
			return out, nil
		}

		answer, err := gw.Summarize(ctx, state.UserInput, result.Contexts)
		if err != nil {
			logx.Error().Err(err).Msg("summarization failed")
			out.Answer = fmt.Sprintf("⚠️ Retrieval step failed: %v", err)
			return out, nil
		}

		out.Retrieval = result
		out.Answer = answer
		return out, nil
	}
}

// NewSynthesisNode creates the terminal Synthesis node. It only
// composes an answer when the weather path left one for it; every
// other path arrives with Answer already set and passes through.
func NewSynthesisNode() *compose.Lambda {
	return compose.InvokableLambda(synthesisFunc)
}

func synthesisFunc(ctx context.Context, state *model.QueryState) (*model.QueryState, error) {
	if state.Weather == nil || state.Answer != "" {
		return state, nil
	}
	out := state.Clone()
	w := out.Weather
	out.Answer = fmt.Sprintf("%s, %s: %s. Temp %s° (%s° feels like). Humidity %d%%, wind %s m/s.",
		w.City, w.Country, w.Description,
		formatMetric(w.Temp), formatMetric(w.FeelsLike),
		w.Humidity, formatMetric(w.WindSpeed))
	return out, nil
}

func formatSuggestions(suggestions []model.CitySuggestion) string {
	parts := make([]string, len(suggestions))
	for i, s := range suggestions {
		country := s.Country
		if country == "" {
			country = "?"
		}
		parts[i] = fmt.Sprintf("%s, %s", s.Name, country)
	}
	return strings.Join(parts, ", ")
}

// formatMetric renders a reading with at least one decimal so whole
// numbers stay visibly metric ("28.0", not "28").
func formatMetric(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
