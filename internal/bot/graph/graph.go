package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/ai-rag-weather/server/internal/bot/graph/nodes"
	"github.com/ai-rag-weather/server/internal/bot/graph/observers"
	"github.com/ai-rag-weather/server/internal/bot/model"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

const fallbackAnswer = "I couldn’t produce an answer."

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) *model.QueryState
}

// Config holds the gateways needed to compose the query graph end-to-end.
type Config struct {
	Weather   model.WeatherGateway
	Retrieval model.RetrievalGateway
}

// GraphBuilder handles the construction of the query routing graph
type GraphBuilder struct {
	config Config
	graph  *compose.Graph[model.QueryInput, *model.QueryState]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.QueryState]
}

// Invoke runs one query through the graph. It is the outer error
// boundary: panics and graph errors become a fallback answer, so the
// caller always gets a usable state.
func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (out *model.QueryState) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Any("panic", rec).Str("query", in.UserInput).Msg("graph run panicked")
			out = &model.QueryState{UserInput: in.UserInput, Intent: in.Intent, Answer: fallbackAnswer}
		}
	}()

	state, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewGraphCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("query", in.UserInput).Msg("graph run failed")
		return &model.QueryState{UserInput: in.UserInput, Intent: in.Intent, Answer: fallbackAnswer}
	}
	if state == nil || state.Answer == "" {
		logx.Warn().Str("query", in.UserInput).Msg("graph run produced no answer")
		return &model.QueryState{UserInput: in.UserInput, Intent: in.Intent, Answer: fallbackAnswer}
	}
	return state
}

// BuildQueryGraph builds the router/weather/rag/synthesis graph and
// returns a Runner over the compiled form.
func BuildQueryGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Weather == nil {
		return nil, fmt.Errorf("weather gateway is nil")
	}
	if cfg.Retrieval == nil {
		return nil, fmt.Errorf("retrieval gateway is nil")
	}

	builder := &GraphBuilder{
		config: cfg,
		graph:  compose.NewGraph[model.QueryInput, *model.QueryState](),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Query graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeRouter, nodes.NewRouterNode())
	b.graph.AddLambdaNode(nodes.NodeWeather, nodes.NewWeatherNode(b.config.Weather))
	b.graph.AddLambdaNode(nodes.NodeRAG, nodes.NewRAGNode(b.config.Retrieval))
	b.graph.AddLambdaNode(nodes.NodeSynthesis, nodes.NewSynthesisNode())
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeRouter},
		{nodes.NodeWeather, nodes.NodeSynthesis},
		{nodes.NodeRAG, nodes.NodeSynthesis},
		{nodes.NodeSynthesis, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the conditional intent routing branch
func (b *GraphBuilder) addBranches() error {
	intentBranch := compose.NewGraphBranch(
		nodes.NewIntentCondition(),
		map[string]bool{
			nodes.NodeWeather: true,
			nodes.NodeRAG:     true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeRouter, intentBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent branch")
		return fmt.Errorf("error adding intent branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.QueryState], error) {
	// Four nodes plus one branch; ten steps is generous headroom
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
