// Package intentflow provides a high-level façade over the routing pipeline
// (classifier, specialists, orchestrator, memory & knowledge retrieval)
// enabling rapid construction of an intent-routed customer service system.
// Most applications interact with this package by:
//  1. Creating an IntentFlow via New() (optionally overriding the config or services)
//  2. Processing queries synchronously (ProcessQuery)
//  3. Or serving the HTTP boundary (Serve)
//
// The façade delegates routing to orchestrator.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development: with
// no provider credentials every component runs on its deterministic fallback
// path, so the system still answers queries.
package intentflow

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/intentflow/agent"
	"github.com/hupe1980/intentflow/classify"
	"github.com/hupe1980/intentflow/config"
	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/evaluation"
	"github.com/hupe1980/intentflow/knowledge"
	"github.com/hupe1980/intentflow/logging"
	"github.com/hupe1980/intentflow/memory"
	"github.com/hupe1980/intentflow/model"
	"github.com/hupe1980/intentflow/model/anthropic"
	"github.com/hupe1980/intentflow/model/openai"
	"github.com/hupe1980/intentflow/orchestrator"
	"github.com/hupe1980/intentflow/server"
	"github.com/hupe1980/intentflow/voice"
)

// Options configure the IntentFlow instance.
type Options struct {
	// Config drives provider selection, memory and knowledge wiring
	// (defaults to config.Default()).
	Config *config.Config

	// Model overrides the provider selected by the config. Setting it skips
	// credential discovery entirely; tests inject a model.MockModel here.
	Model model.Model

	// Embedder overrides the embedding capability for knowledge retrieval.
	// Nil keeps the config-driven default (OpenAI when credentials exist,
	// keyword search otherwise).
	Embedder knowledge.Embedder

	// Store overrides conversation memory (defaults per config: Redis when
	// redis_url is set, in-memory otherwise).
	Store core.ConversationStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// IntentFlow is the high-level façade aggregating the routing pipeline and
// its services.
type IntentFlow struct {
	cfg        *config.Config
	model      model.Model
	classifier *classify.Classifier
	orch       *orchestrator.Orchestrator
	store      core.ConversationStore
	logger     logging.Logger
}

// New creates a new IntentFlow instance with optional overrides. Any unset
// service is initialized from the config; missing provider credentials put
// the whole pipeline in rule-based fallback mode rather than failing.
func New(optFns ...func(o *Options)) (*IntentFlow, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config

	m, err := resolveModel(cfg, opts)
	if err != nil {
		return nil, err
	}

	store, err := resolveStore(cfg, opts)
	if err != nil {
		return nil, err
	}

	retriever, err := resolveRetriever(cfg, opts, m != nil)
	if err != nil {
		return nil, err
	}

	classifier := classify.NewClassifier(m, func(o *classify.ClassifierOptions) {
		o.Timeout = cfg.Model.Timeout
		o.Logger = opts.Logger
	})

	specialistOpts := func(o *agent.SpecialistOptions) {
		if retriever != nil {
			o.Retriever = retriever
		}
		o.RetrieveK = cfg.Knowledge.RetrieveK
		o.Timeout = cfg.Model.Timeout
		o.Logger = opts.Logger
	}
	orch := orchestrator.New(
		classifier,
		agent.NewBillingSpecialist(m, specialistOpts),
		agent.NewAccountSpecialist(m, specialistOpts),
		agent.NewEscalationHandler(m, specialistOpts),
		func(o *orchestrator.Options) {
			o.ConfidenceThreshold = cfg.Routing.ConfidenceThreshold
			o.Store = store
			o.Logger = opts.Logger
		},
	)

	return &IntentFlow{
		cfg:        cfg,
		model:      m,
		classifier: classifier,
		orch:       orch,
		store:      store,
		logger:     opts.Logger,
	}, nil
}

// resolveModel picks the generative capability per the config. Absent
// credentials are a supported deployment mode, not an error.
func resolveModel(cfg *config.Config, opts Options) (model.Model, error) {
	if opts.Model != nil {
		return opts.Model, nil
	}

	var (
		m   model.Model
		err error
	)
	switch cfg.Model.Provider {
	case "openai", "":
		m, err = openai.NewModel(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
		})
	case "anthropic":
		m, err = anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
		})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
	if err != nil {
		if errors.Is(err, model.ErrUnavailable) {
			opts.Logger.Warn("model provider unavailable, running on rule-based fallbacks",
				"provider", cfg.Model.Provider, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func resolveStore(cfg *config.Config, opts Options) (core.ConversationStore, error) {
	if opts.Store != nil {
		return opts.Store, nil
	}
	if cfg.Memory.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.Memory.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return memory.NewRedisStore(redis.NewClient(redisOpts), func(o *memory.RedisOptions) {
			o.MaxTurns = cfg.Memory.MaxTurns
			o.TTL = cfg.Memory.TTL
		}), nil
	}
	return memory.NewInMemoryStore(func(o *memory.Options) {
		o.MaxTurns = cfg.Memory.MaxTurns
		o.TTL = cfg.Memory.TTL
	}), nil
}

// resolveRetriever builds the knowledge retriever when a corpus is
// configured. The semantic path needs an embedder; without one (or without
// provider credentials) the retriever runs keyword search.
func resolveRetriever(cfg *config.Config, opts Options, hasModel bool) (*knowledge.Retriever, error) {
	if cfg.Knowledge.DocsPath == "" {
		return nil, nil
	}

	embedder := opts.Embedder
	if embedder == nil && hasModel && cfg.Model.Provider != "anthropic" {
		e, err := knowledge.NewOpenAIEmbedder()
		if err == nil {
			embedder = e
		} else if !errors.Is(err, model.ErrUnavailable) {
			return nil, err
		}
	}

	return knowledge.NewRetriever(cfg.Knowledge.DocsPath, func(o *knowledge.RetrieverOptions) {
		o.Embedder = embedder
		o.IndexPath = cfg.Knowledge.IndexPath
		o.ChunkSize = cfg.Knowledge.ChunkSize
		o.ChunkOverlap = cfg.Knowledge.ChunkOverlap
		o.Logger = opts.Logger
	})
}

// ProcessQuery routes a single query through the pipeline.
func (f *IntentFlow) ProcessQuery(ctx context.Context, userID, query string, customerContext map[string]any) (*core.AgentResponse, error) {
	return f.orch.ProcessQuery(ctx, userID, query, customerContext)
}

// Model exposes the configured generative capability; nil in rule-based mode.
func (f *IntentFlow) Model() model.Model { return f.model }

// Classifier exposes the classifier, mainly for evaluation wiring.
func (f *IntentFlow) Classifier() *classify.Classifier { return f.classifier }

// Orchestrator exposes the routing state machine.
func (f *IntentFlow) Orchestrator() *orchestrator.Orchestrator { return f.orch }

// Store exposes conversation memory.
func (f *IntentFlow) Store() core.ConversationStore { return f.store }

// EvaluationRunner builds a Runner over this instance's live components.
func (f *IntentFlow) EvaluationRunner(optFns ...func(o *evaluation.RunnerOptions)) *evaluation.Runner {
	return evaluation.NewRunner(f.classifier, f.orch, optFns...)
}

// Serve runs the HTTP boundary (chat, health, evaluate and the voice relay)
// until the context is cancelled.
func (f *IntentFlow) Serve(ctx context.Context) error {
	srv := server.New(f.orch, func(o *server.Options) {
		o.Addr = f.cfg.Server.Addr
		o.Store = f.store
		o.Runner = f.EvaluationRunner()
		o.Voice = voice.NewRelay(f.orch, func(vo *voice.Options) {
			vo.Logger = f.logger
		})
		o.Logger = f.logger
	})
	return srv.Run(ctx)
}
