// Command wellnessd runs the Digital Wellness Assistant HTTP service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	rds "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wellnesskit/wellness-agents/agent"
	"github.com/wellnesskit/wellness-agents/config"
	"github.com/wellnesskit/wellness-agents/llm"
	"github.com/wellnesskit/wellness-agents/llm/anthropic"
	"github.com/wellnesskit/wellness-agents/llm/openai"
	"github.com/wellnesskit/wellness-agents/memory"
	"github.com/wellnesskit/wellness-agents/memory/inmemory"
	redismem "github.com/wellnesskit/wellness-agents/memory/redis"
	"github.com/wellnesskit/wellness-agents/observability/prom"
	"github.com/wellnesskit/wellness-agents/orchestrator"
	"github.com/wellnesskit/wellness-agents/profile"
	pgprofile "github.com/wellnesskit/wellness-agents/profile/postgres"
	httpserver "github.com/wellnesskit/wellness-agents/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model, err := newModelClient(cfg)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	store := newConversationStore(cfg, logger)

	var profiles profile.Store
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("failed to connect to Postgres", zap.Error(err))
		}
		defer pool.Close()
		profiles = pgprofile.New(pool, "")
		logger.Info("profile store enabled", zap.String("backend", "postgres"))
	}

	guard := &agent.Guardrails{MaxInputChars: cfg.MaxInputChars}

	symptom, err := agent.NewSymptomAgent(model, guard)
	if err != nil {
		logger.Fatal("failed to create symptom agent", zap.Error(err))
	}
	lifestyle, err := agent.NewLifestyleAgent(model, guard)
	if err != nil {
		logger.Fatal("failed to create lifestyle agent", zap.Error(err))
	}
	diet, err := agent.NewDietAgent(model, guard)
	if err != nil {
		logger.Fatal("failed to create diet agent", zap.Error(err))
	}
	fitness, err := agent.NewFitnessAgent(model, guard)
	if err != nil {
		logger.Fatal("failed to create fitness agent", zap.Error(err))
	}

	classifier := orchestrator.NewClassifier()
	if cfg.UseLLMClassifier {
		classifier = orchestrator.NewLLMClassifier(model)
	}

	exporter := prom.New()

	orch, err := orchestrator.New(orchestrator.Config{
		Agents: map[orchestrator.Intent]agent.Agent{
			orchestrator.IntentSymptom:   symptom,
			orchestrator.IntentLifestyle: lifestyle,
			orchestrator.IntentDiet:      diet,
			orchestrator.IntentFitness:   fitness,
		},
		Classifier: classifier,
		Memory:     store,
		Profiles:   profiles,
		Logger:     logger,
		Metrics:    exporter,
	})
	if err != nil {
		logger.Fatal("failed to create orchestrator", zap.Error(err))
	}
	exporter.SetActiveAgents(orch.AgentsAvailable())

	server := httpserver.NewServer(orch, logger, httpserver.Config{
		Port:           cfg.HTTPPort,
		EnableCORS:     true,
		MetricsHandler: exporter.Handler(),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	logger.Info("starting wellness assistant",
		zap.String("provider", cfg.Provider),
		zap.String("model", model.Model()),
		zap.Int("port", cfg.HTTPPort))

	if err := server.ListenAndServe(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newModelClient builds the primary provider client, with the other
// provider as fallback when both keys are configured.
func newModelClient(cfg *config.Config) (llm.Client, error) {
	var primary, secondary llm.Client

	if cfg.OpenAIAPIKey != "" {
		c, err := openai.NewClient(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  openAIModel(cfg),
		})
		if err != nil {
			return nil, err
		}
		if cfg.Provider == "openai" {
			primary = c
		} else {
			secondary = c
		}
	}

	if cfg.AnthropicAPIKey != "" {
		c, err := anthropic.NewClient(anthropic.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  anthropicModel(cfg),
		})
		if err != nil {
			return nil, err
		}
		if cfg.Provider == "anthropic" {
			primary = c
		} else {
			secondary = c
		}
	}

	if secondary == nil {
		return primary, nil
	}

	// With both providers configured, explicit per-request model overrides
	// route to the provider that serves the model; everything else goes to
	// the primary with the secondary as fallback on retryable errors.
	byModel := make(map[string]llm.Client)
	for name, m := range llm.AvailableModels {
		switch m.Provider {
		case primary.Provider():
			byModel[name] = primary
		case secondary.Provider():
			byModel[name] = secondary
		}
	}
	return llm.NewRouterClient(llm.StaticPolicy{
		Default: llm.NewFallbackClient(primary, secondary),
		ByModel: byModel,
	}), nil
}

func openAIModel(cfg *config.Config) string {
	if cfg.Provider == "openai" && cfg.Model != "" {
		return cfg.Model
	}
	return llm.ModelGPT4oMini
}

func anthropicModel(cfg *config.Config) string {
	if cfg.Provider == "anthropic" && cfg.Model != "" {
		return cfg.Model
	}
	return llm.ModelClaude35Haiku
}

func newConversationStore(cfg *config.Config, logger *zap.Logger) memory.ConversationStore {
	if cfg.RedisAddr == "" {
		logger.Info("conversation memory", zap.String("backend", "inmemory"))
		return inmemory.NewStore()
	}
	client := rds.NewClient(&rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	logger.Info("conversation memory", zap.String("backend", "redis"), zap.String("addr", cfg.RedisAddr))
	return redismem.NewStore(client, "wellness", cfg.MemoryTTL, memory.DefaultMaxMessages)
}
