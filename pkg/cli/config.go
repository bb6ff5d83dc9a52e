package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/adapter"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/persona"
	"github.com/m-mizutani/rosetta/pkg/repository"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/m-mizutani/rosetta/pkg/tool/egypt"
	"github.com/m-mizutani/rosetta/pkg/tool/mcp"
	"github.com/m-mizutani/rosetta/pkg/tool/timeline"
	"github.com/m-mizutani/rosetta/pkg/tool/translate"
	"github.com/m-mizutani/rosetta/pkg/tool/wikipedia"
	"github.com/m-mizutani/rosetta/pkg/usecase/agent"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Storage
	dataDir string
	userID  string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	mcpConfig      string

	// Memory
	maxShortTerm       int64
	memorableThreshold int64

	// Dispatch
	toolTimeout time.Duration
	maxInFlight int64
	maxTools    int64
	cacheTTL    time.Duration

	turnDeadline time.Duration

	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Aliases:     []string{"d"},
			Usage:       "Directory for conversation logs and memory snapshots",
			Value:       "./data",
			Sources:     cli.EnvVars("ROSETTA_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User ID for profile and memory",
			Value:       "default_user",
			Sources:     cli.EnvVars("ROSETTA_USER_ID"),
			Destination: &cfg.userID,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ROSETTA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "mcp-config",
			Usage:       "Path to MCP server configuration YAML",
			Sources:     cli.EnvVars("ROSETTA_MCP_CONFIG"),
			Destination: &cfg.mcpConfig,
		},
	}
}

// memoryFlags returns flags controlling memory retention
func memoryFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "memory-short-term",
			Usage:       "Max turns kept in short-term memory",
			Value:       20,
			Sources:     cli.EnvVars("ROSETTA_MEMORY_SHORT_TERM"),
			Destination: &cfg.maxShortTerm,
		},
		&cli.IntFlag{
			Name:        "memorable-threshold",
			Usage:       "How many memorability signals promote a turn to the ledger",
			Value:       2,
			Sources:     cli.EnvVars("ROSETTA_MEMORABLE_THRESHOLD"),
			Destination: &cfg.memorableThreshold,
		},
	}
}

// dispatchFlags returns flags controlling tool dispatch
func dispatchFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "tool-timeout",
			Usage:       "Per-call timeout for tool execution",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("ROSETTA_TOOL_TIMEOUT"),
			Destination: &cfg.toolTimeout,
		},
		&cli.IntFlag{
			Name:        "tool-concurrency",
			Usage:       "Max tool calls in flight",
			Value:       2,
			Sources:     cli.EnvVars("ROSETTA_TOOL_CONCURRENCY"),
			Destination: &cfg.maxInFlight,
		},
		&cli.IntFlag{
			Name:        "max-tools",
			Usage:       "Max tools selected per turn",
			Value:       3,
			Sources:     cli.EnvVars("ROSETTA_MAX_TOOLS"),
			Destination: &cfg.maxTools,
		},
		&cli.DurationFlag{
			Name:        "tool-cache-ttl",
			Usage:       "TTL for cached tool results, 0 disables caching",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("ROSETTA_TOOL_CACHE_TTL"),
			Destination: &cfg.cacheTTL,
		},
		&cli.DurationFlag{
			Name:        "turn-deadline",
			Usage:       "Overall deadline for processing one turn",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("ROSETTA_TURN_DEADLINE"),
			Destination: &cfg.turnDeadline,
		},
	}
}

// setupLogger installs the configured logger and binds it to the context
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates the local file repository
func (cfg *config) newRepository() (repository.Repository, error) {
	if cfg.dataDir == "" {
		return nil, goerr.New("data-dir is required")
	}

	repo, err := repository.NewLocal(cfg.dataDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a Gemini adapter. Without a project the agent runs
// degraded on fallback replies, so a missing project is not an error.
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		logging.From(ctx).Warn("gemini-project not set, running with fallback replies only")
		return nil, nil
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}
	return gemini, nil
}

// newRegistry builds and probes the tool registry, built-ins plus any
// configured MCP servers
func (cfg *config) newRegistry(ctx context.Context) (*tool.Registry, error) {
	tools := []tool.Tool{
		wikipedia.New(),
		egypt.New(),
		timeline.New(),
		translate.New(),
	}

	if cfg.mcpConfig != "" {
		remote, err := mcp.LoadAndConnect(ctx, cfg.mcpConfig)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load MCP config")
		}
		tools = append(tools, remote...)
	}

	opts := []tool.RegistryOption{
		tool.WithDispatchConfig(tool.DispatchConfig{
			CallTimeout: cfg.toolTimeout,
			MaxInFlight: cfg.maxInFlight,
			CacheTTL:    cfg.cacheTTL,
		}),
	}
	if cfg.maxTools > 0 {
		opts = append(opts, tool.WithMaxTools(int(cfg.maxTools)))
	}

	registry, err := tool.New(tools, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create tool registry")
	}

	if err := registry.Init(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize tools")
	}
	return registry, nil
}

// newAgent assembles the full agent and starts a session for the
// configured user
func (cfg *config) newAgent(ctx context.Context) (*agent.Agent, error) {
	repo, err := cfg.newRepository()
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := cfg.newRegistry(ctx)
	if err != nil {
		return nil, err
	}

	memCfg := memory.DefaultConfig()
	if cfg.maxShortTerm > 0 {
		memCfg.MaxShortTerm = int(cfg.maxShortTerm)
	}
	if cfg.memorableThreshold > 0 {
		memCfg.MemorableThreshold = int(cfg.memorableThreshold)
	}

	store, err := memory.New(repo, memCfg)
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		logging.From(ctx).Warn("failed to load memory snapshot", "error", err)
	}

	mood, err := persona.New()
	if err != nil {
		return nil, err
	}

	var agentOpts []agent.Option
	if cfg.turnDeadline > 0 {
		agentOpts = append(agentOpts, agent.WithDeadline(cfg.turnDeadline))
	}

	ag := agent.New(gemini, registry, store, mood, agentOpts...)
	ag.StartSession(ctx, cfg.userID)
	return ag, nil
}
