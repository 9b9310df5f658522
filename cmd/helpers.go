package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"llamable/config"
	"llamable/generator"
)

// newLogger builds the process logger; CLI logs go to stderr so stdout
// stays usable for artifacts.
func newLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func buildLLM(cfg *config.Config) (generator.LLMClient, generator.CredentialSource, error) {
	if useMock {
		return generator.MockLLM{}, generator.StaticCredential("mock"), nil
	}
	switch cfg.LLM.Provider {
	case "llama", "openai", "":
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible API but has no default endpoint here.
		if cfg.LLM.BaseURL == "" {
			return nil, nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return nil, nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
	llm, err := generator.NewOpenAILLMFromConfig(cfg.LLMSettings())
	if err != nil {
		return nil, nil, err
	}
	return llm, cfg.Credentials(), nil
}

func buildAgent(cfg *config.Config, logger *zap.Logger) (*generator.Agent, error) {
	llm, creds, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, creds,
		generator.WithLogger(logger),
		generator.WithOptions(cfg.AgentOptions()),
		generator.WithClassifier(cfg.Classifier()),
	)
}
