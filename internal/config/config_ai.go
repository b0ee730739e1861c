package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
	if !opCfg.CircuitBreaker.Enabled && opCfg.CircuitBreaker.MaxRequests == 0 {
		opCfg.CircuitBreaker = c.AI.CircuitBreaker
	}

	// OpenRouter keeps its own credentials and model naming
	if opCfg.Provider == ProviderOpenRouter {
		if opCfg.Model == "" {
			opCfg.Model = c.OpenRouter.Model
		}
		if opCfg.APIKey == "" {
			opCfg.APIKey = c.OpenRouter.APIKey
		}
		opCfg.BaseURL = c.OpenRouter.BaseURL
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}

	opCfg.Retry = c.AI.Retry
	opCfg.MaxResumeChars = c.AI.MaxResumeChars
}

// applyPromptDefaults falls back to the global custom prompts for any prompt the operation leaves unset
func (c *Config) applyPromptDefaults(opCfg *OperationAIConfig) {
	p := &opCfg.CustomPrompts
	if p.SystemPrompt == "" {
		p.SystemPrompt = c.AI.CustomPrompts.SystemPrompt
	}
	if p.UserPrompt == "" {
		p.UserPrompt = c.AI.CustomPrompts.UserPrompt
	}
	if p.SystemPromptFile == "" {
		p.SystemPromptFile = c.AI.CustomPrompts.SystemPromptFile
	}
	if p.UserPromptFile == "" {
		p.UserPromptFile = c.AI.CustomPrompts.UserPromptFile
	}
}

// operationSection returns the raw configuration section of an operation
func (c *Config) operationSection(operation string) OperationAIConfig {
	switch operation {
	case OperationQuestions:
		return c.AI.Questions
	case OperationCompare:
		return c.AI.Compare
	case OperationATS:
		return c.AI.ATS
	default:
		return c.AI.Analyze
	}
}

// GetOperationConfig returns the AI configuration for an operation with fallback to global config
func (c *Config) GetOperationConfig(operation string) OperationAIConfig {
	config := c.operationSection(operation)
	c.applyOperationDefaults(&config)
	c.applyPromptDefaults(&config)
	return config
}

// GetAnalyzeConfig returns the AI configuration for resume analysis
func (c *Config) GetAnalyzeConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationAnalyze)
}

// GetQuestionsConfig returns the AI configuration for interview question generation
func (c *Config) GetQuestionsConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationQuestions)
}

// GetCompareConfig returns the AI configuration for candidate comparison
func (c *Config) GetCompareConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationCompare)
}

// GetATSConfig returns the AI configuration for ATS optimization
func (c *Config) GetATSConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationATS)
}

// HasAICredentials reports whether the analyze operation can reach an AI backend
func (c *Config) HasAICredentials() bool {
	return c.GetAnalyzeConfig().APIKey != ""
}
