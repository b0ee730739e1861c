package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	systemPromptContent := "Test system prompt for screening"
	userPromptContent := "Test user prompt template: {{RESUME}}"

	systemPromptFile := filepath.Join(tempDir, "system.analyze.md")
	userPromptFile := filepath.Join(tempDir, "user.analyze.md")

	if err := os.WriteFile(systemPromptFile, []byte(systemPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test system prompt file: %v", err)
	}
	if err := os.WriteFile(userPromptFile, []byte(userPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test user prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPromptFile: systemPromptFile,
					UserPromptFile:   userPromptFile,
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	loaded := GetPromptsForOperation(OperationAnalyze)
	if loaded.SystemPrompt != systemPromptContent {
		t.Errorf("Expected loaded system prompt content '%s', got '%s'", systemPromptContent, loaded.SystemPrompt)
	}
	if loaded.UserPrompt != userPromptContent {
		t.Errorf("Expected loaded user prompt content '%s', got '%s'", userPromptContent, loaded.UserPrompt)
	}

	// Other operations did not load anything
	if other := GetPromptsForOperation(OperationATS); other.SystemPrompt != "" || other.UserPrompt != "" {
		t.Errorf("Expected no prompts for ats, got %+v", other)
	}

	if config.AI.Analyze.CustomPrompts.SystemPromptFile != systemPromptFile {
		t.Error("Expected system prompt file path to be preserved")
	}
}

func TestGlobalPromptFallback(t *testing.T) {
	tempDir := t.TempDir()

	globalFile := filepath.Join(tempDir, "system.md")
	if err := os.WriteFile(globalFile, []byte("Global persona"), 0600); err != nil {
		t.Fatalf("Failed to create global prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			CustomPrompts: PromptConfig{SystemPromptFile: globalFile},
		},
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	for _, op := range Operations {
		if got := GetPromptsForOperation(op).SystemPrompt; got != "Global persona" {
			t.Errorf("Expected %s to fall back to the global prompt, got '%s'", op, got)
		}
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()

	validFile := filepath.Join(tempDir, "valid.md")
	if err := os.WriteFile(validFile, []byte("Valid content"), 0600); err != nil {
		t.Fatalf("Failed to create valid test file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Compare: OperationAIConfig{
				CustomPrompts: PromptConfig{SystemPromptFile: validFile},
			},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	config.AI.Compare.CustomPrompts.SystemPromptFile = filepath.Join(tempDir, "nonexistent.md")
	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte("\n  "+content+"  \n"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	config := &Config{}
	loadedContent, err := config.loadPromptFromFile(testFile, "system", OperationAnalyze)
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}
	if loadedContent != content {
		t.Errorf("Expected content '%s', got '%s'", content, loadedContent)
	}

	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte(""), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}
	if _, err := config.loadPromptFromFile(emptyFile, "system", OperationAnalyze); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err := config.loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", OperationAnalyze); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestPromptFileIntegration(t *testing.T) {
	tempDir := t.TempDir()

	systemPrompt := "Custom system prompt for testing"
	userPrompt := "Custom user prompt"

	systemFile := filepath.Join(tempDir, "system.md")
	userFile := filepath.Join(tempDir, "user.md")

	if err := os.WriteFile(systemFile, []byte(systemPrompt), 0600); err != nil {
		t.Fatalf("Failed to create system prompt file: %v", err)
	}
	if err := os.WriteFile(userFile, []byte(userPrompt), 0600); err != nil {
		t.Fatalf("Failed to create user prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Provider:       ProviderGemini,
			Model:          "test-model",
			Timeout:        60 * time.Second,
			APIKey:         "test-key",
			MaxRetries:     3,
			Temperature:    0.7,
			MaxResumeChars: 12000,
			Retry:          RetryConfig{BaseDelay: time.Second, Multiplier: 2, MaxDelay: 30 * time.Second},
			Questions: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPromptFile: systemFile,
					UserPromptFile:   userFile,
				},
			},
		},
		Screening: ScreeningConfig{DefaultMode: ModeAI},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
	}

	config.applyFallbacks()

	if err := config.validatePromptFiles(); err != nil {
		t.Fatalf("Prompt file validation failed: %v", err)
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Expected valid configuration, got: %v", err)
	}

	loaded := GetPromptsForOperation(OperationQuestions)
	if loaded.SystemPrompt != systemPrompt {
		t.Errorf("Expected system prompt '%s', got '%s'", systemPrompt, loaded.SystemPrompt)
	}
	if loaded.UserPrompt != userPrompt {
		t.Errorf("Expected user prompt '%s', got '%s'", userPrompt, loaded.UserPrompt)
	}

	if config.AI.Questions.CustomPrompts.SystemPromptFile != systemFile {
		t.Error("Expected system prompt file path to be preserved")
	}
}
