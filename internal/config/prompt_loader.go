package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const globalPrompts = "global"

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompt string
	UserPrompt   string
}

var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   = map[string]LoadedPrompts{}
)

// GetPromptsForOperation returns a copy of the prompts loaded for an operation.
// Prompts the operation did not load fall back to the globally loaded ones.
func GetPromptsForOperation(operation string) LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	result := loadedPrompts[operation]
	global := loadedPrompts[globalPrompts]
	if result.SystemPrompt == "" {
		result.SystemPrompt = global.SystemPrompt
	}
	if result.UserPrompt == "" {
		result.UserPrompt = global.UserPrompt
	}
	return result
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	sections := map[string]PromptConfig{globalPrompts: c.AI.CustomPrompts}
	for _, op := range Operations {
		sections[op] = c.operationSection(op).CustomPrompts
	}

	loaded := make(map[string]LoadedPrompts, len(sections))
	for name, prompts := range sections {
		var lp LoadedPrompts
		if prompts.SystemPromptFile != "" {
			content, err := c.loadPromptFromFile(prompts.SystemPromptFile, "system", name)
			if err != nil {
				return fmt.Errorf("failed to load %s system prompt: %w", name, err)
			}
			lp.SystemPrompt = content
		}
		if prompts.UserPromptFile != "" {
			content, err := c.loadPromptFromFile(prompts.UserPromptFile, "user", name)
			if err != nil {
				return fmt.Errorf("failed to load %s user prompt: %w", name, err)
			}
			lp.UserPrompt = content
		}
		loaded[name] = lp
	}

	loadedPromptsMu.Lock()
	loadedPrompts = loaded
	loadedPromptsMu.Unlock()

	c.logPromptLoadingSummary(loaded)
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemPromptFile, "system", globalPrompts)
	validateFile(c.AI.CustomPrompts.UserPromptFile, "user", globalPrompts)
	for _, op := range Operations {
		prompts := c.operationSection(op).CustomPrompts
		validateFile(prompts.SystemPromptFile, "system", op)
		validateFile(prompts.UserPromptFile, "user", op)
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary(loaded map[string]LoadedPrompts) {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0
	for _, name := range append([]string{globalPrompts}, Operations...) {
		lp := loaded[name]
		if lp.SystemPrompt != "" {
			log.Printf("[CONFIG] %s system prompt: loaded from file", name)
			promptCount++
		}
		if lp.UserPrompt != "" {
			log.Printf("[CONFIG] %s user prompt: loaded from file", name)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
