package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LoadedPrompts holds the content of system prompts loaded from files.
// An empty field means the built-in prompt is used.
type LoadedPrompts struct {
	Polish      string
	CoverLetter string
	Analysis    string
}

// Count returns how many prompts were overridden
func (p LoadedPrompts) Count() int {
	n := 0
	for _, s := range []string{p.Polish, p.CoverLetter, p.Analysis} {
		if s != "" {
			n++
		}
	}
	return n
}

// loadPromptsFromFiles loads custom system prompts from the configured files
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	files := c.Gemini.Prompts
	targets := []struct {
		path      string
		operation string
		target    *string
	}{
		{files.PolishSystemFile, "polish", &c.Prompts.Polish},
		{files.CoverLetterSystemFile, "coverLetter", &c.Prompts.CoverLetter},
		{files.AnalysisSystemFile, "analysis", &c.Prompts.Analysis},
	}

	for _, t := range targets {
		if t.path == "" {
			continue
		}
		content, err := loadPromptFromFile(t.path, t.operation)
		if err != nil {
			return err
		}
		*t.target = content
	}

	if n := c.Prompts.Count(); n == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", n)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s system prompt from file: %s (%d characters)",
		operation, absPath, len(trimmed))
	return trimmed, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, operation string) {
		if filePath == "" {
			return
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", operation, filePath))
			return
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", operation, absPath))
		}
	}

	validateFile(c.Gemini.Prompts.PolishSystemFile, "polish")
	validateFile(c.Gemini.Prompts.CoverLetterSystemFile, "coverLetter")
	validateFile(c.Gemini.Prompts.AnalysisSystemFile, "analysis")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}
