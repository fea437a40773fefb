package models

import (
	"strings"
	"time"
)

// Level is a three-valued rating
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

// ParseLevel normalises free-form model output to a Level
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return LevelHigh, true
	case "medium", "med", "moderate":
		return LevelMedium, true
	case "low":
		return LevelLow, true
	}
	return "", false
}

// PriorityAt returns the priority assigned to the idea at index
func PriorityAt(index int) Level {
	switch index % 3 {
	case 0:
		return LevelHigh
	case 1:
		return LevelMedium
	default:
		return LevelLow
	}
}

// EffortAt returns the effort assigned to the idea at index
func EffortAt(index int) Level {
	if index%2 == 0 {
		return LevelLow
	}
	return LevelMedium
}

// ImpactAt returns the impact assigned to the idea at index
func ImpactAt(index int) Level {
	if index%3 == 0 {
		return LevelHigh
	}
	return LevelMedium
}

// Idea is a single suggestion card
type Idea struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    Level  `json:"priority"`
	Effort      Level  `json:"effort"`
	Impact      Level  `json:"impact"`
}

// ResultSource tells where the ideas of a Result came from
type ResultSource string

const (
	SourceLLM      ResultSource = "llm"
	SourceTemplate ResultSource = "template"
)

// Result is the outcome of one generation
type Result struct {
	ID            string       `json:"id"`
	Understanding string       `json:"understanding"`
	Ideas         []Idea       `json:"ideas"`
	Source        ResultSource `json:"source"`
	Bucket        string       `json:"bucket"`
	Provider      ProviderType `json:"provider,omitempty"`
	Model         string       `json:"model,omitempty"`
	Warning       string       `json:"warning,omitempty"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

// GenerateRequest is the body of an idea generation call
type GenerateRequest struct {
	Context Context   `json:"context"`
	Config  LLMConfig `json:"config"`
}
