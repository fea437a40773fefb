package models

import (
	"fmt"
	"sort"
	"strings"
)

// ContextKind selects which form a Context was filled from
type ContextKind string

const (
	KindPersonal ContextKind = "personal"
	KindTeam     ContextKind = "team"
)

// Goal is the template bucket of a personal context
type Goal string

const (
	GoalLearn      Goal = "learn"
	GoalPortfolio  Goal = "portfolio"
	GoalAutomation Goal = "automation"
	GoalIncome     Goal = "income"
	GoalCommunity  Goal = "community"
)

// Goals lists personal goals in form order
var Goals = []Goal{GoalLearn, GoalPortfolio, GoalAutomation, GoalIncome, GoalCommunity}

// SessionType is the template bucket of a team context
type SessionType string

const (
	SessionProduct    SessionType = "product"
	SessionMarketing  SessionType = "marketing"
	SessionStrategy   SessionType = "strategy"
	SessionOperations SessionType = "operations"
)

// SessionTypes lists team session types in form order
var SessionTypes = []SessionType{SessionProduct, SessionMarketing, SessionStrategy, SessionOperations}

// TimeBudgets are the choices offered by the personal form
var TimeBudgets = []string{"Weekend", "1-2 weeks", "1 month", "Longer-term"}

// Context is the user input collected by one form submission
type Context struct {
	Kind ContextKind `json:"kind"`

	// Personal
	Interests   string `json:"interests,omitempty"`
	Skills      string `json:"skills,omitempty"`
	TimeBudget  string `json:"time_budget,omitempty"`
	Goal        Goal   `json:"goal,omitempty"`
	Constraints string `json:"constraints,omitempty"`

	// Team
	CompanyName string      `json:"company_name,omitempty"`
	ProductName string      `json:"product_name,omitempty"`
	Timeline    string      `json:"timeline,omitempty"`
	TeamGoals   string      `json:"team_goals,omitempty"`
	SessionType SessionType `json:"session_type,omitempty"`
}

// EffectiveKind returns the kind, treating an empty kind as personal
func (c *Context) EffectiveKind() ContextKind {
	if c.Kind == "" {
		return KindPersonal
	}
	return c.Kind
}

// Bucket returns the template bucket the context selects.
// Unknown enum values fall back to the first bucket of the kind.
func (c *Context) Bucket() string {
	if c.EffectiveKind() == KindTeam {
		for _, s := range SessionTypes {
			if s == c.SessionType {
				return string(s)
			}
		}
		return string(SessionProduct)
	}

	for _, g := range Goals {
		if g == c.Goal {
			return string(g)
		}
	}
	return string(GoalLearn)
}

// Validate checks that every free-text field of the kind is filled in
// and that the enum is one of its literals.
func (c *Context) Validate() error {
	switch c.EffectiveKind() {
	case KindPersonal:
		if err := requireFields(map[string]string{
			"interests":   c.Interests,
			"skills":      c.Skills,
			"time_budget": c.TimeBudget,
			"constraints": c.Constraints,
		}); err != nil {
			return err
		}
		if c.Goal != "" && string(c.Goal) != c.Bucket() {
			return fmt.Errorf("goal must be one of %s", joinEnum(Goals))
		}
	case KindTeam:
		if err := requireFields(map[string]string{
			"company_name": c.CompanyName,
			"product_name": c.ProductName,
			"timeline":     c.Timeline,
			"team_goals":   c.TeamGoals,
		}); err != nil {
			return err
		}
		if c.SessionType != "" && string(c.SessionType) != c.Bucket() {
			return fmt.Errorf("session_type must be one of %s", joinEnum(SessionTypes))
		}
	default:
		return fmt.Errorf("unknown context kind: %q", c.Kind)
	}
	return nil
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%s is required", strings.Join(missing, ", "))
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
