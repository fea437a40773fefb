package brainstorm

import (
	"fmt"
	"strings"

	"github.com/terra-clan/ideaforge/internal/models"
)

// SystemPrompt frames every generation call
const SystemPrompt = `You are a pragmatic brainstorming partner. You suggest concrete, buildable ideas ` +
	`that fit the user's context. You always answer with a single JSON object and nothing else.`

const replyShape = `Respond with JSON of exactly this shape:
{"understanding": "<one or two sentences restating the context>",
 "ideas": [{"title": "...", "description": "...", "priority": "High|Medium|Low", "effort": "High|Medium|Low", "impact": "High|Medium|Low"}]}
Return 6 ideas.`

// BuildPrompt describes the context to the model
func BuildPrompt(c models.Context) string {
	var b strings.Builder

	if c.EffectiveKind() == models.KindTeam {
		b.WriteString("Suggest ideas for a team brainstorming session.\n")
		fmt.Fprintf(&b, "Company: %s\n", c.CompanyName)
		fmt.Fprintf(&b, "Product: %s\n", c.ProductName)
		fmt.Fprintf(&b, "Timeline: %s\n", c.Timeline)
		fmt.Fprintf(&b, "Team goals: %s\n", c.TeamGoals)
		fmt.Fprintf(&b, "Session type: %s\n", c.Bucket())
	} else {
		b.WriteString("Suggest personal project ideas sized for one person.\n")
		fmt.Fprintf(&b, "Interests: %s\n", c.Interests)
		fmt.Fprintf(&b, "Skills / stack: %s\n", c.Skills)
		fmt.Fprintf(&b, "Time budget: %s\n", c.TimeBudget)
		fmt.Fprintf(&b, "Goal: %s\n", goalLabel(models.Goal(c.Bucket())))
		fmt.Fprintf(&b, "Constraints: %s\n", c.Constraints)
	}

	b.WriteString("\n")
	b.WriteString(replyShape)
	return b.String()
}

func goalLabel(g models.Goal) string {
	switch g {
	case models.GoalPortfolio:
		return "Portfolio piece"
	case models.GoalAutomation:
		return "Automate my life"
	case models.GoalIncome:
		return "Side income"
	case models.GoalCommunity:
		return "Community impact"
	default:
		return "Learn a new skill"
	}
}
