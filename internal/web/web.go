package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/terra-clan/ideaforge/internal/models"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

type option struct {
	Value string
	Label string
}

// PageData is rendered into the form page
type PageData struct {
	TimeBudgets        []string
	Goals              []option
	SessionTypes       []option
	DefaultTemperature float64
	DefaultMaxTokens   int
	MinMaxTokens       int
	MaxMaxTokens       int
}

func newPageData() PageData {
	return PageData{
		TimeBudgets: models.TimeBudgets,
		Goals: []option{
			{string(models.GoalLearn), "Learn a new skill"},
			{string(models.GoalPortfolio), "Portfolio piece"},
			{string(models.GoalAutomation), "Automate my life"},
			{string(models.GoalIncome), "Side income"},
			{string(models.GoalCommunity), "Community impact"},
		},
		SessionTypes: []option{
			{string(models.SessionProduct), "Product"},
			{string(models.SessionMarketing), "Marketing"},
			{string(models.SessionStrategy), "Strategy"},
			{string(models.SessionOperations), "Operations"},
		},
		DefaultTemperature: models.DefaultTemperature,
		DefaultMaxTokens:   models.DefaultMaxTokens,
		MinMaxTokens:       models.MinMaxTokens,
		MaxMaxTokens:       models.MaxMaxTokens,
	}
}

// Handler serves the form page and its static assets
func Handler() http.Handler {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplates.ExecuteTemplate(w, "index.html", newPageData()); err != nil {
			slog.Error("failed to render page", "error", err)
			http.Error(w, "failed to render page", http.StatusInternalServerError)
		}
	})
	return mux
}
