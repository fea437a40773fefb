package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/terra-clan/ideaforge/internal/models"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// Understanding sentences used when a bucket does not define its own
const (
	personalUnderstanding = `Based on your context, you are into {{.Interests}} and comfortable with {{.Skills}}. ` +
		`With a {{.TimeBudget}} time budget and the constraints "{{.Constraints}}", these {{.Goal}} ideas stay solo-sized and buildable.`
	teamUnderstanding = `Based on your context, I understand that {{.CompanyName}} is focused on {{.ProductName}}. ` +
		`Your team goals involve {{.TeamGoals}} within a {{.Timeline}} timeframe. ` +
		`For this {{.SessionType}} session, we need to bridge the gap between your current product capabilities and these specific objectives.`
)

// Bucket is a parsed set of idea templates for one enum value
type Bucket struct {
	Kind          models.ContextKind `json:"kind"`
	Name          string             `json:"name"`
	Ideas         int                `json:"ideas"`
	understanding *template.Template
	titles        []*template.Template
	descriptions  []*template.Template
}

// Loader manages loading and caching of idea template buckets
type Loader struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

// NewLoader creates a loader holding the built-in buckets
func NewLoader() (*Loader, error) {
	l := &Loader{
		buckets: make(map[string]*Bucket),
	}

	entries, err := fs.ReadDir(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in templates: %w", err)
	}
	for _, entry := range entries {
		data, err := defaultsFS.ReadFile("defaults/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		if err := l.LoadFromBytes(entry.Name(), data); err != nil {
			return nil, fmt.Errorf("built-in template %s: %w", entry.Name(), err)
		}
	}

	return l, nil
}

// LoadFromDir overlays YAML buckets from a directory. Files that fail to
// parse are logged and skipped.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading templates from directory", "dir", dir)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load template", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("templates loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single bucket from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return l.LoadFromBytes(filepath.Base(path), data)
}

// LoadFromBytes parses and registers a bucket, replacing one of the same kind and name
func (l *Loader) LoadFromBytes(name string, data []byte) error {
	var bf bucketFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	bucket, err := bf.compile(name)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.buckets[bucketKey(bucket.Kind, bucket.Name)] = bucket
	l.mu.Unlock()

	slog.Debug("template loaded", "kind", bucket.Kind, "bucket", bucket.Name, "ideas", bucket.Ideas)
	return nil
}

// Get retrieves a bucket by kind and name
func (l *Loader) Get(kind models.ContextKind, name string) *Bucket {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buckets[bucketKey(kind, name)]
}

// List returns all loaded buckets ordered by kind and name
func (l *Loader) List() []*Bucket {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Bucket, 0, len(l.buckets))
	for _, b := range l.buckets {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Len returns the number of loaded buckets
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Render builds the deterministic template result for a context.
// Ratings depend only on the idea index.
func (l *Loader) Render(c models.Context) (*models.Result, error) {
	kind := c.EffectiveKind()
	name := c.Bucket()
	if kind == models.KindTeam {
		c.SessionType = models.SessionType(name)
	} else {
		c.Goal = models.Goal(name)
	}

	bucket := l.Get(kind, name)
	if bucket == nil {
		return nil, fmt.Errorf("no template bucket for %s/%s", kind, name)
	}

	understanding, err := execute(bucket.understanding, c)
	if err != nil {
		return nil, err
	}

	ideas := make([]models.Idea, bucket.Ideas)
	for i := range ideas {
		title, err := execute(bucket.titles[i], c)
		if err != nil {
			return nil, err
		}
		desc, err := execute(bucket.descriptions[i], c)
		if err != nil {
			return nil, err
		}
		ideas[i] = models.Idea{
			ID:          strconv.Itoa(i),
			Title:       title,
			Description: desc,
			Priority:    models.PriorityAt(i),
			Effort:      models.EffortAt(i),
			Impact:      models.ImpactAt(i),
		}
	}

	return &models.Result{
		ID:            uuid.New().String(),
		Understanding: understanding,
		Ideas:         ideas,
		Source:        models.SourceTemplate,
		Bucket:        name,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

func execute(t *template.Template, c models.Context) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func bucketKey(kind models.ContextKind, name string) string {
	return string(kind) + "/" + name
}

// --- YAML file structs ---

// bucketFile represents the YAML structure of a bucket file
type bucketFile struct {
	Kind          string     `yaml:"kind"`
	Bucket        string     `yaml:"bucket"`
	Understanding string     `yaml:"understanding"`
	Ideas         []ideaFile `yaml:"ideas"`
}

type ideaFile struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

func (bf bucketFile) compile(source string) (*Bucket, error) {
	kind := models.ContextKind(bf.Kind)
	var known bool
	switch kind {
	case models.KindPersonal:
		for _, g := range models.Goals {
			known = known || string(g) == bf.Bucket
		}
	case models.KindTeam:
		for _, s := range models.SessionTypes {
			known = known || string(s) == bf.Bucket
		}
	default:
		return nil, fmt.Errorf("unknown kind %q", bf.Kind)
	}
	if !known {
		return nil, fmt.Errorf("unknown %s bucket %q", kind, bf.Bucket)
	}
	if len(bf.Ideas) == 0 {
		return nil, fmt.Errorf("bucket %s has no ideas", bf.Bucket)
	}

	understanding := bf.Understanding
	if understanding == "" {
		understanding = personalUnderstanding
		if kind == models.KindTeam {
			understanding = teamUnderstanding
		}
	}

	b := &Bucket{
		Kind:  kind,
		Name:  bf.Bucket,
		Ideas: len(bf.Ideas),
	}

	var err error
	if b.understanding, err = parse(source+":understanding", understanding); err != nil {
		return nil, err
	}
	for i, idea := range bf.Ideas {
		if strings.TrimSpace(idea.Title) == "" {
			return nil, fmt.Errorf("idea %d: title is required", i)
		}
		title, err := parse(fmt.Sprintf("%s:ideas[%d].title", source, i), idea.Title)
		if err != nil {
			return nil, err
		}
		desc, err := parse(fmt.Sprintf("%s:ideas[%d].description", source, i), idea.Description)
		if err != nil {
			return nil, err
		}
		b.titles = append(b.titles, title)
		b.descriptions = append(b.descriptions, desc)
	}

	return b, nil
}

func parse(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return t, nil
}
