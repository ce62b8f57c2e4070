// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file.  The file defines the form’s
//   identifier, title, submit label, fields, and any post-submit actions.
//   Components embed their forms/ directory and register it at init; an
//   optional on-disk override directory (form.override_dir) is layered on top
//   at startup.  Subsequent code (renderer, validator, actions, widgets)
//   fetches definitions from this registry by ID, guaranteeing a single
//   source of truth for both the browser markup and the server rules.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef / ActionDef.
//   •  LoadFormDef parses a single YAML file from an fs.FS and validates
//      structural rules.
//   •  RegisterFS walks a directory of an fs.FS, loads every “*.yaml”, and
//      adds the result to the registry.  Later registrations override
//      earlier ones with the same ID.
//   •  GetFormDef offers safe, read-only access to a parsed form by ID.
//
// Style
//   Comments follow the house guide: full sentences, two spaces after
//   periods, Oxford commas.  Helper comments use short noun phrases.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// The form is uniquely identified by ID which should be namespaced by
// component, e.g. “contact/ask”.  Actions are executed after successful
// validation.
type FormDef struct {
	ID      string      `yaml:"id"`      // Component-scoped identifier.
	Title   string      `yaml:"title"`   // Display title, optional.
	Submit  string      `yaml:"submit"`  // Submit button label, defaults to “Submit”.
	Fields  []FieldDef  `yaml:"fields"`  // Fields in display and validation order.
	Actions []ActionDef `yaml:"actions"` // Post-submit actions.  May be empty.
}

// FieldDef describes a single input control on the form.  Validation metadata
// lives inline so the server can enforce the same rules the client hints at.
type FieldDef struct {
	Name        string   `yaml:"name"`        // Submission key.  Required.
	Label       string   `yaml:"label"`       // Human-readable label.  Required.
	Type        string   `yaml:"type"`        // text, email, textarea, radio, select, checkbox.
	Placeholder string   `yaml:"placeholder"` // Optional placeholder text.
	Required    bool     `yaml:"required"`    // True if input is mandatory.
	MinLength   int      `yaml:"minlength"`   // ≥ 0, 0 means unset.  Counts trimmed runes.
	MaxLength   int      `yaml:"maxlength"`   // ≥ 0, 0 means unset.
	Pattern     string   `yaml:"pattern"`     // Regex pattern string.
	Options     []string `yaml:"options"`     // For select/radio.
	Default     string   `yaml:"default"`     // Initial value; must be an option for select/radio.
	Width       string   `yaml:"width"`       // “half” or “full” (default).
	ErrorMsg    string   `yaml:"error"`       // Custom error message, optional.
}

// ActionDef configures an automated action executed after validation.
//
// Action types are loosely typed so new kinds can be introduced without schema
// churn.  Unknown keys are tolerated here; executor code reads what it needs.
type ActionDef struct {
	Type   string         `yaml:"type"`    // log, toast.
	Params map[string]any `yaml:",inline"` // Action-specific fields inline.
}

// SubmitLabel returns the configured button text or “Submit”.
func (fd *FormDef) SubmitLabel() string {
	if fd.Submit == "" {
		return "Submit"
	}
	return fd.Submit
}

// Field returns the named FieldDef.
func (fd *FormDef) Field(name string) (*FieldDef, bool) {
	for i := range fd.Fields {
		if fd.Fields[i].Name == name {
			return &fd.Fields[i], true
		}
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// entry pairs a definition with its compiled validation rules.
type entry struct {
	def   *FormDef
	rules map[string]*fieldRule
}

// registry maps compositeID (“comp/form”) → entry.  Guarded by mutex.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*entry)
)

var (
	ErrUnknownForm  = errors.New("unknown form")
	ErrUnknownField = errors.New("unknown field")
)

// GetFormDef returns a parsed FormDef by composite ID (“component/form”).
// The boolean is false when the ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	e, ok := lookup(id)
	if !ok {
		return nil, false
	}
	return e.def, true
}

// IDs lists registered form IDs in lexical order.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func lookup(id string) (*entry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[id]
	return e, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file, validates its structure, and returns a
// populated FormDef.  It NEVER mutates the global registry.
func LoadFormDef(fsys fs.FS, name string) (*FormDef, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", name, err)
	}

	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}

	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}

	return &fd, nil
}

// RegisterFS loads every “*.yaml” under dir in fsys and registers it.  A
// missing dir is not an error.
//
// Example:
//
//	//go:embed forms
//	var formsFS embed.FS
//	err := form.RegisterFS(formsFS, "forms")
func RegisterFS(fsys fs.FS, dir string) error {
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Ext(d.Name()) != ".yaml" {
			return nil // skip non-YAML
		}

		fd, err := LoadFormDef(fsys, p)
		if err != nil {
			return err // fail fast so issues surface loudly.
		}
		return Register(fd)
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err // propagate IO or parse errors.
	}
	return nil
}

// MustRegisterFS is RegisterFS for embedded definitions, where a failure is
// a build defect.
func MustRegisterFS(fsys fs.FS, dir string) {
	if err := RegisterFS(fsys, dir); err != nil {
		panic("form: " + err.Error())
	}
}

// RegisterOverrides layers on-disk definitions from dir over the embedded
// ones.  An empty dir is a no-op.
func RegisterOverrides(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("form override dir: %w", err)
	}
	return RegisterFS(os.DirFS(dir), ".")
}

// Register inserts or overrides fd in the global registry and registers a
// corresponding widget.  fd is validated first.
func Register(fd *FormDef) error {
	if err := validateFormDef(fd, fd.ID); err != nil {
		return err
	}
	rules := make(map[string]*fieldRule, len(fd.Fields))
	for i := range fd.Fields {
		rules[fd.Fields[i].Name] = compileRule(&fd.Fields[i])
	}

	registryMu.Lock()
	_, replaced := registry[fd.ID]
	registry[fd.ID] = &entry{def: fd, rules: rules}
	registryMu.Unlock()

	injectWidgetRegistration(fd) // ensure widget available for templates.
	zap.S().Debugw("form registered", "form", fd.ID, "fields", len(fd.Fields), "override", replaced)
	return nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var (
	fieldTypes = map[string]bool{
		"text":     true,
		"email":    true,
		"textarea": true,
		"radio":    true,
		"select":   true,
		"checkbox": true,
	}

	// Known action types.  Unknown types are allowed for forward
	// compatibility but emit a warning so developers notice.
	validActions = map[string]bool{
		"log":   true,
		"toast": true,
	}
)

// validateFormDef enforces structural rules that cannot be expressed via YAML
// tags alone.  It returns a descriptive error referencing the offending file.
func validateFormDef(fd *FormDef, src string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", src)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", src)
	}

	fieldNames := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		if err := validateField(&fd.Fields[i], src); err != nil {
			return err
		}
		if _, dup := fieldNames[fd.Fields[i].Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", src, fd.Fields[i].Name)
		}
		fieldNames[fd.Fields[i].Name] = struct{}{}
	}

	for _, ac := range fd.Actions {
		if !validActions[ac.Type] {
			zap.S().Warnw("unrecognized form action", "form", fd.ID, "action", ac.Type)
		}
	}

	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, src string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", src)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", src, f.Name)
	}
	if f.Type == "" {
		return fmt.Errorf("form %s: field '%s' missing 'type'", src, f.Name)
	}
	if !fieldTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", src, f.Name, f.Type)
	}

	switch f.Width {
	case "", "full", "half":
	default:
		return fmt.Errorf("form %s: field '%s' width must be 'half' or 'full'", src, f.Name)
	}

	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", src, f.Name, err)
		}
	}

	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", src, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", src, f.Name)
	}

	if f.Type == "radio" || f.Type == "select" {
		if len(f.Options) == 0 {
			return fmt.Errorf("form %s: field '%s' needs 'options'", src, f.Name)
		}
		// Options become a oneof tag, which splits on spaces and quotes.
		for _, o := range f.Options {
			if o == "" || strings.ContainsAny(o, " \t\n'\",") {
				return fmt.Errorf("form %s: field '%s' option %q must be a single token", src, f.Name, o)
			}
		}
		if f.Default != "" && !optionAllowed(f.Options, f.Default) {
			return fmt.Errorf("form %s: field '%s' default %q is not an option", src, f.Name, f.Default)
		}
	}

	return nil
}

func optionAllowed(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
