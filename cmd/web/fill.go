// cmd/web/fill.go
//
// `askform fill` walks the contact form in the terminal.  Prompts follow
// the form definition, so labels, placeholders, options, and defaults match
// the browser.  Each answer is checked with the same rule the live channel
// uses and re-asked until it passes; the complete record is then validated
// once more and handed to the form's actions, with the toast printed
// instead of queued for a browser.
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/core"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/yanizio/askform/components/contact"
	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/metrics"
	"github.com/yanizio/askform/internal/notify"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the form interactively",
	Args:  cobra.NoArgs,
	RunE:  runFill,
}

func runFill(cmd *cobra.Command, _ []string) error {
	consoleLogger()

	fd, ok := form.GetFormDef(contact.FormID)
	if !ok {
		return fmt.Errorf("%w %q", form.ErrUnknownForm, contact.FormID)
	}
	vals := form.DefaultValues(contact.FormID)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, fd.Title)

	for i := range fd.Fields {
		v, err := ask(&fd.Fields[i], vals[fd.Fields[i].Name])
		if errors.Is(err, terminal.InterruptErr) {
			return errors.New("aborted")
		}
		if err != nil {
			return err
		}
		vals[fd.Fields[i].Name] = v
	}

	s, errs := contact.Validate(contact.FromValues(vals))
	if len(errs) > 0 {
		metrics.FormSubmissions.WithLabelValues(contact.FormID, "rejected").Inc()
		return report(out, errs)
	}
	metrics.FormSubmissions.WithLabelValues(contact.FormID, "accepted").Inc()

	form.ExecuteActions(contact.FormID, s.Values(), form.ActionCtx{
		Ctx:    cmd.Context(),
		Notify: func(t notify.Toast) { printToast(out, t) },
	})
	return nil
}

// ask prompts for one field and returns a string or, for checkboxes, a bool.
func ask(f *form.FieldDef, def any) (any, error) {
	validate := survey.WithValidator(fieldValidator(f.Name))

	switch f.Type {
	case "checkbox":
		var b bool
		d, _ := def.(bool)
		err := survey.AskOne(&survey.Confirm{Message: f.Label, Default: d}, &b, validate)
		return b, err

	case "radio", "select":
		var s string
		p := &survey.Select{Message: f.Label, Options: f.Options}
		if d, _ := def.(string); d != "" {
			p.Default = d
		}
		err := survey.AskOne(p, &s, validate)
		return s, err

	case "textarea":
		var s string
		err := survey.AskOne(&survey.Multiline{Message: f.Label, Help: f.Placeholder}, &s, validate)
		return s, err

	default:
		var s string
		err := survey.AskOne(&survey.Input{Message: f.Label, Help: f.Placeholder}, &s, validate)
		return s, err
	}
}

// fieldValidator adapts the live single-field rule to survey.  Select
// prompts hand validators a core.OptionAnswer; the rule sees its value.
func fieldValidator(name string) survey.Validator {
	return func(ans any) error {
		if opt, ok := ans.(core.OptionAnswer); ok {
			ans = opt.Value
		}
		fe, err := contact.ValidateField(name, ans)
		if err != nil {
			return err
		}
		metrics.LiveValidations.WithLabelValues(contact.FormID, "cli").Inc()
		if fe != nil {
			return errors.New(fe.Message)
		}
		return nil
	}
}

func printToast(w io.Writer, t notify.Toast) {
	fmt.Fprintf(w, "✔ %s\n", t.Text)
}
