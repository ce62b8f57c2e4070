// cmd/web/check.go
//
// `askform check` validates one JSON record against the contact form and
// prints every failure.  Exit status is 1 when the record is rejected, so
// the command composes in scripts:
//
//	echo '{"firstName":"Ada","terms":true}' | askform check -
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanizio/askform/components/contact"
	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/metrics"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Validate a JSON record without a browser",
	Long: `Reads a JSON object with the keys firstName, lastName, email, topic,
message, and terms from the named file (or stdin when the argument is
omitted or "-") and reports every field that fails.  Missing keys take the
form defaults.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// errRejected marks a record that parsed but failed validation.
var errRejected = errors.New("record rejected")

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print errors as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	consoleLogger()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	s := contact.DefaultState()
	if err := json.NewDecoder(in).Decode(&s); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	_, errs := contact.Validate(s)
	outcome := "accepted"
	if len(errs) > 0 {
		outcome = "rejected"
	}
	metrics.FormSubmissions.WithLabelValues(contact.FormID, outcome).Inc()

	return report(cmd.OutOrStdout(), errs)
}

// report prints errs in definition order.
func report(w io.Writer, errs contact.FieldErrors) error {
	fd, _ := form.GetFormDef(contact.FormID)
	ordered := make([]form.ErrorField, 0, len(errs))
	for _, f := range fd.Fields {
		if e, ok := errs[f.Name]; ok {
			ordered = append(ordered, e)
		}
	}

	if checkJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ordered); err != nil {
			return err
		}
	} else if len(ordered) == 0 {
		fmt.Fprintln(w, "ok")
	} else {
		for _, e := range ordered {
			fmt.Fprintf(w, "%-10s %-15s %s\n", e.Name, e.Kind, e.Message)
		}
	}

	if len(ordered) > 0 {
		return errRejected
	}
	return nil
}
