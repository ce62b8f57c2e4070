// cmd/web/main.go
//
// askform – command-line entry point.
//
// Commands
// --------
//
//	askform [serve]        run the HTTP server (default)
//	askform check [file|-] validate a JSON record, exit 1 on errors
//	askform fill           fill the form interactively in the terminal
//
// Boot order for serve lives in serve.go.  The other commands share the
// form engine and the embedded contact definition but never open a socket.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/yanizio/askform/components/contact" // registers contact/ask
	"github.com/yanizio/askform/internal/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "askform",
	Short: "Serve and validate the “Ask Your Question” contact form",
	Long: `askform serves a single contact form with live, per-field validation.

  askform                 start the server (same as "askform serve")
  askform check q.json    validate a record without a browser
  askform fill            answer the form in the terminal`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "console log level for check and fill (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, checkCmd, fillCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// consoleLogger is the stderr logger used by the offline commands.
func consoleLogger() {
	lvl := logLevel
	if lvl == "" {
		lvl = "warn"
	}
	logger.NewConsole(lvl)
}
