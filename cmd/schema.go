package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/history"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolP("index", "i", false, "Schema of the dataset index instead")
	schemaCmd.Flags().Bool("history", false, "Schema of the history file instead")
	schemaCmd.MarkFlagsMutuallyExclusive("index", "history")
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the dataset files",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "meta", "entry":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("index")):
			schema = reflector.Reflect(map[string]*dataset.Meta{})
		case lo.Must(cmd.Flags().GetBool("history")):
			schema = reflector.Reflect(map[string]*history.Entry{})
		default:
			schema = reflector.Reflect(&dataset.Dataset{})
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
