package cli

import (
	"fmt"
	"os"

	"github.com/ggoodman/contracts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) newCheckCmd() *cobra.Command {
	var questionMark bool
	cmd := &cobra.Command{
		Use:   "check EXAMPLE DOCUMENT",
		Short: "Check a document against the shape of an example",
		Long: `Build a contract from the EXAMPLE document with FromExample and check the
DOCUMENT against it. Both files may be YAML or JSON. With --optional-marker,
example keys starting with "?" describe optional fields.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			example, err := readDocument(args[0])
			if err != nil {
				return err
			}
			doc, err := readDocument(args[1])
			if err != nil {
				return err
			}

			c := contracts.FromExample(example, questionMark)
			if err := c.Check(doc, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&questionMark, "optional-marker", true, `treat example keys starting with "?" as optional fields`)
	return cmd
}

// readDocument decodes a YAML or JSON file. JSON is read by the YAML decoder,
// which accepts it.
func readDocument(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}
