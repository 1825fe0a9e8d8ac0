package cli

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
)

// printResult renders a command result as indented JSON on stdout, filtered
// through the --jq expression when one is set.
func printResult(cmd *cobra.Command, value any) error {
	return printFiltered(cmd, value, jqExpression)
}

func printFiltered(cmd *cobra.Command, value any, expression string) error {
	plain, err := toPlainJSON(value)
	if err != nil {
		return err
	}

	if expression != "" {
		plain, err = applyJQ(expression, plain)
		if err != nil {
			return err
		}
	}

	rendered, err := json.MarshalIndent(plain, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
	return nil
}

// toPlainJSON normalizes a typed value into the generic JSON shapes gojq
// operates on.
func toPlainJSON(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	return plain, nil
}

// applyJQ runs a jq expression over the input. A filter producing a single
// value prints that value; multiple values print as an array.
func applyJQ(expression string, input any) (any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expression, err)
	}

	var results []any
	iter := query.Run(input)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := value.(error); isErr {
			return nil, fmt.Errorf("jq expression %q failed: %w", expression, err)
		}
		results = append(results, value)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
