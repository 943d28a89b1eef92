package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"
)

// CallOptions holds options for the call command.
type CallOptions struct {
	*GlobalOptions

	Data []string
	Raw  bool
}

// NewCallCommand creates the call command, issuing one API request.
func NewCallCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &CallOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Issue a single API call",
		Long: `Issue a single API call against the shop and print the response.

GET, POST, PUT and DELETE are supported. POST and PUT payload fields are
passed with --data and sent url-encoded the way the platform expects.`,
		Example: `  # List products of the configured shop
  shoplo call GET /products

  # Create a manufacturer using a profile from the shops file
  shoplo -p acme call POST /manufacturers -d name=Acme

  # Fetch raw XML without decoding
  shoplo --format xml call GET /products --raw`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Data, "data", "d", nil, "request data field as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print the raw response body without decoding")

	return cmd
}

func runCall(cmd *cobra.Command, opts *CallOptions, method, path string) error {
	client, err := getClient(opts.GlobalOptions)
	if err != nil {
		return err
	}
	if opts.Raw {
		client.SetProcessResponse(false)
	}

	data, err := parseDataFields(opts.Data)
	if err != nil {
		return err
	}

	result, err := client.Execute(cmd.Context(), method, path, data)
	if err != nil {
		return err
	}

	out, err := renderResult(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// parseDataFields turns repeated key=value flags into a request data map.
func parseDataFields(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid data field %q (expected key=value)", pair)
		}
		data[key] = value
	}
	return data, nil
}

// renderResult pretty-prints a response payload per its type.
func renderResult(result any) (string, error) {
	switch payload := result.(type) {
	case nil:
		return "", nil
	case string:
		return payload, nil
	case *etree.Document:
		payload.Indent(2)
		out, err := payload.WriteToString()
		if err != nil {
			return "", fmt.Errorf("render xml: %w", err)
		}
		return strings.TrimRight(out, "\n"), nil
	default:
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render json: %w", err)
		}
		return string(out), nil
	}
}
