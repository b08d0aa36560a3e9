package cli

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm/hxres"
)

func renderCmd(a *app) *cobra.Command {
	var format, accept string

	c := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a resource document",
		Long: `Render reads a resource document in YAML (or JSON) from file, or stdin
when file is "-" or omitted, and writes it in the selected format.

	type: post
	attributes: {id: 1, title: Hello}
	links:
	  - {rel: self, uri: /posts/1}
	subresources:
	  - rel: author
	    resource: {type: author, attributes: {name: Ann}}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			node, err := readDocument(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			body, _, err := a.config.Render(cmd.Context(), node, hxres.Options{
				Mapper: nodeMapper{},
				Format: format,
				Env:    hxres.Env{hxres.EnvAccept: accept},
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	c.Flags().StringVarP(&format, "format", "f", "", "format name, bypassing negotiation")
	c.Flags().StringVarP(&accept, "accept", "a", "", "Accept header to negotiate the format with")
	return c
}

// readDocument decodes a resource document from path, or from stdin when
// path is "-".
func readDocument(stdin io.Reader, path string) (hxres.Node, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return decodeDocument(data)
}

func decodeDocument(data []byte) (hxres.Node, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing document")
	}
	if doc == nil {
		return nil, &hxres.ValidationError{Field: "document", Reason: "is empty"}
	}
	return hxres.DecodeResource(doc)
}

// nodeMapper maps values that already are resource graphs, such as decoded
// documents.
type nodeMapper struct{}

func (nodeMapper) Map(obj any, _ hxres.Context) (hxres.Node, error) {
	node, ok := obj.(hxres.Node)
	if !ok {
		return nil, errors.Newf("cli: expected a resource document, got %T", obj)
	}
	return node, nil
}

func (nodeMapper) Name(hxres.Policy) string { return "" }
