package cli

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pthm/hxres"
	hxresfiber "github.com/pthm/hxres/adapters/fiber"
)

func serveCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve <fixtures>",
		Short: "Serve resource documents over HTTP",
		Long: `Serve loads a YAML file mapping request paths to resource documents and
serves each document at its path, negotiating the format from the Accept
header.

	/posts/1:
	  type: post
	  attributes: {id: 1, title: Hello}
	  links:
	    - {rel: self, uri: /posts/1}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := LoadStore(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, store)
		},
	}
	c.Flags().StringP("listen", "l", ":8080", "address to listen on")
	return c
}

func (a *app) serve(ctx context.Context, store *Store) error {
	srv := newServer(a.config, store)
	errC := make(chan error, 1)
	go func() {
		a.logger.Info("serving",
			zap.String("listen", a.settings.Listen),
			zap.Strings("paths", store.Paths()))
		errC <- srv.Listen(a.settings.Listen)
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	return errors.CombineErrors(srv.Shutdown(), <-errC)
}

func newServer(cfg *hxres.Config, store *Store) *fiber.App {
	srv := fiber.New(fiber.Config{
		AppName:               "hxres",
		DisableStartupMessage: true,
	})
	srv.Use(hxresfiber.RequestID(cfg.Logger()))
	srv.Get("/*", hxresfiber.Handler(cfg, func(c *fiber.Ctx) (any, error) {
		return store.Get(c.Path())
	}, hxres.Options{Mapper: nodeMapper{}}))
	return srv
}

// Store holds the resource documents served by path. It is read-only once
// loaded.
type Store struct {
	nodes map[string]hxres.Node
}

// LoadStore reads a fixture file mapping paths to resource documents.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ParseStore(data)
}

// ParseStore decodes fixtures. Paths are normalized to a leading slash and
// no trailing slash.
func ParseStore(data []byte) (*Store, error) {
	var docs map[string]map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, errors.Wrap(err, "parsing fixtures")
	}
	s := &Store{nodes: make(map[string]hxres.Node, len(docs))}
	for path, doc := range docs {
		node, err := hxres.DecodeResource(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "fixture %s", path)
		}
		s.nodes[normalizePath(path)] = node
	}
	return s, nil
}

// Get returns the document served at path.
func (s *Store) Get(path string) (hxres.Node, error) {
	node, ok := s.nodes[normalizePath(path)]
	if !ok {
		return nil, errors.Wrapf(hxres.ErrNotFound, "%s", path)
	}
	return node, nil
}

// Paths returns the served paths in sorted order.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.nodes))
	for p := range s.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func normalizePath(p string) string {
	return "/" + strings.Trim(p, "/")
}
