package dictionary

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/leonardcser/dict-mcp/internal/cache"
	"github.com/leonardcser/dict-mcp/internal/logger"
)

// DefaultFanout is the number of project dictionaries searched at once by
// GlobalSuggestions.
const DefaultFanout = 10

// Options configures a Service.
type Options struct {
	Layout Layout
	// Registry shares open dictionaries. When nil the Service creates one
	// and shuts it down on Close.
	Registry *cache.Registry
	// Fanout bounds concurrent lookups in GlobalSuggestions.
	Fanout int
	// Now stamps stored entries. Defaults to time.Now.
	Now func() time.Time
}

// Service reads and writes project dictionaries. Every store is opened
// through a registry, so no dictionary file is ever opened twice at once.
type Service struct {
	layout       Layout
	registry     *cache.Registry
	ownsRegistry bool
	fanout       int
	now          func() time.Time
}

var _ Backend = (*Service)(nil)

// NewService creates a Service.
func NewService(opts Options) *Service {
	s := &Service{
		layout:   opts.Layout,
		registry: opts.Registry,
		fanout:   opts.Fanout,
		now:      opts.Now,
	}
	if s.registry == nil {
		s.registry = cache.NewRegistry(cache.RegistryOptions{})
		s.ownsRegistry = true
	}
	if s.fanout <= 0 {
		s.fanout = DefaultFanout
	}
	return s
}

// Close shuts down the registry if the Service created it.
func (s *Service) Close() error {
	if !s.ownsRegistry {
		return nil
	}
	return s.registry.Shutdown()
}

func (s *Service) open(path string, mustExist bool) (*cache.Store[string, Translation], error) {
	return cache.OpenShared(s.registry, path, cache.Options[string, Translation]{
		Bucket:     Kind,
		Expiration: cache.Never(),
		Keys:       cache.PrefixedStringCodec{},
		Values:     TranslationCodec{},
		Now:        s.now,
		MustExist:  mustExist,
	})
}

func closeStore(store *cache.Store[string, Translation]) {
	if err := store.Close(); err != nil {
		logger.Warnf("dictionary: closing %s: %v", store.Path(), err)
	}
}

// SaveTranslation appends translated to the list stored for original.
// The read and the write happen in one transaction.
func (s *Service) SaveTranslation(ctx context.Context, document string, pair LanguagePair, original, translated string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.layout.DocumentAddress(pair, document)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "resolving project dictionary"), "document", document)
	}
	store, err := s.open(path, false)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "opening project dictionary"), "document", document)
	}
	defer closeStore(store)

	err = store.Modify(original, func(current Translation, _ bool) (Translation, error) {
		return append(current, translated), nil
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "saving translation"), "document", document)
	}
	logger.Debugf("dictionary: [%s] saved %q -> %q", pair, original, translated)
	return nil
}

// ProjectSuggestions returns the stored translations of original as Exact
// suggestions. A project without a dictionary has no suggestions.
func (s *Service) ProjectSuggestions(ctx context.Context, document string, pair LanguagePair, original string) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.layout.DocumentAddress(pair, document)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "resolving project dictionary"), "document", document)
	}
	store, err := s.open(path, true)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Suggestion{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "opening project dictionary"), "document", document)
	}
	defer closeStore(store)
	return lookup(store, original)
}

func lookup(store *cache.Store[string, Translation], original string) ([]Suggestion, error) {
	t, ok, err := store.Get(original)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Suggestion{}, nil
	}
	return exactSuggestions(original, t), nil
}

// GlobalSuggestions searches every project dictionary of pair. Projects are
// visited in name order with at most Fanout lookups in flight, results are
// merged in that order, and only the first suggestion per translated text is
// kept. Dictionaries that cannot be opened are skipped, but a pair directory
// that cannot be listed, or does not exist, is an error.
func (s *Service) GlobalSuggestions(ctx context.Context, pair LanguagePair, original string) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	projects, err := s.listProjects(pair)
	if err != nil {
		return nil, err
	}

	groups := make([][]Suggestion, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, project := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := s.layout.Address(pair, project, Kind)
			if err != nil {
				return err
			}
			store, err := s.open(path, true)
			if err != nil {
				logger.Debugf("dictionary: [%s] skipping project %s: %v", pair, project, err)
				return nil
			}
			defer closeStore(store)
			found, err := lookup(store, original)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "searching project dictionary"), "project", project)
			}
			groups[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeUnique(groups), nil
}

// Projects lists, in name order, the project keys under pair that hold a
// dictionary file. A pair that was never written has no projects.
func (s *Service) Projects(ctx context.Context, pair LanguagePair) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	projects, err := s.listProjects(pair)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	return projects, nil
}

// listProjects reads the pair directory. Failing to read it, including when
// it does not exist, is an error.
func (s *Service) listProjects(pair LanguagePair) ([]string, error) {
	dir, err := s.layout.PairDir(pair)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "reading all project dictionaries"), "dir", dir)
	}

	projects := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || validateSegment(e.Name()) != nil {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name(), Kind))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		projects = append(projects, e.Name())
	}
	return projects, nil
}
