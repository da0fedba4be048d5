// Command tokenizer-server runs the entity normalization service: a
// JSON-lines TCP endpoint for parser pipelines plus an optional HTTP admin
// endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/annotate"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/config"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/lexicon"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/seq2seq"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/server"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

func main() {
	configFlag := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	addrFlag := flag.String("addr", "", "override the TCP listen address")
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, cleanup, err := newService(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	defer cleanup()

	if cfg.Server.AdminAddr != "" {
		admin := &http.Server{
			Addr:    cfg.Server.AdminAddr,
			Handler: server.NewAdminHandler(svc),
		}
		go func() {
			log.Printf("admin endpoint on %s", cfg.Server.AdminAddr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("admin server: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = admin.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(svc, server.Options{
		Addr:           cfg.Server.Addr,
		MaxConnections: cfg.Server.MaxConnections,
		Workers:        cfg.Server.Workers,
	})
	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// service assembles per-language engines over shared lexicon registries and
// runs the auxiliary annotators on each request before the engine.
type service struct {
	engineCfg seq2seq.Config
	languages map[string]struct{}
	fallback  string
	locations *lexicon.Registry
	entities  *lexicon.Registry
	regexps   *annotate.RegexpAnnotator

	mu      sync.Mutex
	engines map[string]*seq2seq.Tokenizer
}

func newService(ctx context.Context, cfg *config.Config) (*service, func(), error) {
	cleanup := func() {}

	locations := lexicon.NewRegistry(func(tag string) *lexicon.Lexicon {
		src := lexicon.NewLocationSource(
			cfg.Lexicon.LocationURL, cfg.Lexicon.LocationAPIKey, tag, cfg.Lexicon.LocationRatePerSec)
		return lexicon.New(src, cfg.Lexicon.CacheSize)
	})

	var entities *lexicon.Registry
	if cfg.Lexicon.SnapshotDB != "" {
		snapshot, err := lexicon.OpenSnapshot(ctx, cfg.Lexicon.SnapshotDB)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { snapshot.Close() }
		entities = lexicon.NewRegistry(func(string) *lexicon.Lexicon {
			return lexicon.New(snapshot, cfg.Lexicon.CacheSize)
		})
	} else {
		entities = lexicon.NewRegistry(func(tag string) *lexicon.Lexicon {
			return lexicon.New(lexicon.NewEntitySource(cfg.Lexicon.EntityURL, tag), cfg.Lexicon.CacheSize)
		})
	}

	presentRef := value.PresentRefReject
	if cfg.Engine.PresentRefNow {
		presentRef = value.PresentRefNow
	}
	engineCfg := seq2seq.Config{
		ApplyHeuristics:     cfg.Engine.ApplyHeuristics,
		LiteralTwoHeuristic: cfg.Engine.LiteralTwoHeuristic,
		PresentRef:          presentRef,
		MissingTokenPenalty: cfg.Engine.MissingTokenPenalty,
		DomainContextBonus:  cfg.Engine.DomainContextBonus,
		LocationDenylist:    cfg.Engine.LocationDenylist,
		EntityDenylist:      cfg.Engine.EntityDenylist,
		EntityOverrides:     overridesFromConfig(cfg.Engine.EntityOverrides),
	}

	var regexps *annotate.RegexpAnnotator
	if cfg.Engine.RegexpPatternFile != "" {
		ra, err := annotate.LoadRegexpAnnotator(cfg.Engine.RegexpPatternFile)
		if err != nil {
			return nil, cleanup, err
		}
		regexps = ra
	}

	languages := make(map[string]struct{}, len(cfg.Languages))
	for _, tag := range cfg.Languages {
		languages[tag] = struct{}{}
	}

	return &service{
		engineCfg: engineCfg,
		languages: languages,
		fallback:  cfg.Languages[0],
		locations: locations,
		entities:  entities,
		regexps:   regexps,
		engines:   make(map[string]*seq2seq.Tokenizer),
	}, cleanup, nil
}

// overridesFromConfig converts the YAML override table to lexicon entries.
// nil when the table is empty, which selects the engine's built-in table.
func overridesFromConfig(table map[string]config.EntityOverride) map[string]lexicon.Entry {
	if len(table) == 0 {
		return nil
	}
	overrides := make(map[string]lexicon.Entry, len(table))
	for mention, o := range table {
		overrides[strings.ToLower(mention)] = lexicon.Entry{
			Tag: "GENERIC_ENTITY_" + o.Type,
			Value: value.Entity{
				Type:    "Entity(" + o.Type + ")",
				ID:      o.ID,
				Display: o.Display,
			},
			Canonical: o.Canonical,
		}
	}
	return overrides
}

func (s *service) engineFor(tag string) *seq2seq.Tokenizer {
	if _, ok := s.languages[tag]; !ok {
		tag = s.fallback
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if eng, ok := s.engines[tag]; ok {
		return eng
	}
	eng := seq2seq.New(s.engineCfg, s.locations.ForLanguage(tag), s.entities.ForLanguage(tag))
	s.engines[tag] = eng
	return eng
}

func (s *service) Tokenize(ctx context.Context, languageTag string, ex *seq2seq.Example) (*seq2seq.Result, error) {
	// The upstream pipeline misses these categories; annotate before the
	// engine merges spans.
	if ex.Info != nil {
		annotate.PhoneNumbers(ex.Info)
		annotate.URLs(ex.Info)
		if s.regexps != nil {
			s.regexps.Annotate(ex.Info)
		}
	}
	return s.engineFor(languageTag).Process(ctx, ex)
}

func (s *service) ClearCaches() {
	s.locations.ClearAll()
	s.entities.ClearAll()
}
