// Command download-entities populates a local sqlite entity snapshot from
// the remote entity service, so the tokenizer server can run without
// network access to it.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/config"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/lexicon"
)

func main() {
	dbFlag := flag.String("db", "entities.db", "path to the sqlite snapshot to write")
	urlFlag := flag.String("url", config.Default().Lexicon.EntityURL, "entity lookup endpoint")
	localeFlag := flag.String("locale", "en", "language tag sent to the endpoint")
	inputFlag := flag.String("input", "", "file with one phrase per line; - reads stdin")
	flag.Parse()

	if *inputFlag == "" {
		log.Fatal("Please provide -input")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	in := os.Stdin
	if *inputFlag != "-" {
		f, err := os.Open(*inputFlag)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	store, err := lexicon.OpenSnapshot(ctx, *dbFlag)
	if err != nil {
		log.Fatalf("Failed to open snapshot: %v", err)
	}
	defer store.Close()

	source := lexicon.NewEntitySource(*urlFlag, *localeFlag)

	var phrases, stored int
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		phrase := strings.ToLower(strings.TrimSpace(sc.Text()))
		if phrase == "" || strings.HasPrefix(phrase, "#") {
			continue
		}
		phrases++

		entries, err := source.Lookup(ctx, phrase)
		if err != nil {
			log.Printf("lookup %q: %v", phrase, err)
			continue
		}
		if len(entries) == 0 {
			continue
		}
		if err := store.Put(ctx, phrase, entries); err != nil {
			log.Fatalf("Failed to store %q: %v", phrase, err)
		}
		stored++
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	fmt.Printf("Processed %d phrases, stored entries for %d\n", phrases, stored)
}
