// Package internal holds the pieces of the tregex command that sit around
// the search engine.
//
// Key components:
//
// FormatMatches and FormatCounts: colored rendering of search.Match values
// for the terminal.
//
// Cache: an on-disk gob store of match results keyed by file and pattern set.
// An entry is invalidated when the file's content hash or modification time
// changes, or when it is older than the cache's max age. CachedEngine puts a
// Cache in front of any search.Engine.
//
// Watcher: an fsnotify loop that re-runs an engine on treebank files as they
// are written, coalescing bursts of writes.
//
// Usage:
//
//	cache, err := internal.NewCache(".tregex-cache")
//	if err != nil {
//	    // handle error
//	}
//	engine := &internal.CachedEngine{Engine: searcher, Cache: cache, Key: "NP < DT"}
//	matches, err := search.ProcessPath(ctx, logger, engine, "treebank/", search.Options{})
//	fmt.Print(internal.FormatMatches(matches, internal.PrintOptions{Captures: true}))
package internal
