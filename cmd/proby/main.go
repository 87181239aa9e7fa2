// proby is an interactive CLI for exploring probemap tables.
//
// Usage:
//
//	proby [options] [dump-file]
//
// When a dump file is given it is loaded into the map on startup.
//
// Options:
//
//	-c, --config        Path to a config file (JSONC)
//	    --print-config  Print the effective config and exit
//
// Commands (in REPL):
//
//	insert <key> <value>   Insert an entry (no-op if the key is live)
//	get <key>              Look up a key
//	at <key>               Look up a key, reporting an error on a miss
//	ref <key> [value]      Insert-or-read through a value pointer
//	del <key>              Erase an entry
//	find <key>             Position a cursor on a key
//	ls [limit]             List entries in table order
//	len                    Count live entries
//	stats                  Show table statistics
//	clear                  Discard every entry
//	clone                  Swap the session to an independent copy
//	bulk [count]           Insert N random (UUID-keyed) entries
//	seq <count> [start]    Insert N sequential entries
//	bench <count>          Benchmark insert+get performance
//	dump [file]            Write the entries to a JSON file
//	load [file]            Replace the map with a JSON file's entries
//	help                   Show this help
//	exit / quit / q        Exit
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/probemap"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := flag.NewFlagSet("proby", flag.ExitOnError)

	configPath := flags.StringP("config", "c", "", "path to a config file")
	printConfig := flags.Bool("print-config", false, "print the effective config and exit")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: proby [options] [dump-file]\n\n")
		fmt.Fprintf(os.Stderr, "Interactive shell over an in-memory probemap table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, _, err := LoadConfig(workDir, *configPath, os.Environ())
	if err != nil {
		return err
	}

	if *printConfig {
		formatted, fmtErr := FormatConfig(cfg)
		if fmtErr != nil {
			return fmtErr
		}

		fmt.Println(formatted)

		return nil
	}

	repl := &REPL{
		m:   probemap.New[string, string](),
		cfg: cfg,
	}

	if flags.NArg() >= 1 {
		dumpPath := flags.Arg(0)

		loaded, loadErr := loadDump(dumpPath)
		if loadErr != nil {
			return loadErr
		}

		repl.m = loaded
		fmt.Printf("Loaded %d entries from %s\n", repl.m.Len(), dumpPath)
	}

	return repl.Run()
}

// loadDump reads a JSON dump file into a fresh map.
func loadDump(path string) (*probemap.Map[string, string], error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errDumpFileMissing, path)
		}

		return nil, fmt.Errorf("reading dump: %w", err)
	}

	var entries map[string]string

	unmarshalErr := json.Unmarshal(data, &entries)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w %s: %w", errDumpFileInvalid, path, unmarshalErr)
	}

	m := probemap.New[string, string]()
	for k, v := range entries {
		m.Insert(k, v)
	}

	return m, nil
}

// REPL is the interactive command loop.
type REPL struct {
	m     *probemap.Map[string, string]
	cfg   Config
	liner *liner.State
}

// historyFile returns the path to the history file.
func (r *REPL) historyFile() string {
	if r.cfg.HistoryFile != "" {
		return r.cfg.HistoryFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".proby_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	// Load history
	if f, err := os.Open(r.historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("proby - probemap CLI (len=%d, cap=%d)\n", r.m.Len(), r.m.Cap())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt(r.cfg.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "insert", "set", "put":
			r.cmdInsert(args)

		case "get":
			r.cmdGet(args)

		case "at":
			r.cmdAt(args)

		case "ref":
			r.cmdRef(args)

		case "del", "delete", "erase":
			r.cmdDelete(args)

		case "find":
			r.cmdFind(args)

		case "ls", "list", "scan":
			r.cmdLs(args)

		case "len", "count":
			r.cmdLen()

		case "cap":
			r.cmdCap()

		case "stats", "info":
			r.cmdStats()

		case "clear":
			r.cmdClear()

		case "cls":
			fmt.Print("\033[H\033[2J")

		case "clone":
			r.cmdClone()

		case "bulk":
			r.cmdBulk(args)

		case "seq":
			r.cmdSeq(args)

		case "bench":
			r.cmdBench(args)

		case "dump", "save":
			r.cmdDump(args)

		case "load":
			r.cmdLoad(args)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

// saveHistory persists command history to disk.
func (r *REPL) saveHistory() {
	if path := r.historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// completer provides tab completion for commands.
func (r *REPL) completer(line string) []string {
	commands := []string{
		"insert", "set", "put", "get", "at", "ref",
		"del", "delete", "erase", "find",
		"ls", "list", "scan", "len", "count", "cap",
		"stats", "info", "clear", "cls", "clone",
		"bulk", "seq", "bench", "dump", "save", "load",
		"help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  insert <key> <value>   Insert an entry (no-op if the key is live)")
	fmt.Println("  get <key>              Look up a key")
	fmt.Println("  at <key>               Look up a key, reporting an error on a miss")
	fmt.Println("  ref <key> [value]      Insert-or-read through a value pointer")
	fmt.Println("  del <key>              Erase an entry")
	fmt.Println("  find <key>             Position a cursor on a key")
	fmt.Println("  ls [limit]             List entries in table order")
	fmt.Println("  len                    Count live entries")
	fmt.Println("  cap                    Show the slot-table capacity")
	fmt.Println("  stats                  Show table statistics")
	fmt.Println("  clear                  Discard every entry")
	fmt.Println("  clone                  Swap the session to an independent copy")
	fmt.Println("  bulk [count]           Insert N random (UUID-keyed) entries")
	fmt.Println("  seq <count> [start]    Insert N sequential entries")
	fmt.Println("  bench <count>          Benchmark insert+get performance")
	fmt.Println("  dump [file]            Write the entries to a JSON file")
	fmt.Println("  load [file]            Replace the map with a JSON file's entries")
	fmt.Println("  help                   Show this help")
	fmt.Println("  exit / quit / q        Exit")
	fmt.Println()
	fmt.Println("Keys are single words; values may contain spaces.")
}

func (r *REPL) cmdInsert(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: insert <key> <value>")

		return
	}

	key := args[0]
	value := strings.Join(args[1:], " ")

	if r.m.Insert(key, value) {
		fmt.Printf("OK: inserted %q\n", key)
	} else {
		fmt.Printf("OK: %q already present, value unchanged (use 'ref %s <value>' to overwrite)\n", key, key)
	}
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <key>")

		return
	}

	value, found := r.m.Get(args[0])
	if !found {
		fmt.Println("(not found)")

		return
	}

	fmt.Printf("%q\n", value)
}

func (r *REPL) cmdAt(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: at <key>")

		return
	}

	value, err := r.m.At(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Printf("%q\n", value)
}

func (r *REPL) cmdRef(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: ref <key> [value]")

		return
	}

	ptr := r.m.Ref(args[0])

	if len(args) >= 2 {
		*ptr = strings.Join(args[1:], " ")
		fmt.Printf("OK: wrote %q through the reference\n", *ptr)

		return
	}

	fmt.Printf("%q\n", *ptr)
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: del <key>")

		return
	}

	if r.m.Erase(args[0]) {
		fmt.Printf("OK: erased %q\n", args[0])
	} else {
		fmt.Printf("OK: %q did not exist\n", args[0])
	}
}

func (r *REPL) cmdFind(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: find <key>")

		return
	}

	c := r.m.Find(args[0])
	if !c.Valid() {
		fmt.Println("(end)")

		return
	}

	k, v := c.Pair()
	fmt.Printf("%s = %q\n", k, v)
}

func (r *REPL) cmdLs(args []string) {
	limit := 20

	if len(args) >= 1 {
		var err error

		limit, err = strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error parsing limit: %v\n", err)

			return
		}
	}

	if r.m.Empty() {
		fmt.Println("(empty)")

		return
	}

	shown := 0

	for k, v := range r.m.All() {
		if shown == limit {
			fmt.Printf("... (showing first %d of %d, use 'ls <limit>' for more)\n", limit, r.m.Len())

			return
		}

		shown++
		fmt.Printf("%3d. %s = %q\n", shown, k, v)
	}
}

func (r *REPL) cmdLen() {
	fmt.Printf("Live entries: %d\n", r.m.Len())
}

func (r *REPL) cmdCap() {
	fmt.Printf("Capacity: %d slots\n", r.m.Cap())
}

func (r *REPL) cmdStats() {
	length := r.m.Len()
	capacity := r.m.Cap()

	fmt.Printf("Table stats:\n")
	fmt.Printf("  Live entries:  %d\n", length)
	fmt.Printf("  Capacity:      %d slots\n", capacity)

	if capacity > 0 {
		fmt.Printf("  Load factor:   %.3f\n", float64(length)/float64(capacity))
	}

	fmt.Printf("  Empty:         %v\n", r.m.Empty())
}

func (r *REPL) cmdClear() {
	r.m.Clear()
	fmt.Printf("OK: cleared (capacity back to %d slots)\n", r.m.Cap())
}

func (r *REPL) cmdClone() {
	r.m = r.m.Clone()
	fmt.Printf("OK: session now uses an independent copy (%d entries, %d slots)\n", r.m.Len(), r.m.Cap())
}

func (r *REPL) cmdBulk(args []string) {
	count := r.cfg.BulkCount

	if len(args) >= 1 {
		var err error

		count, err = strconv.Atoi(args[0])
		if err != nil || count < 1 {
			fmt.Println("Error: count must be a positive integer")

			return
		}
	}

	start := time.Now()
	inserted := 0

	for range count {
		if r.m.Insert(uuid.NewString(), uuid.NewString()) {
			inserted++
		}
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("OK: inserted %d entries in %v (%.0f ops/sec), capacity now %d\n",
		inserted, elapsed.Round(time.Millisecond), rate, r.m.Cap())
}

func (r *REPL) cmdSeq(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: seq <count> [start]")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")

		return
	}

	startNum := 1
	if len(args) >= 2 {
		startNum, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error parsing start: %v\n", err)

			return
		}
	}

	start := time.Now()
	inserted := 0

	for i := range count {
		key := fmt.Sprintf("key-%06d", startNum+i)
		if r.m.Insert(key, strconv.Itoa(startNum+i)) {
			inserted++
		}
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("OK: inserted %d sequential entries in %v (%.0f ops/sec)\n",
		inserted, elapsed.Round(time.Millisecond), rate)
}

func (r *REPL) cmdBench(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bench <count>")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")

		return
	}

	// Generate random keys upfront so key creation stays out of the timings.
	keys := make([]string, count)
	for i := range keys {
		keys[i] = uuid.NewString()
	}

	fmt.Printf("Benchmarking %d operations...\n", count)

	m := probemap.New[string, string]()

	insertStart := time.Now()

	for i, key := range keys {
		m.Insert(key, strconv.Itoa(i))
	}

	insertElapsed := time.Since(insertStart)

	getStart := time.Now()
	hits := 0

	for _, key := range keys {
		if _, found := m.Get(key); found {
			hits++
		}
	}

	getElapsed := time.Since(getStart)

	fmt.Printf("\nResults:\n")
	fmt.Printf("  Inserts: %d ops in %v (%.0f ops/sec)\n",
		count, insertElapsed.Round(time.Millisecond), float64(count)/insertElapsed.Seconds())
	fmt.Printf("  Gets:    %d ops in %v (%.0f ops/sec), %d hits\n",
		count, getElapsed.Round(time.Millisecond), float64(count)/getElapsed.Seconds(), hits)
	fmt.Printf("  Final:   %d entries in %d slots\n", m.Len(), m.Cap())
}

func (r *REPL) cmdDump(args []string) {
	path := r.cfg.DumpFile
	if len(args) >= 1 {
		path = args[0]
	}

	entries := make(map[string]string, r.m.Len())
	for k, v := range r.m.All() {
		entries[k] = v
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding entries: %v\n", err)

		return
	}

	data = append(data, '\n')

	writeErr := atomic.WriteFile(path, bytes.NewReader(data))
	if writeErr != nil {
		fmt.Printf("Error writing %s: %v\n", path, writeErr)

		return
	}

	fmt.Printf("OK: wrote %d entries to %s\n", len(entries), path)
}

func (r *REPL) cmdLoad(args []string) {
	path := r.cfg.DumpFile
	if len(args) >= 1 {
		path = args[0]
	}

	loaded, err := loadDump(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	r.m = loaded
	fmt.Printf("OK: loaded %d entries from %s\n", r.m.Len(), path)
}
