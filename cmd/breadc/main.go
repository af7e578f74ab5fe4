package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/breadlang/bread"
)

// searchPathList accumulates repeated `-I` flags in declaration
// order, matching spec's step-3 search-path fallback.
type searchPathList []string

func (s *searchPathList) String() string { return strings.Join(*s, ",") }

func (s *searchPathList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type args struct {
	inputPath   *string
	astOnly     *bool
	debugMemory *bool
	searchPaths searchPathList
}

func readArgs() *args {
	a := &args{
		inputPath:   flag.String("input", "", "Path to the BreadLang source file"),
		astOnly:     flag.Bool("ast-only", false, "Parse and type-check only; don't run the program"),
		debugMemory: flag.Bool("debug-memory", false, "Track heap allocations and report leaks on exit"),
	}
	flag.Var(&a.searchPaths, "I", "module search path, repeatable")
	flag.Parse()
	return a
}

func main() {
	a := readArgs()
	if *a.inputPath == "" {
		log.Fatal("Input file not informed")
	}

	cfg := bread.Config{
		EntryPath:         *a.inputPath,
		DebugMemory:       *a.debugMemory,
		PrintAST:          *a.astOnly,
		ImportSearchPaths: a.searchPaths,
	}
	session := bread.NewSession(cfg)
	loader := bread.NewRelativeImportLoader(cfg.ImportSearchPaths...)

	if cfg.PrintAST {
		_, _, err := session.Compile(loader)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := session.Run(loader); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
