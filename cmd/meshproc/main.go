package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

var usages = map[string]string{
	"info":      "input",
	"convert":   "[-scale S] [-rotate X,Y,Z] [-translate X,Y,Z] [-triangulate] input output",
	"simplify":  "[-target N | -ratio R] [-aspect A] [-edge L] [-valence V] [-normal DEG] [-hausdorff E] [-features DEG] [-boundary] input [output]",
	"fillholes": "[-maxsize N] [-smallest] [-norefine] input [output]",
	"fair":      "[-k K] [-sphere X,Y,Z,R] input [output]",
	"preview":   "[-size N] [-wire] [-dir X,Y,Z] input output.png|output.bmp",
	"generate":  "[-shape icosphere|icosahedron|grid] [-level N] [-size N] output",
	"job":       "job.yaml...",
}

var commands = map[string]func(args []string) error{
	"info":      runInfo,
	"convert":   runConvert,
	"simplify":  runSimplify,
	"fillholes": runFillHoles,
	"fair":      runFair,
	"preview":   runPreview,
	"generate":  runGenerate,
	"job":       runJob,
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-v] [-q] command [options] args...\n", os.Args[0])
	var names []string
	for name := range usages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, usages[name])
	}
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	verbose := flag.Bool("v", false, "verbose log")
	quiet := flag.Bool("q", false, "suppress log")
	flag.Parse()

	if *verbose {
		log.SetFlags(log.Lshortfile | log.LstdFlags)
	}
	if *quiet {
		log.SetOutput(io.Discard)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	run, ok := commands[strings.ToLower(flag.Arg(0))]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Args()[1:]); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
