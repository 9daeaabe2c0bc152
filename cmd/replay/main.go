package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	"pulsecam/internal/trace"
)

func main() {
	outFile := flag.String("o", "", "")
	help := flag.Bool("h", false, "")
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		fail("trace file name required")
	}

	inFileName := flag.Arg(0)
	values, rate, err := trace.ReadFile(inFileName)
	if err != nil {
		fail(err.Error())
	}

	rep := trace.Replay(values, rate)
	rep.FileName = inFileName

	buf, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fail(err.Error())
	}

	outFileName := *outFile
	if outFileName == "" {
		outFileName = fromInFileName(inFileName)
	}
	if err := os.WriteFile(outFileName, buf, 0o644); err != nil {
		fail(err.Error())
	}

	fmt.Printf("%s: %d samples, %d peaks, %s BPM\n", inFileName, rep.Samples, len(rep.Peaks), rep.BPMText)
}

func fromInFileName(name string) string {
	dir, fname := path.Split(name)
	fnames := strings.Split(fname, ".")
	if len(fnames) > 1 {
		fnames = fnames[:len(fnames)-1]
	}
	fnames = append(fnames, "bpm", "json")
	return path.Join(dir, strings.Join(fnames, "."))
}

func fail(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	usage()
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, usageString)
}

const usageString = `use: replay [-o <out file>] <trace.wav> or
     replay -h
where
    -h displays this help

    <trace.wav> is a brightness trace recorded by the server (TRACE_DIR).

    -o <out file>: Optional. Default <trace>.bpm.json`
