package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/compenguy/encodingbuf/charset"
	"github.com/compenguy/encodingbuf/recoder"
)

func main() {
	var (
		from        = flag.String("from", "", "Input encoding label (WHATWG name); empty means auto-detect")
		output      = flag.String("o", "", "Output file (default stdout)")
		capacity    = flag.Int("capacity", recoder.DefaultBufSize, "Input buffer capacity in bytes")
		stripBOM    = flag.Bool("strip-bom", false, "Drop a leading U+FEFF from the output")
		detectOnly  = flag.Bool("detect", false, "Report detection candidates and exit")
		list        = flag.Bool("list", false, "List supported encodings and exit")
		interactive = flag.Bool("i", false, "Interactive preview mode with TUI")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			recoder.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if *list {
		for _, label := range charset.Labels() {
			fmt.Println(label)
		}
		return
	}

	if *interactive {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: transcode -i <file>")
			os.Exit(1)
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(flag.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *detectOnly {
		if err := reportDetection(flag.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(flag.Arg(0), *from, *output, *capacity, *stripBOM); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func run(path, from, output string, capacity int, stripBOM bool) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	var r *recoder.Reader
	if from == "" {
		r, err = recoder.NewDetected(in, capacity)
	} else {
		r, err = recoder.NewWithCapacity(in, from, capacity)
	}
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if stripBOM {
		chunk, err := r.Peek()
		if err != nil {
			return err
		}
		if bytes.HasPrefix(chunk, []byte("\uFEFF")) {
			r.Discard(len("\uFEFF"))
		}
	}

	_, err = io.Copy(out, r)
	return err
}

func reportDetection(path string) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	prefix := make([]byte, charset.SniffLen)
	n, rerr := in.Read(prefix)
	if rerr != nil && rerr != io.EOF {
		return rerr
	}
	guesses, err := charset.DetectAll(prefix[:n])
	if err != nil {
		return err
	}
	for _, g := range guesses {
		fmt.Printf("%-16s %3d%%\n", g.Label, g.Confidence)
	}
	return nil
}
