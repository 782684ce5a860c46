// Package main provides the tensorbuf CLI for inspecting tensor buffer layouts.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/born-ml/tensorbuf/tensor"
)

const version = "v0.1.0-dev"

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix("tensorbuf: ")

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "tensorbuf %s\n", version)
		return nil
	case "encode":
		return runEncode(args[1:], stdout, stderr)
	case "string":
		return runString(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return errUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "tensorbuf - tensor buffer engine")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                              Show version")
	fmt.Fprintln(w, "  encode -dtype T [flags] '<json>'     Encode a JSON array and print its buffer")
	fmt.Fprintln(w, "  string [flags] <text>...             Encode strings and print the layout")
}

// enableDebug routes engine allocation and release events to w.
func enableDebug(w io.Writer) {
	tensor.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func runEncode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dtypeName := fs.String("dtype", "float32", "element dtype (e.g. int32, float64, bool, string, float16)")
	pad := fs.Bool("pad", false, "zero-fill ragged rows instead of rejecting them")
	jagged := fs.Bool("jagged", false, "decode rank >= 2 tensors as nested slices")
	copyBuf := fs.Bool("copy", false, "always copy into an engine-owned buffer")
	verbose := fs.Bool("v", false, "log allocation and release events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "encode: expected exactly one JSON argument")
		return errUsage
	}
	if *verbose {
		enableDebug(stderr)
		defer tensor.SetLogger(nil)
	}

	dtype, err := tensor.ParseDataType(*dtypeName)
	if err != nil {
		return err
	}

	opts := []tensor.Option{tensor.WithPadding(*pad)}
	if *copyBuf {
		opts = append(opts, tensor.WithCopy())
	}

	t, err := encodeJSON(fs.Arg(0), dtype, opts...)
	if err != nil {
		return err
	}
	defer t.Release()

	var decodeOpts []tensor.Option
	if *jagged {
		decodeOpts = append(decodeOpts, tensor.WithJagged())
	}
	return describe(stdout, t, decodeOpts...)
}

// encodeJSON converts a JSON document into a tensor of dtype.
func encodeJSON(doc string, dtype tensor.DataType, opts ...tensor.Option) (*tensor.Tensor, error) {
	if dtype == tensor.Half {
		v, err := parseJSON(doc, tensor.Float32)
		if err != nil {
			return nil, err
		}
		wide, err := tensor.FromValue(v, append(opts, tensor.WithCopy())...)
		if err != nil {
			return nil, err
		}
		defer wide.Release()

		values, err := tensor.Values[float32](wide)
		if err != nil {
			return nil, err
		}
		shape, err := wide.Shape()
		if err != nil {
			return nil, err
		}
		return tensor.NewHalf(values, shape)
	}

	v, err := parseJSON(doc, dtype)
	if err != nil {
		return nil, err
	}
	return tensor.FromValue(v, opts...)
}

// describe prints a tensor's metadata, buffer and decoded value.
func describe(w io.Writer, t *tensor.Tensor, opts ...tensor.Option) error {
	dtype, err := t.DType()
	if err != nil {
		return err
	}
	shape, err := t.Shape()
	if err != nil {
		return err
	}
	data, err := t.Bytes()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "dtype:  %s (%s)\n", dtype, dtype.Class())
	fmt.Fprintf(w, "shape:  %v\n", shape)
	fmt.Fprintf(w, "bytes:  %d (%s)\n", len(data), t.Ownership())

	switch dtype {
	case tensor.String:
		fmt.Fprintf(w, "layout:\n%s", hex.Dump(data))
		values, err := tensor.Strings(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "value:  %q\n", values)
		return nil
	case tensor.Half:
		fmt.Fprintf(w, "hex:    %s\n", hexElements(data, dtype.Size()))
		values, err := tensor.HalfValues(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "value:  %v\n", values)
		return nil
	}

	fmt.Fprintf(w, "hex:    %s\n", hexElements(data, dtype.Size()))
	v, err := tensor.Value(t, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "value:  %v\n", v)
	return nil
}

// hexElements renders data as space-separated groups of size bytes.
func hexElements(data []byte, size int) string {
	if size <= 0 || len(data) == 0 {
		return hex.EncodeToString(data)
	}
	groups := make([]string, 0, len(data)/size)
	for i := 0; i+size <= len(data); i += size {
		groups = append(groups, hex.EncodeToString(data[i:i+size]))
	}
	return strings.Join(groups, " ")
}

func runString(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("string", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "log allocation and release events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "string: expected at least one argument")
		return errUsage
	}
	if *verbose {
		enableDebug(stderr)
		defer tensor.SetLogger(nil)
	}

	var (
		t   *tensor.Tensor
		err error
	)
	if fs.NArg() == 1 {
		t, err = tensor.FromString(fs.Arg(0))
	} else {
		t, err = tensor.FromStrings(fs.Args(), tensor.Shape{fs.NArg()})
	}
	if err != nil {
		return err
	}
	defer t.Release()

	data, err := t.Bytes()
	if err != nil {
		return err
	}
	for i := 0; i < fs.NArg(); i++ {
		off, err := tensor.StringOffset(data, i)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "offset[%d]: %d\n", i, off)
	}
	return describe(stdout, t)
}
