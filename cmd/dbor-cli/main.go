// Command dbor-cli is a small diagnostic tool around the dbor codec:
// it can encode a value from a textual notation, decode or pretty-dump
// a .dbor file, watch a directory for new/changed .dbor files, and
// print version/schema-compatibility information.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/dbor-go/dbor"
	"github.com/dbor-go/dbor/internal/dborcli"
	"github.com/dbor-go/dbor/internal/dborschema"
	"github.com/dbor-go/dbor/internal/dborwatch"
)

const moduleVersion = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "dump":
		err = runDump(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "version":
		err = runVersion(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("dbor-cli: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: dbor-cli <encode|decode|dump|watch|version> [flags]")
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	out := fs.String("out", "", "write encoded bytes to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("encode requires exactly one notation argument")
	}
	v, err := dborcli.ParseValue(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("parsing notation: %w", err)
	}

	var buf bytes.Buffer
	enc := dbor.NewEncoder(dbor.NewWriterTransport(&buf))
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	if *out == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(*out, buf.Bytes(), 0o644)
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("decode requires exactly one file argument")
	}
	v, err := decodeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	dborcli.Print(os.Stdout, v)
	return nil
}

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	checkSchema := fs.String("check-schema", "", "semver constraint to check named variants seen in the file against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dump requires exactly one file argument")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	dec := dbor.NewDecoder(dbor.NewReaderTransport(bytes.NewReader(data)))
	if *checkSchema == "" {
		return dborcli.DumpDecode(dec, os.Stdout)
	}
	reg := dborschema.NewRegistry()
	registerBuiltinVariants(reg)
	return dborcli.DumpDecodeCheckSchema(dec, os.Stdout, reg, *checkSchema)
}

func decodeFile(path string) (dbor.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dbor.Value{}, err
	}
	dec := dbor.NewDecoder(dbor.NewReaderTransport(bytes.NewReader(data)))
	return dbor.DecodeValue(dec)
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("watch requires exactly one directory argument")
	}
	w, err := dborwatch.New(fs.Arg(0))
	if err != nil {
		return err
	}
	defer w.Close()

	log.Printf("watching %s for .dbor files (Ctrl-C to stop)", fs.Arg(0))
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Err != nil {
				log.Printf("%s: %v", ev.Path, ev.Err)
				continue
			}
			fmt.Printf("=== %s ===\n", ev.Path)
			dborcli.Print(os.Stdout, ev.Value)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func runVersion(args []string) error {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "print version info as JSON")
	check := fs.String("check", "", "semver constraint to check every registered named variant against")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := dborschema.NewRegistry()
	registerBuiltinVariants(reg)

	info := struct {
		Version   string   `json:"version"`
		GoVersion string   `json:"go_version"`
		Platform  string   `json:"platform"`
		Variants  []string `json:"known_variants"`
	}{
		Version:   moduleVersion,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Variants:  reg.Names(),
	}

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("dbor-cli %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
		fmt.Printf("known named variants: %v\n", info.Variants)
	}

	if *check != "" {
		ok, incompatible, err := reg.CompatibleWith(*check)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("compatible with constraint %q\n", *check)
		} else {
			fmt.Printf("NOT compatible with constraint %q: %v\n", *check, incompatible)
		}
	}
	return nil
}

// registerBuiltinVariants seeds the schema registry with the named
// variants this build ships generated adapters for. The base module
// defines none of its own — it is a generic codec, not a fixed schema
// — so this is intentionally empty here; a project that links
// cmd/dbor-gen-generated adapters for its own named variants should
// fork this function (or build its own cmd/dbor-cli-alike) and
// register each one via reg.Register before calling runVersion/runDump.
// Known gap: that registration point doesn't exist as a flag or file
// input yet, so `version --check` and `dump --check-schema` are only
// ever checking an empty registry in this build.
func registerBuiltinVariants(reg *dborschema.Registry) {}
