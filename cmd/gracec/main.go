// Command gracec is the Grace compiler's command-line entry point. It
// hand-parses os.Args rather than reach for the flag package: the
// precedence between -f/-i and the "unknown option in a non-final
// position is an error" policy has no clean expression as
// flag.FlagSet options.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/smasonuk/gracec/internal/backend"
	"github.com/smasonuk/gracec/internal/driver"
)

const usage = `usage: gracec [options] filename

options:
  -O        enable optimizations
  -f        read source from stdin, emit assembly to stdout (no link step)
  -i        read source from stdin, emit intermediate listing to stdout (no link step)
  --help    print this message and exit 0
`

type options struct {
	optimize     bool
	fromStdinAsm bool
	fromStdinImm bool
	filename     string
}

func parseArgs(args []string) (*options, error) {
	var o options
	for i, a := range args {
		last := i == len(args)-1
		switch a {
		case "--help":
			return nil, errHelp
		case "-O":
			o.optimize = true
		case "-f":
			o.fromStdinAsm = true
		case "-i":
			o.fromStdinImm = true
		default:
			// An unrecognized dash-prefixed token is a usage error unless
			// it occupies the filename slot (the final argument).
			if strings.HasPrefix(a, "-") && !last {
				return nil, fmt.Errorf("unknown option %q", a)
			}
			if !last {
				return nil, fmt.Errorf("unexpected argument %q before the filename", a)
			}
			o.filename = a
		}
	}
	// -f takes precedence over -i if both are given.
	if o.fromStdinAsm {
		o.fromStdinImm = false
	}
	if o.filename == "" && !o.fromStdinAsm && !o.fromStdinImm {
		return nil, errUsage
	}
	return &o, nil
}

var (
	errHelp  = fmt.Errorf("help requested")
	errUsage = fmt.Errorf("no filename and no -f/-i given")
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseArgs(args)
	if err == errHelp {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return 1
	}

	if o.fromStdinAsm || o.fromStdinImm {
		return runStdinMode(o, stdin, stdout, stderr)
	}
	return runFileMode(o, stderr)
}

func runStdinMode(o *options, stdin io.Reader, stdout, stderr io.Writer) int {
	src, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	res, cerr := driver.New().Compile("<stdin>", string(src))
	if cerr != nil {
		fmt.Fprintln(stderr, cerr)
		return 1
	}

	if o.fromStdinImm {
		if err := res.Backend.WriteIR(stdout); err != nil {
			fmt.Fprintln(stderr, "write error:", err)
			return 1
		}
		return 0
	}

	immPath, cleanup, err := writeTempIR(res.Backend)
	if err != nil {
		fmt.Fprintln(stderr, "write error:", err)
		return 1
	}
	defer cleanup()

	tc := backend.DefaultToolchain()
	asmPath := immPath + ".asm"
	defer os.Remove(asmPath)
	if err := tc.EmitAssembly(immPath, asmPath, o.optimize); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	asm, err := os.ReadFile(asmPath)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	stdout.Write(asm)
	return 0
}

func runFileMode(o *options, stderr io.Writer) int {
	fullPath, err := filepath.Abs(o.filename)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	sourceDir := filepath.Dir(fullPath)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}

	res, cerr := driver.New().Compile(o.filename, string(data))
	if cerr != nil {
		fmt.Fprintln(stderr, cerr)
		return 1
	}

	stem := strings.TrimSuffix(fullPath, filepath.Ext(fullPath))
	immPath := stem + ".imm"
	asmPath := stem + ".asm"
	objPath := stem + ".o"
	exePath := stem + ".exe"

	immFile, err := os.Create(immPath)
	if err != nil {
		fmt.Fprintln(stderr, "write error:", err)
		return 1
	}
	writeErr := res.Backend.WriteIR(immFile)
	immFile.Close()
	if writeErr != nil {
		fmt.Fprintln(stderr, "write error:", writeErr)
		return 1
	}

	tc := backend.DefaultToolchain()
	if err := tc.EmitAssembly(immPath, asmPath, o.optimize); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := tc.EmitObject(immPath, objPath, o.optimize); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	runtimeDir := os.Getenv("GRACE_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "runtime"
		if sibling := filepath.Join(sourceDir, "runtime"); dirExists(sibling) {
			runtimeDir = sibling
		}
	}
	code, err := tc.Link(objPath, exePath, runtimeDir, "gracert")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return code
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeTempIR(bs *backend.Session) (string, func(), error) {
	f, err := os.CreateTemp("", "gracec-*.imm")
	if err != nil {
		return "", nil, err
	}
	writeErr := bs.WriteIR(f)
	closeErr := f.Close()
	cleanup := func() { os.Remove(f.Name()) }
	if writeErr != nil {
		cleanup()
		return "", nil, writeErr
	}
	if closeErr != nil {
		cleanup()
		return "", nil, closeErr
	}
	return f.Name(), cleanup, nil
}
