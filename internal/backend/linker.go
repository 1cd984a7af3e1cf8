package backend

import (
	"fmt"
	"os"
	"os/exec"
)

// Toolchain names the external programs the backend driver shells out
// to for the assembly, object, and link sinks of section 4.5/6. These
// are genuinely external: the specification treats the low-level
// compiler and linker as a black box this package only invokes.
//
// Grounded on the subprocess-invocation idiom of
// strager-Zong/cli.go (executeWasmFile): build an *exec.Cmd, wire its
// stdout/stderr to the parent's, and propagate Run's error/exit code.
type Toolchain struct {
	LLC    string // e.g. "llc"
	Linker string // e.g. "cc" or "ld"
}

func DefaultToolchain() Toolchain {
	return Toolchain{LLC: "llc", Linker: "cc"}
}

func (tc Toolchain) runCapturing(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// llcOptFlag maps the CLI's -O switch to llc's optimization level. The
// specification's source-level optimization pipeline is a non-goal
// (section 1); -O only reaches the external low-level compiler.
func llcOptFlag(optimize bool) string {
	if optimize {
		return "-O2"
	}
	return "-O0"
}

// EmitAssembly lowers the textual IR at immPath to target assembly at
// asmPath via llc.
func (tc Toolchain) EmitAssembly(immPath, asmPath string, optimize bool) error {
	if err := tc.runCapturing(tc.LLC, llcOptFlag(optimize), "-filetype=asm", "-o", asmPath, immPath); err != nil {
		return fmt.Errorf("emit assembly: %w", err)
	}
	return nil
}

// EmitObject lowers the textual IR at immPath to object bytes at
// objPath via llc.
func (tc Toolchain) EmitObject(immPath, objPath string, optimize bool) error {
	if err := tc.runCapturing(tc.LLC, llcOptFlag(optimize), "-filetype=obj", "-o", objPath, immPath); err != nil {
		return fmt.Errorf("emit object: %w", err)
	}
	return nil
}

// Link invokes the external linker exactly as section 6 specifies:
// -no-pie -o <exe> <obj> -L <runtimeDir> -l <runtimeName>. Its exit
// code becomes the compiler's own exit code, per section 5's resource
// discipline ("the linker's code").
func (tc Toolchain) Link(objPath, exePath, runtimeDir, runtimeName string) (int, error) {
	cmd := exec.Command(tc.Linker, "-no-pie", "-o", exePath, objPath, "-L", runtimeDir, "-l"+runtimeName)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("link: %w", err)
}
