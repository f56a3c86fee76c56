package builtin

import (
	"bufio"
	"context"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ardnew/mung"
)

// env returns the value of an environment variable, or the second argument
// if it is unset: env(name [, default]).
func env(_ context.Context, args ...string) (any, error) {
	if v, ok := os.LookupEnv(arg(args, 0)); ok {
		return v, nil
	}

	return arg(args, 1), nil
}

// ---------------------------------------------------------------------------
// System information
// ---------------------------------------------------------------------------

// triple holds string identifiers for an operating system and instruction
// set architecture.
type triple struct {
	OS   string
	Arch string
}

func (t triple) String() string { return t.Arch + "-" + t.OS }

// target returns the host as "arch-os" using GNU GCC/LLVM naming
// conventions, or one part of it: target([os|arch]).
func target(_ context.Context, args ...string) (any, error) {
	return field(hostTarget(), arg(args, 0)), nil
}

// platform is target using Go naming conventions.
func platform(_ context.Context, args ...string) (any, error) {
	return field(hostPlatform(), arg(args, 0)), nil
}

func field(t triple, name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "os":
		return t.OS
	case "arch":
		return t.Arch
	default:
		return t.String()
	}
}

func hostTarget() triple {
	t := hostPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		arm, ok := os.LookupEnv("GOARM")
		if ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch strings.TrimSpace(arm) {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// hostPlatform returns the host using Go conventions.
//
// [Go conventions]:
// https://cs.opensource.google/go/go/+/master:src/cmd/dist/build.go
func hostPlatform() triple {
	var (
		o, a string
		ok   bool
	)

	if o, ok = os.LookupEnv("GOHOSTOS"); !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	if a, ok = os.LookupEnv("GOHOSTARCH"); !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return triple{OS: o, Arch: a}
}

func hostname(context.Context, ...string) (any, error) {
	return os.Hostname()
}

func username(context.Context, ...string) (any, error) {
	u, err := user.Current()
	if err != nil {
		return "", nil //nolint:nilerr
	}

	return u.Username, nil
}

func shell(context.Context, ...string) (any, error) {
	if sh, ok := os.LookupEnv("SHELL"); ok {
		return sh, nil
	}

	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "", nil //nolint:nilerr
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return "", nil //nolint:nilerr
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == u.Username {
			return e[6], nil
		}
	}

	return "", nil
}

func cwd(context.Context, ...string) (any, error) {
	return os.Getwd()
}

// ---------------------------------------------------------------------------
// Filesystem
// ---------------------------------------------------------------------------

func fileExists(_ context.Context, args ...string) (any, error) {
	_, err := os.Stat(arg(args, 0))

	return !os.IsNotExist(err), nil
}

func fileIsDir(_ context.Context, args ...string) (any, error) {
	info, err := os.Stat(arg(args, 0))

	return err == nil && info.IsDir(), nil
}

func fileIsRegular(_ context.Context, args ...string) (any, error) {
	info, err := os.Stat(arg(args, 0))

	return err == nil && info.Mode().IsRegular(), nil
}

func fileIsSymlink(_ context.Context, args ...string) (any, error) {
	info, err := os.Lstat(arg(args, 0))

	return err == nil && info.Mode()&os.ModeSymlink != 0, nil
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func abs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathAbs(_ context.Context, args ...string) (any, error) {
	return abs(arg(args, 0)), nil
}

func pathCat(_ context.Context, args ...string) (any, error) {
	return filepath.Join(args...), nil
}

// pathRel returns the second path relative to the first.
func pathRel(_ context.Context, args ...string) (any, error) {
	from, to := arg(args, 0), arg(args, 1)

	p, err := filepath.Rel(abs(from), abs(to))
	if err != nil {
		return filepath.Join(from, to), nil //nolint:nilerr
	}

	return p, nil
}

// pathPrefix prepends items to a PATH-like list, removing duplicates:
// pathprefix(list, item...).
func pathPrefix(_ context.Context, args ...string) (any, error) {
	return mung.Make(
		mung.WithSubjectItems(arg(args, 0)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(rest(args)...),
	).String(), nil
}

// pathPrefixDir is pathPrefix keeping only items that are directories.
func pathPrefixDir(_ context.Context, args ...string) (any, error) {
	return mung.Make(
		mung.WithSubjectItems(arg(args, 0)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(rest(args)...),
		mung.WithFilter(isDir),
	).String(), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func rest(args []string) []string {
	if len(args) < 2 {
		return nil
	}

	return args[1:]
}
