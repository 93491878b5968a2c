// Package remote fetches dictionaries published in git repositories.
//
// A remote dictionary is named like a Go module path, optionally followed
// by a subpath inside the repository and a git ref:
//
//	github.com/user/pys-jawa
//	github.com/user/dicts/jawa@v1.0.0
//	github.com/user/dicts/jawa.yaml@main
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"go.trai.ch/zerr"
)

const dictExt = ".yaml"

var (
	// ErrInvalidPath is returned for paths that are not host/owner/repo.
	ErrInvalidPath = zerr.New("invalid remote path")
	// ErrFetch is returned when the repository cannot be cloned.
	ErrFetch = zerr.New("fetching dictionary repository")
	// ErrNoDictionary is returned when no single dictionary file can be
	// picked from a fetched repository.
	ErrNoDictionary = zerr.New("no dictionary found")
)

// IsRemote reports whether path looks like a git repository path
// (e.g. "github.com/user/repo") rather than a local file. Local paths
// never have a dot in the first segment, and relative or absolute paths
// are always local.
func IsRemote(path string) bool {
	if strings.HasPrefix(path, ".") || filepath.IsAbs(path) {
		return false
	}
	clean := path
	if i := strings.Index(clean, "@"); i > 0 {
		clean = clean[:i]
	}
	host, _, ok := strings.Cut(clean, "/")
	if !ok {
		return false
	}
	// localhost (with optional port) is remote, for testing against a git daemon
	if host == "localhost" || strings.HasPrefix(host, "localhost:") {
		return true
	}
	return strings.Contains(host, ".")
}

// Path holds the parsed components of a remote dictionary path.
type Path struct {
	Host    string // e.g. "github.com"
	Owner   string
	Repo    string
	Version string // tag, branch or commit SHA; empty means the default branch
	Subpath string // optional file or directory inside the repository
}

// Parse splits a remote path into its components.
//
//	"github.com/user/repo"           → host, owner, repo, "", ""
//	"github.com/user/repo@v1.0.0"    → host, owner, repo, "v1.0.0", ""
//	"github.com/user/repo/sub@main"  → host, owner, repo, "main", "sub"
func Parse(path string) (*Path, error) {
	version := ""
	if i := strings.LastIndex(path, "@"); i > 0 {
		version = path[i+1:]
		path = path[:i]
	}

	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return nil, zerr.With(fmt.Errorf("%w: must be host/owner/repo, got %q", ErrInvalidPath, path), "path", path)
	}

	p := &Path{
		Host:    parts[0],
		Owner:   parts[1],
		Repo:    parts[2],
		Version: version,
	}
	if len(parts) > 3 {
		p.Subpath = strings.Join(parts[3:], "/")
	}
	return p, nil
}

func (p *Path) String() string {
	s := p.Host + "/" + p.Owner + "/" + p.Repo
	if p.Subpath != "" {
		s += "/" + p.Subpath
	}
	if p.Version != "" {
		s += "@" + p.Version
	}
	return s
}

// CloneURL returns the repository URL. Plain http is used for localhost.
func (p *Path) CloneURL() string {
	if p.Host == "localhost" || strings.HasPrefix(p.Host, "localhost:") {
		return fmt.Sprintf("http://%s/%s/%s.git", p.Host, p.Owner, p.Repo)
	}
	return fmt.Sprintf("https://%s/%s/%s.git", p.Host, p.Owner, p.Repo)
}

// Name returns the name the dictionary is installed under: the last
// subpath element without its extension, or the repository name.
func (p *Path) Name() string {
	if p.Subpath != "" {
		return strings.TrimSuffix(filepath.Base(p.Subpath), dictExt)
	}
	return p.Repo
}

// versionLabel is the cache directory name for the version.
func (p *Path) versionLabel() string {
	if p.Version == "" {
		return "_default"
	}
	return p.Version
}

var shaPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// Immutable reports whether the version is a tag (v-prefixed) or a commit
// SHA. Immutable versions are fetched once; branches are re-fetched.
func (p *Path) Immutable() bool {
	if p.Version == "" {
		return false
	}
	return strings.HasPrefix(p.Version, "v") || shaPattern.MatchString(p.Version)
}

// Fetcher clones dictionary repositories into a local cache.
type Fetcher struct {
	// CacheDir overrides the default cache directory (~/.pys/cache).
	CacheDir string
	// Git is the git binary, "git" when empty.
	Git string
	Log zerolog.Logger
}

// Fetch makes sure the repository behind path is cloned and returns the
// local path of the dictionary file it names.
func (f *Fetcher) Fetch(ctx context.Context, path string) (string, error) {
	p, err := Parse(path)
	if err != nil {
		return "", err
	}
	dir, err := f.cacheDir(p)
	if err != nil {
		return "", err
	}
	if needsFetch(dir, p) {
		f.Log.Debug().Str("url", p.CloneURL()).Str("version", p.Version).Str("dir", dir).Msg("cloning dictionary repository")
		if err := f.clone(ctx, p, dir); err != nil {
			return "", zerr.With(fmt.Errorf("%w: %w", ErrFetch, err), "url", p.CloneURL())
		}
	} else {
		f.Log.Debug().Str("dir", dir).Msg("using cached dictionary repository")
	}
	return FindDictionary(dir, p)
}

func (f *Fetcher) cacheDir(p *Path) (string, error) {
	base := f.CacheDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		base = filepath.Join(home, ".pys", "cache")
	}
	return filepath.Join(base, p.Host, p.Owner, p.Repo, p.versionLabel()), nil
}

// needsFetch reports whether dir must be (re-)cloned.
func needsFetch(dir string, p *Path) bool {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return true
	}
	return !p.Immutable()
}

// clone does a shallow clone of p into dest, retrying with a full clone
// for servers without shallow support (e.g. dumb HTTP).
func (f *Fetcher) clone(ctx context.Context, p *Path, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("cleaning cache directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	args := []string{"clone", "--depth", "1"}
	if p.Version != "" && !shaPattern.MatchString(p.Version) {
		args = append(args, "--branch", p.Version)
	}
	if err := f.git(ctx, append(args, p.CloneURL(), dest)...); err == nil {
		if shaPattern.MatchString(p.Version) {
			return f.checkout(ctx, p, dest)
		}
		return nil
	}

	_ = os.RemoveAll(dest)
	args = []string{"clone"}
	if p.Version != "" && !shaPattern.MatchString(p.Version) {
		args = append(args, "--branch", p.Version)
	}
	if err := f.git(ctx, append(args, p.CloneURL(), dest)...); err != nil {
		return err
	}
	if shaPattern.MatchString(p.Version) {
		return f.checkout(ctx, p, dest)
	}
	return nil
}

// checkout moves a clone to a pinned commit, deepening it first.
func (f *Fetcher) checkout(ctx context.Context, p *Path, dest string) error {
	if err := f.git(ctx, "-C", dest, "fetch", "--unshallow"); err != nil {
		f.Log.Debug().Err(err).Msg("unshallow failed, trying checkout anyway")
	}
	if err := f.git(ctx, "-C", dest, "checkout", p.Version); err != nil {
		_ = os.RemoveAll(dest)
		return err
	}
	return nil
}

func (f *Fetcher) git(ctx context.Context, args ...string) error {
	bin := f.Git
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
		return errors.New("git " + args[0] + ": " + msg)
	}
	return nil
}

// FindDictionary locates the dictionary file in a cloned repository.
//
// Resolution order (at the root or the subpath):
//  1. the subpath itself when it names a file (with or without .yaml)
//  2. <name>.yaml
//  3. dictionary.yaml
//  4. exactly one .yaml file
func FindDictionary(dir string, p *Path) (string, error) {
	name := p.Repo
	if p.Subpath != "" {
		sub := filepath.Join(dir, filepath.FromSlash(p.Subpath))
		if fileExists(sub) {
			return sub, nil
		}
		if fileExists(sub + dictExt) {
			return sub + dictExt, nil
		}
		dir = sub
		name = filepath.Base(p.Subpath)
	}

	for _, candidate := range []string{name + dictExt, "dictionary" + dictExt} {
		if path := filepath.Join(dir, candidate); fileExists(path) {
			return path, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", zerr.With(fmt.Errorf("%w: %w", ErrNoDictionary, err), "dir", dir)
	}
	var found []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == dictExt {
			found = append(found, filepath.Join(dir, e.Name()))
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", zerr.With(fmt.Errorf("%w in %s", ErrNoDictionary, p), "dir", dir)
	default:
		return "", zerr.With(
			fmt.Errorf("%w in %s: found %d .yaml files (add a %s%s or name one in the path)", ErrNoDictionary, p, len(found), name, dictExt),
			"dir", dir)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
