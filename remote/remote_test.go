package remote

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		path   string
		remote bool
	}{
		{"github.com/user/repo", true},
		{"github.com/user/repo@v1.0.0", true},
		{"github.com/user/repo/jawa.yaml@main", true},
		{"gitlab.com/org/dicts", true},
		{"localhost/user/repo", true},
		{"localhost:9418/user/repo", true},

		{"jawa.yaml", false},
		{"dicts/jawa.yaml", false},
		{"./dicts/jawa.yaml", false},
		{"../shared/jawa.yaml", false},
		{"/etc/pys/jawa.yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsRemote(tt.path); got != tt.remote {
				t.Errorf("IsRemote(%q) = %v, want %v", tt.path, got, tt.remote)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Path
		name    string
		display string
	}{
		{"github.com/user/repo", Path{Host: "github.com", Owner: "user", Repo: "repo"}, "repo", "github.com/user/repo"},
		{"github.com/user/repo@v1.2.0", Path{Host: "github.com", Owner: "user", Repo: "repo", Version: "v1.2.0"}, "repo", "github.com/user/repo@v1.2.0"},
		{"github.com/user/repo/jawa@main", Path{Host: "github.com", Owner: "user", Repo: "repo", Version: "main", Subpath: "jawa"}, "jawa", "github.com/user/repo/jawa@main"},
		{"github.com/user/repo/dicts/sunda.yaml", Path{Host: "github.com", Owner: "user", Repo: "repo", Subpath: "dicts/sunda.yaml"}, "sunda", "github.com/user/repo/dicts/sunda.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if *p != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, *p, tt.want)
			}
			if got := p.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := p.String(); got != tt.display {
				t.Errorf("String() = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"github.com", "github.com/user", "github.com/user/"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidPath", input, err)
			}
		})
	}
}

func TestCloneURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"github.com", "https://github.com/user/repo.git"},
		{"localhost", "http://localhost/user/repo.git"},
		{"localhost:8080", "http://localhost:8080/user/repo.git"},
	}
	for _, tt := range tests {
		p := &Path{Host: tt.host, Owner: "user", Repo: "repo"}
		if got := p.CloneURL(); got != tt.want {
			t.Errorf("CloneURL() for %s = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestImmutable(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"", false},
		{"main", false},
		{"v1.0.0", true},
		{"abc1234", true},
		{"0123456789abcdef0123456789abcdef01234567", true},
		{"ABC1234", false},
	}
	for _, tt := range tests {
		p := &Path{Version: tt.version}
		if got := p.Immutable(); got != tt.want {
			t.Errorf("Immutable(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestNeedsFetch(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "cached")
	os.MkdirAll(existing, 0o755)

	if needsFetch(existing, &Path{Version: "v1.0.0"}) {
		t.Error("immutable + cached should not need fetch")
	}
	if !needsFetch(filepath.Join(dir, "missing"), &Path{Version: "v1.0.0"}) {
		t.Error("immutable + missing should need fetch")
	}
	if !needsFetch(existing, &Path{Version: "main"}) {
		t.Error("branch + cached should need fetch")
	}
	if !needsFetch(existing, &Path{}) {
		t.Error("default branch + cached should need fetch")
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("locale: jv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindDictionary(t *testing.T) {
	repo := &Path{Host: "github.com", Owner: "user", Repo: "jawa"}

	t.Run("repo-name.yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "jawa.yaml"))
		writeFile(t, filepath.Join(dir, "other.yaml"))
		got, err := FindDictionary(dir, repo)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != "jawa.yaml" {
			t.Errorf("got %q, want jawa.yaml", got)
		}
	})

	t.Run("dictionary.yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "dictionary.yaml"))
		writeFile(t, filepath.Join(dir, "other.yaml"))
		got, err := FindDictionary(dir, repo)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != "dictionary.yaml" {
			t.Errorf("got %q, want dictionary.yaml", got)
		}
	})

	t.Run("single yaml file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "kata.yaml"))
		got, err := FindDictionary(dir, repo)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != "kata.yaml" {
			t.Errorf("got %q, want kata.yaml", got)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.yaml"))
		writeFile(t, filepath.Join(dir, "b.yaml"))
		_, err := FindDictionary(dir, repo)
		if !errors.Is(err, ErrNoDictionary) {
			t.Errorf("err = %v, want ErrNoDictionary", err)
		}
	})

	t.Run("none", func(t *testing.T) {
		dir := t.TempDir()
		_, err := FindDictionary(dir, repo)
		if !errors.Is(err, ErrNoDictionary) {
			t.Errorf("err = %v, want ErrNoDictionary", err)
		}
	})

	t.Run("subpath file without extension", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "dicts", "sunda.yaml"))
		got, err := FindDictionary(dir, &Path{Repo: "dicts", Subpath: "dicts/sunda"})
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "dicts", "sunda.yaml") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("subpath directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "sunda", "sunda.yaml"))
		got, err := FindDictionary(dir, &Path{Repo: "dicts", Subpath: "sunda"})
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "sunda", "sunda.yaml") {
			t.Errorf("got %q", got)
		}
	})
}

func TestFetchUsesCachedTag(t *testing.T) {
	cache := t.TempDir()
	want := filepath.Join(cache, "github.com", "user", "jawa", "v1.0.0", "jawa.yaml")
	writeFile(t, want)

	f := &Fetcher{CacheDir: cache, Git: "git-not-installed"}
	got, err := f.Fetch(context.Background(), "github.com/user/jawa@v1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Fetch = %q, want %q", got, want)
	}
}

func TestFetchCloneFailure(t *testing.T) {
	f := &Fetcher{CacheDir: t.TempDir(), Git: "git-not-installed"}
	_, err := f.Fetch(context.Background(), "github.com/user/jawa@main")
	if !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}
