package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type classifies a project by its toolchain.
type Type string

const (
	TypeNodeJS  Type = "nodejs"
	TypePython  Type = "python"
	TypeJava    Type = "java"
	TypeDotnet  Type = "dotnet"
	TypeRust    Type = "rust"
	TypeGo      Type = "go"
	TypePHP     Type = "php"
	TypeRuby    Type = "ruby"
	TypeWeb     Type = "web"
	TypeFlutter Type = "flutter"
	TypeUnknown Type = "unknown"
)

// signatures maps each project type to the marker files that identify it.
// Order matters: the first type with a present marker wins.
var signatures = []struct {
	projectType Type
	markers     []string
}{
	{TypeNodeJS, []string{"package.json", "node_modules", "yarn.lock", "package-lock.json"}},
	{TypePython, []string{"requirements.txt", "setup.py", "Pipfile", "pyproject.toml"}},
	{TypeJava, []string{"pom.xml", "build.gradle", ".classpath", "src/main/java"}},
	{TypeDotnet, []string{".csproj", ".fsproj", ".vbproj", "Program.cs"}},
	{TypeRust, []string{"Cargo.toml", "Cargo.lock"}},
	{TypeGo, []string{"go.mod", "go.sum", "main.go"}},
	{TypePHP, []string{"composer.json", "composer.lock", "artisan"}},
	{TypeRuby, []string{"Gemfile", "Rakefile", ".ruby-version"}},
	{TypeWeb, []string{"index.html", "styles.css", "main.js"}},
	{TypeFlutter, []string{"pubspec.yaml", "lib/main.dart"}},
}

// Info is the result of detecting the project that owns a file.
type Info struct {
	Name      string
	RootPath  string
	Type      Type
	GitBranch string
}

// Detector resolves project information for file paths through a shared
// cache.
type Detector struct {
	cache *Cache
	title cases.Caser
}

// NewDetector builds a detector around cache. A nil cache gets a fresh one
// with the default TTL.
func NewDetector(cache *Cache) *Detector {
	if cache == nil {
		cache = NewCache(0)
	}
	return &Detector{cache: cache, title: cases.Title(language.English)}
}

// Detect resolves the project owning filePath.
func (d *Detector) Detect(filePath string) Info {
	if info, ok := d.cache.Get(filePath); ok {
		return info
	}

	root := findRoot(filePath)
	info := Info{
		Name:      d.projectName(root),
		RootPath:  root,
		Type:      detectType(root),
		GitBranch: readGitBranch(root),
	}
	d.cache.Put(filePath, info)
	return info
}

// findRoot walks up from the file looking first for a git repository, then
// for any project marker, and falls back to the file's directory. A path
// that is itself a directory anchors the walk directly.
func findRoot(filePath string) string {
	dir := filePath
	if fi, err := os.Stat(filePath); err != nil || !fi.IsDir() {
		dir = filepath.Dir(filePath)
	}

	for probe := dir; ; probe = filepath.Dir(probe) {
		if _, err := os.Stat(filepath.Join(probe, ".git")); err == nil {
			return probe
		}
		if filepath.Dir(probe) == probe {
			break
		}
	}

	for probe := dir; ; probe = filepath.Dir(probe) {
		if detectType(probe) != TypeUnknown {
			return probe
		}
		if filepath.Dir(probe) == probe {
			break
		}
	}

	return dir
}

// projectName prefers the package.json name field and falls back to a
// titled form of the root directory name.
func (d *Detector) projectName(root string) string {
	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			return pkg.Name
		}
	}

	base := filepath.Base(root)
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return d.title.String(cleaned)
}

func detectType(root string) Type {
	for _, sig := range signatures {
		for _, marker := range sig.markers {
			if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
				return sig.projectType
			}
		}
	}
	return TypeUnknown
}

// readGitBranch parses .git/HEAD directly instead of shelling out. A
// symbolic ref yields the branch name; a detached head yields the short
// commit hash.
func readGitBranch(root string) string {
	data, err := os.ReadFile(filepath.Join(root, ".git", "HEAD"))
	if err != nil {
		return ""
	}
	head := strings.TrimSpace(string(data))
	if ref, ok := strings.CutPrefix(head, "ref: "); ok {
		return strings.TrimPrefix(ref, "refs/heads/")
	}
	if len(head) >= 7 {
		return head[:7]
	}
	return head
}
