package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var includeDirective = regexp.MustCompile(`^\s*#\s*include\s+["<]([^">]+)[">]`)

// Expanded is a source with every #include inlined.
type Expanded struct {
	Text string
	// Dependencies lists every file read, the root first, without
	// duplicates.
	Dependencies []string
}

// IncludeResolver expands #include directives. A name is looked up next to
// the including file first, then in the include directories, last added
// first. File contents are cached, so one resolver can be shared by all
// shaders of a build.
type IncludeResolver struct {
	dirs  []string
	cache *Cache
	mu    sync.RWMutex
}

// NewIncludeResolver creates a resolver searching dirs.
func NewIncludeResolver(dirs ...string) *IncludeResolver {
	r := &IncludeResolver{cache: NewCache()}
	for _, dir := range dirs {
		r.AddDir(dir)
	}
	return r
}

// AddDir adds an include directory with the highest priority.
func (r *IncludeResolver) AddDir(dir string) {
	r.mu.Lock()
	r.dirs = append(r.dirs, filepath.Clean(dir))
	r.mu.Unlock()
}

// Resolve finds the file named by an #include in includer.
func (r *IncludeResolver) Resolve(name, includer string) (string, error) {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return filepath.Clean(name), nil
		}
		return "", fmt.Errorf("%w: %s", ErrIncludeNotFound, name)
	}

	if includer != "" {
		candidate := filepath.Join(filepath.Dir(includer), name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.dirs) - 1; i >= 0; i-- {
		candidate := filepath.Join(r.dirs[i], name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %q included from %s", ErrIncludeNotFound, name, includer)
}

// Load reads a file through the cache.
func (r *IncludeResolver) Load(path string) (string, error) {
	if data, ok := r.cache.Get(path); ok {
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	r.cache.Set(path, data)
	return string(data), nil
}

// Expand reads path and inlines its includes.
func (r *IncludeResolver) Expand(path string) (*Expanded, error) {
	text, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	return r.ExpandSource(path, text)
}

// ExpandSource inlines the includes of text, which was read from path.
func (r *IncludeResolver) ExpandSource(path, text string) (*Expanded, error) {
	e := &expansion{
		resolver: r,
		active:   make(map[string]bool),
		seen:     make(map[string]bool),
	}
	e.addDependency(path)

	var out strings.Builder
	if err := e.expand(&out, path, text); err != nil {
		return nil, err
	}
	return &Expanded{Text: out.String(), Dependencies: e.deps}, nil
}

// Invalidate drops a cached file, e.g. after it changed on disk.
func (r *IncludeResolver) Invalidate(path string) {
	r.cache.Delete(path)
}

// Stats returns cache statistics.
func (r *IncludeResolver) Stats() (hits, misses int) {
	return r.cache.Stats()
}

type expansion struct {
	resolver *IncludeResolver
	active   map[string]bool
	seen     map[string]bool
	deps     []string
}

func (e *expansion) addDependency(path string) {
	if !e.seen[path] {
		e.seen[path] = true
		e.deps = append(e.deps, path)
	}
}

func (e *expansion) expand(out *strings.Builder, path, text string) error {
	e.active[path] = true
	defer delete(e.active, path)

	lines := strings.SplitAfter(text, "\n")
	for _, line := range lines {
		m := includeDirective.FindStringSubmatch(line)
		if m == nil {
			if isIncludeExtension(line) {
				continue
			}
			out.WriteString(line)
			continue
		}

		target, err := e.resolver.Resolve(m[1], path)
		if err != nil {
			return err
		}
		if e.active[target] {
			return fmt.Errorf("%w: %s includes %s", ErrIncludeCycle, path, target)
		}
		e.addDependency(target)

		included, err := e.resolver.Load(target)
		if err != nil {
			return err
		}
		if err := e.expand(out, target, included); err != nil {
			return err
		}
		if !strings.HasSuffix(included, "\n") {
			out.WriteString("\n")
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache is an in-memory cache of file contents.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
