// Package assets locates the video and artwork files that belong to a sidecar.
package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mwantia/nfosync/pkg/nfo"
)

// DefaultVideoExtensions is the video priority order used when none is configured.
var DefaultVideoExtensions = []string{"mp4", "mkv", "ts", "avi", "mov", "m4v", "wmv", "webm", "m2ts"}

// ImageExtensions are tried in order for every fallback artwork base name.
var ImageExtensions = []string{"jpg", "jpeg", "png", "webp"}

// Resolved holds every asset found for one sidecar. Empty paths mean absent.
type Resolved struct {
	VideoPath   string            `json:"video_path,omitempty"   yaml:"video_path,omitempty"`
	VideoType   string            `json:"video_type,omitempty"   yaml:"video_type,omitempty"`
	PosterPath  string            `json:"poster_path,omitempty"  yaml:"poster_path,omitempty"`
	FanartPath  string            `json:"fanart_path,omitempty"  yaml:"fanart_path,omitempty"`
	ThumbPath   string            `json:"thumb_path,omitempty"   yaml:"thumb_path,omitempty"`
	ActorThumbs map[string]string `json:"actor_thumbs,omitempty" yaml:"actor_thumbs,omitempty"`
}

// Resolver finds assets next to a sidecar. It is safe for concurrent use.
type Resolver struct {
	videoExtensions []string
}

// NewResolver returns a resolver preferring video extensions in the given
// order. Extensions may be given with or without a leading dot.
func NewResolver(videoExtensions []string) *Resolver {
	if len(videoExtensions) == 0 {
		videoExtensions = DefaultVideoExtensions
	}

	exts := make([]string, 0, len(videoExtensions))
	for _, ext := range videoExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}

	return &Resolver{videoExtensions: exts}
}

// directory is a case-insensitive view of the regular files in one folder.
// An exact name match wins; otherwise, when names differ only by case, the
// lexically first one is used.
type directory struct {
	path  string
	exact map[string]struct{}
	files map[string]string
}

func readDirectory(dir string) *directory {
	d := &directory{path: dir, exact: make(map[string]struct{}), files: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return d
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&os.ModeSymlink != 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if !isRegularFile(filepath.Join(dir, name)) {
			continue
		}
		d.exact[name] = struct{}{}
		if key := strings.ToLower(name); d.files[key] == "" {
			d.files[key] = name
		}
	}

	return d
}

func (d *directory) lookup(name string) (string, bool) {
	if _, ok := d.exact[name]; ok {
		return filepath.Join(d.path, name), true
	}
	actual, ok := d.files[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return filepath.Join(d.path, actual), true
}

func (d *directory) firstImage(bases ...string) string {
	for _, base := range bases {
		for _, ext := range ImageExtensions {
			if path, ok := d.lookup(base + "." + ext); ok {
				return path
			}
		}
	}
	return ""
}

// Video returns the highest priority {code}.{ext} file in the sidecar's
// directory and its lowercase extension.
func (r *Resolver) Video(sidecarPath, code string) (string, string) {
	return r.video(readDirectory(filepath.Dir(sidecarPath)), code)
}

func (r *Resolver) video(dir *directory, code string) (string, string) {
	for _, ext := range r.videoExtensions {
		if path, ok := dir.lookup(code + "." + ext); ok {
			return path, ext
		}
	}
	return "", ""
}

// Resolve locates the video and all artwork for a sidecar. meta may be nil,
// in which case only naming conventions are used. Missing assets are never
// an error.
func (r *Resolver) Resolve(sidecarPath, code string, meta *nfo.Metadata) Resolved {
	base := filepath.Dir(sidecarPath)
	dir := readDirectory(base)

	var result Resolved
	result.VideoPath, result.VideoType = r.video(dir, code)

	var posterHint, fanartHint, thumbHint string
	if meta != nil {
		posterHint = dir.hint(meta.PosterHint)
		fanartHint = dir.hint(meta.FanartHint)
		thumbHint = dir.hint(meta.ThumbHint)
	}

	result.PosterPath = firstNonEmpty(
		posterHint,
		thumbHint,
		dir.firstImage(code+"-poster", code+"-thumb", "poster", code, "thumb", "folder", "cover"),
	)
	result.FanartPath = firstNonEmpty(
		fanartHint,
		dir.firstImage(code+"-fanart", code+"-backdrop", "fanart", "backdrop", "background"),
	)
	result.ThumbPath = firstNonEmpty(
		thumbHint,
		posterHint,
		dir.firstImage(code+"-thumb", code+"-poster", "thumb", "poster", "folder"),
	)

	if meta != nil && len(meta.Actors) > 0 {
		actors := readDirectory(filepath.Join(base, ".actors"))
		for _, actor := range meta.Actors {
			path := dir.hint(actor.Thumb)
			if path == "" {
				path = actors.firstImage(strings.ReplaceAll(actor.Name, " ", "_"))
			}
			if path == "" {
				continue
			}
			if result.ActorThumbs == nil {
				result.ActorThumbs = make(map[string]string)
			}
			result.ActorThumbs[actor.Name] = path
		}
	}

	return result
}

// hint resolves an artwork hint against the directory. Hints that escape
// the directory or do not name a regular file are ignored.
func (d *directory) hint(hint string) string {
	if hint == "" || filepath.IsAbs(hint) {
		return ""
	}

	rel := filepath.Clean(filepath.FromSlash(hint))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}

	// Bare file names match case-insensitively like the naming conventions
	if !strings.ContainsRune(rel, filepath.Separator) {
		path, _ := d.lookup(rel)
		return path
	}

	path := filepath.Join(d.path, rel)
	if !isRegularFile(path) {
		return ""
	}
	return path
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
