package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ImageCache keeps recently decoded buffers so tools called in sequence on
// one screenshot decode it once.
//
// Entries are keyed by the exact path string and remember the file's size and
// modification time. Load revalidates against the file on every call, so a
// screenshot re-captured at the same path is decoded again. At most size
// buffers are kept; the least recently used is dropped first. A size of zero
// disables caching. Cached buffers are shared and must be treated as
// read-only.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	entries *lru.Cache[string, cacheEntry] // nil when caching is disabled
}

type cacheEntry struct {
	buf     *Buffer
	size    int64
	modTime time.Time
}

func (e cacheEntry) matches(fi os.FileInfo) bool {
	return e.size == fi.Size() && e.modTime.Equal(fi.ModTime())
}

// NewImageCache creates a cache holding at most size buffers.
func NewImageCache(size int) *ImageCache {
	c := &ImageCache{}
	if size > 0 {
		// lru.New only fails for a non-positive size.
		c.entries, _ = lru.New[string, cacheEntry](size)
	}
	return c
}

// Load returns the buffer for path, decoding the file when it is not cached
// or has changed since it was cached. PNG, JPEG and GIF are supported.
//
// It fails when the file cannot be opened or decoded, or when the image has
// zero width or height.
func (c *ImageCache) Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if c.entries != nil {
		if e, ok := c.entries.Get(path); ok && e.matches(fi) {
			return e.buf, nil
		}
	}

	buf, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if c.entries != nil {
		c.entries.Add(path, cacheEntry{buf: buf, size: fi.Size(), modTime: fi.ModTime()})
	}
	return buf, nil
}

// Decode reads an encoded image from r and converts it to a Buffer.
func Decode(r io.Reader) (*Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// Clear removes all buffers from the cache.
func (c *ImageCache) Clear() {
	if c.entries != nil {
		c.entries.Purge()
	}
}

// Evict removes the buffer cached for path, if any.
func (c *ImageCache) Evict(path string) {
	if c.entries != nil {
		c.entries.Remove(path)
	}
}

// Len returns the number of cached buffers.
func (c *ImageCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// HasTransparency reports whether any pixel has alpha below 255.
	HasTransparency bool `json:"has_transparency"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// The image is loaded into the cache if not already present, so a following
// detection call on the same path does not decode it again.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	buf, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch filepath.Ext(path) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	transparent := false
	for i := 3; i < len(buf.Pix); i += 4 {
		if buf.Pix[i] != 255 {
			transparent = true
			break
		}
	}

	return &ImageInfo{
		Width:           buf.Width,
		Height:          buf.Height,
		Format:          format,
		HasTransparency: transparent,
		FileSizeBytes:   stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
// The image is loaded into the cache if not already present.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	buf, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{Width: buf.Width, Height: buf.Height}, nil
}
