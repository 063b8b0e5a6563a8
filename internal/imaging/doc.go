// Package imaging holds the raster primitives shared by the detection and
// validation engines.
//
// The central type is Buffer, a tightly packed non-premultiplied RGBA raster
// with (0,0) at the top-left corner, X increasing rightward and Y increasing
// downward. Buffers are read-only once constructed.
//
// # Contents
//
//   - Buffer: pixel access, cropping and PNG export of sub-regions
//   - Color: exact 8-bit RGB with hex/rgb() parsing and distance helpers
//   - EdgeMap: Sobel gradient magnitude thresholded into a boolean map
//   - ImageCache: bounded LRU decode cache keyed by path, revalidated by size and mtime
//   - Overlay: outlines detected boxes on a copy of a buffer
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless and
// may be called concurrently on the same Buffer as long as nobody writes to
// its pixels.
package imaging
