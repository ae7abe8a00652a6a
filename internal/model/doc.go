// Package model defines the core data structures used throughout
// camsync.
//
// # MediaItem
//
// MediaItem represents one node of the camera's content tree, as
// decoded from a ContentDirectory Browse response:
//
//	if item.IsImage() {
//	    res, _ := item.BestResource()
//	    fmt.Println(res.URI, res.Size)
//	}
//
// # Destination paths
//
// Downloaded photos are bucketed by capture date:
//
//	rel, err := item.RelPath(false)
//	// "2023/2023-06-15/IMG_0001.JPG"
//
// RelPath(true) selects the flat "2023-06-15/IMG_0001.JPG" layout of
// earlier releases.
package model
