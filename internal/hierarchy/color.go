package hierarchy

import "hash/fnv"

// folderPalette holds the display colors assigned to folders. The
// palette size is coprime-friendly with nothing in particular; it just
// needs to be stable across releases so folders keep their colors.
var folderPalette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F",
	"#EDC948", "#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC",
}

// FolderColor assigns a stable display color to a node by hashing its
// ID with FNV-1a into a fixed palette. The same ID always maps to the
// same color, on every platform and every run.
func FolderColor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return folderPalette[h.Sum32()%uint32(len(folderPalette))]
}
