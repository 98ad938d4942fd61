package entities

import "fmt"

// AudioChunk is one fixed-length segment cut from the source audio.
// StartOffset is the chunk's position in the source, in whole seconds.
type AudioChunk struct {
	Index       int
	Path        string
	StartOffset int
}

func (c AudioChunk) String() string {
	return fmt.Sprintf("chunk %d (offset %ds)", c.Index, c.StartOffset)
}
