package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// WriteMinimalMP3 writes a single MPEG1 Layer3 audio frame, enough of an MP3
// for the tag libraries to open and extend.
func WriteMinimalMP3(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create audio dir: %v", err)
	}
	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	if err := os.WriteFile(path, frame, 0o644); err != nil {
		t.Fatalf("write mp3: %v", err)
	}
}

// WriteID3v2 writes a minimal MP3 carrying the given ID3v2 text frames.
func WriteID3v2(t *testing.T, path string, encoding id3v2.Encoding, frames map[string]string) {
	t.Helper()
	WriteMinimalMP3(t, path)

	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open for tagging: %v", err)
	}
	for id, text := range frames {
		id3tag.AddTextFrame(id, encoding, text)
	}
	if err := id3tag.Save(); err != nil {
		t.Fatalf("save tags: %v", err)
	}
	if err := id3tag.Close(); err != nil {
		t.Fatalf("close tag: %v", err)
	}
}
