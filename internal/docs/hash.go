package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ComputeDocsHash computes a deterministic hash over the relative paths and
// contents of files, which must already be sorted by RelativePath. It lets
// callers detect whether a source set changed between builds.
func ComputeDocsHash(files []DocFile) (string, error) {
	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "%s\x00", f.RelativePath)
		if err := hashFile(h, f.Path); err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	// #nosec G304 -- path comes from discovery under the content root.
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}
