package iox

import (
	"io"
	"os"
)

func WriteStreamToFile(dstFilename string, src io.Reader) error {
	dstFile, err := os.Create(dstFilename)
	if err != nil {
		return err
	}
	defer dstFile.Close()
	_, err = io.Copy(dstFile, src)
	if err != nil {
		dstFile.Close()
		os.Remove(dstFilename)
		return err
	}
	return dstFile.Close()
}

// Write the stream to a temporary file next to dstFilename, and rename it into place once
// the stream is complete. A failed transfer never leaves a truncated dstFilename behind.
func WriteStreamToFileAtomic(dstFilename string, src io.Reader) error {
	tempFile := dstFilename + ".tmp"
	if err := WriteStreamToFile(tempFile, src); err != nil {
		return err
	}
	if err := os.Rename(tempFile, dstFilename); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}
