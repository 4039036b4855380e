package pipeline

import (
	"os"
	"path/filepath"
)

// Input is one uploaded workbook: its file name decides how it is decoded.
type Input struct {
	Name    string
	Content []byte
}

func InputFromFile(path string) (Input, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Input{}, err
	}
	return Input{Name: filepath.Base(path), Content: blob}, nil
}
