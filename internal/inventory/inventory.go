// Package inventory loads extra host aliases from a YAML file, so fan-out
// groups can be kept outside the ssh configuration.
package inventory

import (
	"fmt"
	"io"
	"os"

	"sshfan/internal/hostdir"

	"gopkg.in/yaml.v3"
)

// File is the on-disk inventory structure:
//
//	hosts:
//	  - alias: web_1
//	    user: deploy
//	  - alias: web_2
//	    user: deploy
type File struct {
	Hosts []Entry `yaml:"hosts"`
}

// Entry is one inventory host.
type Entry struct {
	Alias string `yaml:"alias"`
	User  string `yaml:"user"`
}

// MergeFile reads the inventory at path and registers its entries in dir.
// Unlike the ssh configuration source, an inventory was asked for
// explicitly, so a missing or malformed file is an error.
func MergeFile(path string, dir *hostdir.Directory) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer f.Close()

	return Merge(f, dir)
}

// Merge parses inventory YAML from r and registers its entries in dir,
// preserving entry order.
func Merge(r io.Reader, dir *hostdir.Directory) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read inventory: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("failed to parse inventory: %w", err)
	}

	for _, entry := range file.Hosts {
		if entry.Alias == "" {
			return fmt.Errorf("inventory entry without alias")
		}
		dir.Add(entry.Alias, entry.User)
	}

	return nil
}
