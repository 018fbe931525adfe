// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"github.com/spf13/afero"
)

// A FileProvider gives access to data files read by $readmem.
//
type FileProvider interface {
	// FileData returns the content of the named file and true, or false if
	// the file cannot be read.
	FileData(name string) (string, bool)
}

// The FileProviderFunc type is an adapter to allow the use of ordinary
// functions as file providers.
//
type FileProviderFunc func(name string) (string, bool)

// FileData returns fn(name).
//
func (fn FileProviderFunc) FileData(name string) (string, bool) { return fn(name) }

type noFiles struct{}

func (noFiles) FileData(string) (string, bool) { return "", false }

type fsProvider struct {
	fs afero.Fs
}

// NewFSProvider returns a FileProvider that reads files from fs.
//
// Use afero.NewBasePathFs to confine reads to a directory.
//
func NewFSProvider(fs afero.Fs) FileProvider {
	return &fsProvider{fs}
}

func (p *fsProvider) FileData(name string) (string, bool) {
	b, err := afero.ReadFile(p.fs, name)
	if err != nil {
		return "", false
	}
	return string(b), true
}
