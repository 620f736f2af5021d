/*
Velociraptor - Dig Deeper
Copyright (C) 2019-2025 Rapid7 Inc.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package utils

import (
	"os"
	"path/filepath"

	errors "github.com/go-errors/errors"
)

func FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// writeTempFile writes data into a new temp file next to dst so it
// can later be linked or renamed into place on the same filesystem.
func writeTempFile(dst string, data []byte, mode os.FileMode) (
	name string, err error) {
	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp")
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	name = out.Name()

	defer func() {
		cerr := out.Close()
		if err == nil && cerr != nil {
			err = errors.Wrap(cerr, 0)
		}
		if err != nil {
			os.Remove(name)
		}
	}()

	err = out.Chmod(mode)
	if err != nil {
		return name, errors.Wrap(err, 0)
	}

	_, err = out.Write(data)
	if err != nil {
		return name, errors.Wrap(err, 0)
	}

	err = out.Sync()
	if err != nil {
		return name, errors.Wrap(err, 0)
	}

	return name, nil
}

// WriteFileExclusive publishes data at dst only if nothing exists
// there yet. The content is fully written before it becomes visible
// so readers never see a partial file. Returns false (and no error)
// when another writer got there first.
func WriteFileExclusive(dst string, data []byte, mode os.FileMode) (bool, error) {
	tmp, err := writeTempFile(dst, data, mode)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp)

	err = os.Link(tmp, dst)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, 0)
	}

	return true, nil
}

// WriteFileAtomic replaces dst with data in a single rename.
func WriteFileAtomic(dst string, data []byte, mode os.FileMode) error {
	tmp, err := writeTempFile(dst, data, mode)
	if err != nil {
		return err
	}

	err = os.Rename(tmp, dst)
	if err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, 0)
	}
	return nil
}
