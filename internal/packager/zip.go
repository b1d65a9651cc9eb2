package packager

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// zipTree compresses the directory rooted at src into the archive at
// dst, storing paths relative to src.
func zipTree(src, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." || d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(w, in)
		return err
	})

	if err != nil {
		zw.Close()
		out.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
