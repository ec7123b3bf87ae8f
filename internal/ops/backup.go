// Package ops holds operational tooling for task-data backups: archiving a
// data directory into a tar.gz, restoring one, and fingerprinting a tree so a
// restore drill can prove the round trip was lossless.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const manifestName = ".focusly-manifest.json"

// Manifest travels inside every archive and records what was captured.
type Manifest struct {
	CreatedAt time.Time `json:"createdAt"`
	Files     int       `json:"files"`
	Digest    string    `json:"digest"`
}

// Backup archives dataDir into a gzipped tarball at archivePath, prepending a
// manifest entry with the tree digest. Symlinks are skipped so restores stay
// predictable.
func Backup(dataDir, archivePath string) (*Manifest, error) {
	dataDir = filepath.Clean(strings.TrimSpace(dataDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if dataDir == "" || archivePath == "" {
		return nil, fmt.Errorf("dataDir and archivePath are required")
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source is not a directory: %s", dataDir)
	}

	files, err := listFiles(dataDir)
	if err != nil {
		return nil, err
	}
	digest, err := TreeDigest(dataDir)
	if err != nil {
		return nil, err
	}
	man := &Manifest{CreatedAt: time.Now().UTC(), Files: len(files), Digest: digest}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	manBytes, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    manifestName,
		Mode:    0o644,
		Size:    int64(len(manBytes)),
		ModTime: man.CreatedAt,
	}); err != nil {
		return nil, err
	}
	if _, err := tw.Write(manBytes); err != nil {
		return nil, err
	}

	for _, rel := range files {
		if err := addFile(tw, dataDir, rel); err != nil {
			return nil, err
		}
	}
	return man, nil
}

func addFile(tw *tar.Writer, root, rel string) error {
	path := filepath.Join(root, rel)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(tw, src)
	return err
}

// Restore unpacks an archive produced by Backup into targetDir. When the
// archive carries a manifest, the restored tree is verified against its
// digest.
func Restore(archivePath, targetDir string) (*Manifest, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return nil, fmt.Errorf("archivePath and targetDir are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var man *Manifest
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return nil, err
		}
		if rel == manifestName {
			var m Manifest
			if err := json.NewDecoder(tr).Decode(&m); err != nil {
				return nil, fmt.Errorf("decode manifest: %w", err)
			}
			man = &m
			continue
		}

		outPath := filepath.Join(targetDir, rel)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(outPath, os.FileMode(hdr.Mode)); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := writeEntry(outPath, tr, os.FileMode(hdr.Mode)); err != nil {
				return nil, err
			}
		default:
			// Other entry types are ignored.
		}
	}

	if man != nil {
		digest, err := TreeDigest(targetDir)
		if err != nil {
			return nil, err
		}
		if digest != man.Digest {
			return nil, fmt.Errorf("restored tree digest mismatch: want %s got %s", man.Digest, digest)
		}
	}
	return man, nil
}

func writeEntry(outPath string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func safeRelPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "" || name == "." {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute archive entry path: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes target: %s", name)
	}
	return name, nil
}

// TreeDigest hashes every regular file under root (path plus contents, in
// sorted order) into a single hex digest.
func TreeDigest(root string) (string, error) {
	files, err := listFiles(root)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, rel := range files {
		_, _ = io.WriteString(h, filepath.ToSlash(rel))
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		_, _ = h.Write(b)
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func listFiles(root string) ([]string, error) {
	root = filepath.Clean(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
