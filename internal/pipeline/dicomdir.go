package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrsinham/planmcs/internal/dicom"
)

// IsDICOMDIR reports whether path names a media storage directory file.
func IsDICOMDIR(path string) bool {
	return strings.EqualFold(filepath.Base(path), "DICOMDIR")
}

// ReadDICOMDIR returns the files referenced by the records of a DICOMDIR, in
// record order, resolved against the DICOMDIR's directory.
func ReadDICOMDIR(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	decoded, err := dicom.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	root := filepath.Dir(path)
	var files []string
	for i, record := range dicom.GetSequenceFirstMatch(decoded.Tree, dicom.DirectoryRecordSequence) {
		id := dicom.GetString(record, dicom.ReferencedFileID, "")
		if id == "" {
			continue
		}
		file, err := resolveFileID(root, id)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i+1, err)
		}
		files = append(files, file)
	}
	return files, nil
}

// resolveFileID joins the components of a Referenced File ID under root.
// Components that are empty, relative steps, absolute or that hold a path
// separator are rejected, so the result always stays below root.
func resolveFileID(root, id string) (string, error) {
	parts := strings.Split(id, `\`)
	for _, part := range parts {
		switch {
		case part == "" || part == "." || part == "..":
			return "", fmt.Errorf("file ID %q: invalid component %q", id, part)
		case strings.ContainsAny(part, "/"+string(filepath.Separator)):
			return "", fmt.Errorf("file ID %q: component %q contains a path separator", id, part)
		case filepath.IsAbs(part) || filepath.VolumeName(part) != "":
			return "", fmt.Errorf("file ID %q: absolute component %q", id, part)
		}
	}
	file := filepath.Join(append([]string{root}, parts...)...)
	if rel, err := filepath.Rel(root, file); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file ID %q leaves %s", id, root)
	}
	return file, nil
}

// ExpandPaths replaces every DICOMDIR in paths by the files it references.
// Other paths are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	expanded := make([]string, 0, len(paths))
	for _, p := range paths {
		if !IsDICOMDIR(p) {
			expanded = append(expanded, p)
			continue
		}
		files, err := ReadDICOMDIR(p)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, files...)
	}
	return expanded, nil
}
