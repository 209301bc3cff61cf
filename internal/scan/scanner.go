package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const Ext = ".jsonl"

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

type Project struct {
	Name    string
	Dir     string
	Files   int
	Updated time.Time
}

// Transcripts lists the transcript files directly inside dir, sorted by
// name. Subdirectories are not descended into.
func Transcripts(dir string) ([]FileInfo, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for _, de := range ents {
		if de.IsDir() || !isTranscript(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue // removed while listing
		}
		files = append(files, FileInfo{
			Path:  filepath.Join(dir, de.Name()),
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Projects lists the directories under root that hold at least one
// transcript, most recently updated first.
func Projects(root string) ([]Project, error) {
	ents, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var projects []Project
	for _, de := range ents {
		if !de.IsDir() {
			continue
		}
		dir := filepath.Join(root, de.Name())
		files, err := Transcripts(dir)
		if err != nil || len(files) == 0 {
			continue
		}
		p := Project{Name: de.Name(), Dir: dir, Files: len(files)}
		for _, f := range files {
			if t := time.Unix(f.Mtime, 0); t.After(p.Updated) {
				p.Updated = t
			}
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].Updated.Equal(projects[j].Updated) {
			return projects[i].Updated.After(projects[j].Updated)
		}
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

// All walks root and returns every transcript below it, skipping
// subagent directories. A missing root yields no files.
func All(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if filepath.Base(path) == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isTranscript(info.Name()) {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return files, err
}

func isTranscript(name string) bool {
	return filepath.Ext(name) == Ext && !strings.Contains(name, "sessions-index")
}
