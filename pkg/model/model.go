package model

import "time"

// ExportSet holds the identifiers a module exposes, split by export kind.
// Both lists are deduplicated and never contain "" or "default".
type ExportSet struct {
	Named   []string
	Default []string
}

// Empty reports whether no exports were found.
func (e ExportSet) Empty() bool {
	return len(e.Named) == 0 && len(e.Default) == 0
}

// HasNamed reports whether name is a named export.
func (e ExportSet) HasNamed(name string) bool {
	for _, n := range e.Named {
		if n == name {
			return true
		}
	}
	return false
}

// HasDefault reports whether name is listed under the default export.
func (e ExportSet) HasDefault(name string) bool {
	for _, n := range e.Default {
		if n == name {
			return true
		}
	}
	return false
}

// Manifest is the subset of package.json the scaffold cares about.
type Manifest struct {
	Name            string
	Module          string
	Main            string
	Browser         string
	Scripts         map[string]string
	DevDependencies map[string]string
}

// Summary is the final tally of a test run.
type Summary struct {
	Total     int
	Completed int
	Pass      int
	Fail      int
}

// Settled reports whether every scheduled case has finished.
func (s Summary) Settled() bool {
	return s.Total == s.Completed
}

// PipelineResult describes what a pipeline run did.
type PipelineResult struct {
	ManifestPath string
	ModulePath   string
	TestPath     string
	Initialized  bool
	Generated    bool
	Exports      ExportSet
	TestCode     string
	Summary      Summary
	Duration     time.Duration
}
