// Package diff handles parsing git diffs into structured representations.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sprite-ai/warnctx/internal/model"
)

// File represents a single file in a diff with its parsed fragments.
type File struct {
	OldName      string
	NewName      string
	IsNew        bool
	IsDeleted    bool
	IsRenamed    bool
	IsCopied     bool
	IsBinary     bool
	Fragments    []*gitdiff.TextFragment
	AddedLines   int
	DeletedLines int
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.IsRenamed {
		return fmt.Sprintf("%s → %s", f.OldName, f.NewName)
	}
	if f.IsDeleted {
		return f.OldName
	}
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// ChangeType classifies the file. Copies have no dedicated kind and are
// reported as unknown.
func (f *File) ChangeType() model.ChangeType {
	switch {
	case f.IsNew:
		return model.ChangeAdd
	case f.IsDeleted:
		return model.ChangeDelete
	case f.IsRenamed:
		return model.ChangeRename
	case f.IsCopied:
		return model.ChangeUnknown
	default:
		return model.ChangeModify
	}
}

// Hunks walks the fragments and numbers every added and deleted line.
// Added lines get after-change numbers, deleted lines before-change numbers.
func (f *File) Hunks() []model.Hunk {
	var hunks []model.Hunk

	for _, frag := range f.Fragments {
		oldLine := int(frag.OldPosition)
		newLine := int(frag.NewPosition)
		for _, line := range frag.Lines {
			text := strings.TrimSuffix(line.Line, "\n")
			switch line.Op {
			case gitdiff.OpAdd:
				hunks = append(hunks, model.Hunk{Line: newLine, Text: text, Kind: model.HunkAdded})
				newLine++
			case gitdiff.OpDelete:
				hunks = append(hunks, model.Hunk{Line: oldLine, Text: text, Kind: model.HunkDeleted})
				oldLine++
			default:
				oldLine++
				newLine++
			}
		}
	}

	return hunks
}

// ModifiedFile converts the parsed file into a model record. Sources are
// left empty for the history provider to fill.
func (f *File) ModifiedFile() *model.ModifiedFile {
	mf := &model.ModifiedFile{
		OldPath:    f.OldName,
		NewPath:    f.NewName,
		ChangeType: f.ChangeType(),
		Hunks:      f.Hunks(),
	}
	if f.IsNew {
		mf.OldPath = ""
	}
	if f.IsDeleted {
		mf.NewPath = ""
	}
	return mf
}

// DiffSet holds the parsed diff for all files.
type DiffSet struct {
	Files []*File
	Raw   string // the raw unified diff text
}

// Stats returns aggregate statistics.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	files = len(ds.Files)
	for _, f := range ds.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// ModifiedFiles converts every file in the set, preserving order.
func (ds *DiffSet) ModifiedFiles() []*model.ModifiedFile {
	out := make([]*model.ModifiedFile, 0, len(ds.Files))
	for _, f := range ds.Files {
		out = append(out, f.ModifiedFile())
	}
	return out
}

// Parse reads a unified diff string and returns a DiffSet.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Raw: raw}
	for _, f := range parsed {
		df := &File{
			OldName:   f.OldName,
			NewName:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsCopied:  f.IsCopy,
			IsBinary:  f.IsBinary,
		}

		for _, frag := range f.TextFragments {
			df.Fragments = append(df.Fragments, frag)
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					df.AddedLines++
				case gitdiff.OpDelete:
					df.DeletedLines++
				}
			}
		}

		ds.Files = append(ds.Files, df)
	}

	return ds, nil
}
